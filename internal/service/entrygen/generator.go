package entrygen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/adapter/provider/llm"
	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/prompt"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type renderer interface {
	Render(name prompt.Name, vars map[string]string) (string, error)
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Options modify a single generation.
type Options struct {
	// Context is the sentence the headword was seen in.
	Context *string
	// Variation asks for a reworded entry, used when regenerating.
	Variation bool
	// Seed distinguishes variation requests; a random one is used when empty.
	Seed string
}

// Generated is a validated entry.
type Generated struct {
	Entry domain.DictionaryEntry
	// LanguageWarning is set when the definitions do not look like they are
	// written in the requested definition language.
	LanguageWarning *string
	Raw             string
}

// Generator requests structured dictionary entries from the model.
type Generator struct {
	log         *slog.Logger
	llm         completer
	prompts     renderer
	temperature float32
	now         func() time.Time
}

// NewGenerator creates a Generator sending requests at the given temperature.
func NewGenerator(logger *slog.Logger, llm completer, prompts renderer, temperature float32) *Generator {
	return &Generator{
		log:         logger.With("service", "entrygen"),
		llm:         llm,
		prompts:     prompts,
		temperature: temperature,
		now:         time.Now,
	}
}

// Generate produces a dictionary entry for headword under langs. The result
// either conforms to the entry schema or an error is returned; a transport
// failure surfaces as domain.ErrRemoteCallFailed, a bad payload as
// domain.ErrSchemaViolation.
func (g *Generator) Generate(ctx context.Context, headword string, langs domain.LanguageConfig, opts Options) (*Generated, error) {
	headword = strings.TrimSpace(headword)
	if headword == "" {
		return nil, domain.NewValidationError("headword", "required")
	}
	if err := langs.Validate(); err != nil {
		return nil, err
	}

	name := prompt.Entry
	vars := map[string]string{
		prompt.VarTargetWord:         headword,
		prompt.VarSourceLanguage:     langs.SourceLanguage,
		prompt.VarTargetLanguage:     langs.TargetLanguage,
		prompt.VarDefinitionLanguage: langs.DefinitionLanguage,
	}
	if opts.Context != nil {
		name = prompt.EntryContext
		vars[prompt.VarSentenceContext] = *opts.Context
	}

	system, err := g.prompts.Render(name, vars)
	if err != nil {
		return nil, fmt.Errorf("render entry prompt: %w", err)
	}

	var messages []string
	if opts.Variation {
		messages = g.variationMessages(headword, opts.Seed)
	}
	messages = append(messages, system)

	temp := g.temperature
	resp, err := g.llm.Complete(ctx, llm.Request{
		System:      messages,
		Prompt:      headword,
		Temperature: &temp,
	})
	if err != nil {
		g.log.ErrorContext(ctx, "entry request failed", slog.String("headword", headword), slog.String("error", err.Error()))
		return nil, fmt.Errorf("generate entry %q: %w", headword, err)
	}

	gen, err := g.Parse(resp, langs)
	if err != nil {
		g.log.WarnContext(ctx, "entry rejected", slog.String("headword", headword), slog.String("error", err.Error()))
		return nil, err
	}

	if gen.LanguageWarning != nil {
		g.log.WarnContext(ctx, "definition language mismatch",
			slog.String("headword", headword),
			slog.String("definition_language", langs.DefinitionLanguage),
		)
	}
	g.log.InfoContext(ctx, "entry generated",
		slog.String("headword", gen.Entry.Headword),
		slog.Int("meanings", len(gen.Entry.Meanings)),
		slog.Bool("variation", opts.Variation),
	)
	return gen, nil
}

// Parse validates a raw model response against the entry schema. Metadata is
// replaced by langs.
func (g *Generator) Parse(raw string, langs domain.LanguageConfig) (*Generated, error) {
	body := llm.StripCodeFences(raw)
	if !json.Valid([]byte(body)) {
		if obj, ok := llm.ExtractJSONObject(body); ok {
			body = obj
		}
	}

	if err := checkShape(body, raw); err != nil {
		return nil, err
	}

	var entry domain.DictionaryEntry
	if err := json.Unmarshal([]byte(body), &entry); err != nil {
		return nil, domain.NewResponseError(domain.ErrSchemaViolation, raw, "decode: %v", err)
	}

	entry.Headword = domain.NFC(strings.TrimSpace(entry.Headword))
	if entry.Headword == "" {
		return nil, domain.NewResponseError(domain.ErrSchemaViolation, raw, "headword: empty")
	}
	for i := range entry.Meanings {
		entry.Meanings[i].Definition = strings.TrimSpace(entry.Meanings[i].Definition)
		if entry.Meanings[i].Definition == "" {
			return nil, domain.NewResponseError(domain.ErrSchemaViolation, raw, "meanings.%d.definition: empty", i)
		}
	}

	want := domain.MetadataFor(langs)
	switch {
	case entry.Metadata == (domain.Metadata{}):
		g.log.Warn("entry metadata missing", slog.String("headword", entry.Headword))
		entry.Metadata = want
	case entry.Metadata != want:
		g.log.Debug("entry metadata overwritten",
			slog.String("got_source", entry.Metadata.SourceLanguage),
			slog.String("got_target", entry.Metadata.TargetLanguage),
			slog.String("got_definition", entry.Metadata.DefinitionLanguage),
		)
		entry.Metadata = want
	}
	entry.Normalize()

	return &Generated{
		Entry:           entry,
		LanguageWarning: definitionLanguageWarning(entry, langs.DefinitionLanguage),
		Raw:             raw,
	}, nil
}

func (g *Generator) variationMessages(headword, seed string) []string {
	if seed == "" {
		seed = uuid.NewString()
	}
	return []string{
		"You are a dictionary entry creator focused on accuracy and educational value.",
		fmt.Sprintf("Create a dictionary entry for '%s' that is linguistically accurate and pedagogically sound.", headword),
		fmt.Sprintf("Current time: %s. Session ID: %s", g.now().Format("2006-01-02 15:04:05"), seed),
		"Provide slightly different phrasings and examples while maintaining complete accuracy of meaning and usage.",
	}
}
