package lemma

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

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

const (
	systemPlain   = "You are a lemmatization function inside a dictionary that must preserve multi-word expressions."
	systemContext = "You are a lemmatization function that uses sentence context."

	defaultBatchWorkers = 4

	// fetchTimeout bounds a shared remote fetch once it no longer follows
	// the first caller's context.
	fetchTimeout = 2 * time.Minute
)

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

// Resolver produces dictionary headwords for looked-up words and phrases.
type Resolver struct {
	log     *slog.Logger
	llm     completer
	prompts renderer
	cache   Cache
	workers int

	group singleflight.Group
}

// NewResolver creates a Resolver. workers bounds ResolveBatch concurrency.
func NewResolver(logger *slog.Logger, llm completer, prompts renderer, cache Cache, workers int) *Resolver {
	if workers < 1 {
		workers = defaultBatchWorkers
	}
	return &Resolver{
		log:     logger.With("service", "lemma"),
		llm:     llm,
		prompts: prompts,
		cache:   cache,
		workers: workers,
	}
}

// Resolve returns the headword for word in targetLanguage. A non-nil context
// selects the context-aware prompt and is part of the cache key. word is
// trimmed before keying. Multi-word expressions are resolved as a whole.
func (r *Resolver) Resolve(ctx context.Context, word, targetLanguage string, sentence *string) (string, error) {
	word = strings.TrimSpace(word)
	if err := validateInput(word, targetLanguage); err != nil {
		return "", err
	}

	key := domain.NewLemmaKey(word, targetLanguage, sentence)
	if v, ok := r.cache.Get(ctx, key); ok {
		r.log.DebugContext(ctx, "lemma cache hit", slog.String("word", word), slog.String("lemma", v))
		return v, nil
	}

	// Shared by every caller waiting on key; detached from any one caller's
	// cancellation and bounded by fetchTimeout instead.
	ch := r.group.DoChan(key.CacheKey(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		if v, ok := r.cache.Get(fctx, key); ok {
			return v, nil
		}
		lemma, err := r.fetch(fctx, key)
		if err != nil {
			return "", err
		}
		r.cache.Put(fctx, key, lemma)
		return lemma, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("resolve lemma %q: %w", word, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return "", res.Err
	}
	if res.Shared {
		r.log.DebugContext(ctx, "lemma request shared", slog.String("word", word))
	}
	return res.Val.(string), nil
}

// BatchResult reports the outcome of ResolveBatch per input word.
type BatchResult struct {
	Lemmas map[string]string
	Failed map[string]error
}

// ResolveBatch resolves words without context using at most the configured
// number of concurrent remote calls. A failure for one word does not stop the
// others; only cancellation of ctx aborts the batch.
func (r *Resolver) ResolveBatch(ctx context.Context, words []string, targetLanguage string) (*BatchResult, error) {
	res := &BatchResult{
		Lemmas: make(map[string]string, len(words)),
		Failed: make(map[string]error),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, w := range words {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lemma, err := r.Resolve(gctx, w, targetLanguage, nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[w] = err
				return nil
			}
			res.Lemmas[w] = lemma
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("resolve batch: %w", err)
	}

	r.log.InfoContext(ctx, "lemma batch resolved",
		slog.Int("words", len(words)),
		slog.Int("resolved", len(res.Lemmas)),
		slog.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func (r *Resolver) fetch(ctx context.Context, key domain.LemmaKey) (string, error) {
	name := prompt.Lemma
	system := systemPlain
	vars := map[string]string{
		prompt.VarTargetWord:     key.RawWord,
		prompt.VarTargetLanguage: key.TargetLanguage,
	}
	if key.HasContext() {
		name = prompt.LemmaContext
		system = systemContext
		vars[prompt.VarSentenceContext] = *key.Context
	}

	text, err := r.prompts.Render(name, vars)
	if err != nil {
		return "", fmt.Errorf("render lemma prompt: %w", err)
	}

	resp, err := r.llm.Complete(ctx, llm.Request{
		System: []string{system},
		Prompt: text,
	})
	if err != nil {
		r.log.ErrorContext(ctx, "lemma request failed", slog.String("word", key.RawWord), slog.String("error", err.Error()))
		return "", fmt.Errorf("resolve lemma %q: %w", key.RawWord, err)
	}

	lemma, err := cleanLemma(resp, key.RawWord)
	if err != nil {
		r.log.WarnContext(ctx, "lemma rejected", slog.String("word", key.RawWord), slog.String("raw", resp))
		return "", err
	}

	r.log.InfoContext(ctx, "lemma resolved",
		slog.String("word", key.RawWord),
		slog.String("lemma", lemma),
		slog.Bool("context", key.HasContext()),
	)
	return lemma, nil
}

func validateInput(word, targetLanguage string) error {
	var errs []domain.FieldError
	if word == "" {
		errs = append(errs, domain.FieldError{Field: "word", Message: "required"})
	} else if len(word) > 500 {
		errs = append(errs, domain.FieldError{Field: "word", Message: "too long (max 500)"})
	}
	if strings.TrimSpace(targetLanguage) == "" {
		errs = append(errs, domain.FieldError{Field: "target_language", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
