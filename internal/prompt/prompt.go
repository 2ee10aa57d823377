// Package prompt holds the text templates sent to the language model.
//
// Templates use bracketed upper-case placeholders such as [TARGET_WORD].
// Rendering replaces each placeholder literally in a single pass, so values
// that themselves contain brackets are never expanded again.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Name identifies a template.
type Name string

const (
	Lemma              Name = "lemma"
	LemmaContext       Name = "lemma_context"
	Entry              Name = "entry"
	EntryContext       Name = "entry_context"
	LanguageValidation Name = "language_validation"
)

// Placeholder names.
const (
	VarTargetWord         = "TARGET_WORD"
	VarTargetLanguage     = "TARGET_LANGUAGE"
	VarSourceLanguage     = "SOURCE_LANGUAGE"
	VarDefinitionLanguage = "DEFINITION_LANGUAGE"
	VarSentenceContext    = "SENTENCE_CONTEXT"
	VarInputLanguage      = "INPUT_LANGUAGE"
)

var (
	ErrUnknownTemplate    = errors.New("unknown template")
	ErrMissingPlaceholder = errors.New("missing placeholder value")
)

var allNames = []Name{Lemma, LemmaContext, Entry, EntryContext, LanguageValidation}

var placeholderRe = regexp.MustCompile(`\[([A-Z_]+)\]`)

//go:embed templates/*.txt
var defaultFS embed.FS

// Set is an immutable collection of templates.
type Set struct {
	templates map[Name]string
}

// Default returns the embedded templates.
func Default() *Set {
	s := &Set{templates: make(map[Name]string, len(allNames))}
	for _, n := range allNames {
		b, err := defaultFS.ReadFile("templates/" + string(n) + ".txt")
		if err != nil {
			panic(fmt.Sprintf("prompt: embedded template %s: %v", n, err))
		}
		s.templates[n] = string(b)
	}
	return s
}

// With returns a copy of s with the given templates replaced.
func (s *Set) With(overrides map[Name]string) (*Set, error) {
	out := &Set{templates: make(map[Name]string, len(s.templates))}
	for k, v := range s.templates {
		out.templates[k] = v
	}
	for name, text := range overrides {
		if _, ok := s.templates[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt %s: empty template", name)
		}
		out.templates[name] = text
	}
	return out, nil
}

// Text returns the raw template.
func (s *Set) Text(name Name) (string, error) {
	t, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Render substitutes vars into the named template. Every placeholder in the
// template must have a value; extra vars are ignored.
func (s *Set) Render(name Name, vars map[string]string) (string, error) {
	t, err := s.Text(name)
	if err != nil {
		return "", err
	}
	return RenderText(t, vars)
}

// RenderText substitutes vars into an arbitrary template text.
func RenderText(text string, vars map[string]string) (string, error) {
	var missing []string
	for _, p := range Placeholders(text) {
		if _, ok := vars[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingPlaceholder, strings.Join(missing, ", "))
	}

	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		return vars[m[1:len(m)-1]]
	}), nil
}

// Placeholders lists the distinct placeholder names in text, sorted.
func Placeholders(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
