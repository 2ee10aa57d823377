package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/dictionary"
	"github.com/heartmarshall/lexicon/internal/service/lemma"
)

var errUnexpected = errors.New("unexpected call")

type mockDictionaryService struct {
	LookupFunc     func(ctx context.Context, in dictionary.LookupInput) (*dictionary.LookupResult, error)
	RegenerateFunc func(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error)
	GetFunc        func(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error)
	SearchFunc     func(ctx context.Context, f domain.EntryFilter) (*dictionary.SearchResult, error)
	DeleteFunc     func(ctx context.Context, id uuid.UUID) error
	LanguagesFunc  func(ctx context.Context) (domain.Languages, error)
	ExportFunc     func(ctx context.Context, w io.Writer, f domain.EntryFilter) (int, error)
	ImportFunc     func(ctx context.Context, r io.Reader) (*dictionary.ImportResult, error)
}

func (m *mockDictionaryService) Lookup(ctx context.Context, in dictionary.LookupInput) (*dictionary.LookupResult, error) {
	if m.LookupFunc == nil {
		return nil, errUnexpected
	}
	return m.LookupFunc(ctx, in)
}

func (m *mockDictionaryService) Regenerate(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
	if m.RegenerateFunc == nil {
		return nil, errUnexpected
	}
	return m.RegenerateFunc(ctx, id)
}

func (m *mockDictionaryService) Get(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
	if m.GetFunc == nil {
		return nil, errUnexpected
	}
	return m.GetFunc(ctx, id)
}

func (m *mockDictionaryService) Search(ctx context.Context, f domain.EntryFilter) (*dictionary.SearchResult, error) {
	if m.SearchFunc == nil {
		return nil, errUnexpected
	}
	return m.SearchFunc(ctx, f)
}

func (m *mockDictionaryService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc == nil {
		return errUnexpected
	}
	return m.DeleteFunc(ctx, id)
}

func (m *mockDictionaryService) Languages(ctx context.Context) (domain.Languages, error) {
	if m.LanguagesFunc == nil {
		return domain.Languages{}, errUnexpected
	}
	return m.LanguagesFunc(ctx)
}

func (m *mockDictionaryService) Export(ctx context.Context, w io.Writer, f domain.EntryFilter) (int, error) {
	if m.ExportFunc == nil {
		return 0, errUnexpected
	}
	return m.ExportFunc(ctx, w, f)
}

func (m *mockDictionaryService) Import(ctx context.Context, r io.Reader) (*dictionary.ImportResult, error) {
	if m.ImportFunc == nil {
		return nil, errUnexpected
	}
	return m.ImportFunc(ctx, r)
}

type mockLemmaResolver struct {
	ResolveFunc      func(ctx context.Context, word, targetLanguage string, sentence *string) (string, error)
	ResolveBatchFunc func(ctx context.Context, words []string, targetLanguage string) (*lemma.BatchResult, error)
}

func (m *mockLemmaResolver) Resolve(ctx context.Context, word, targetLanguage string, sentence *string) (string, error) {
	if m.ResolveFunc == nil {
		return "", errUnexpected
	}
	return m.ResolveFunc(ctx, word, targetLanguage, sentence)
}

func (m *mockLemmaResolver) ResolveBatch(ctx context.Context, words []string, targetLanguage string) (*lemma.BatchResult, error) {
	if m.ResolveBatchFunc == nil {
		return nil, errUnexpected
	}
	return m.ResolveBatchFunc(ctx, words, targetLanguage)
}

type mockLanguageNormalizer struct {
	NormalizeFunc func(ctx context.Context, raw string) (domain.LanguageName, error)
}

func (m *mockLanguageNormalizer) Normalize(ctx context.Context, raw string) (domain.LanguageName, error) {
	if m.NormalizeFunc == nil {
		return domain.LanguageName{RawInput: raw, StandardizedName: raw, DisplayName: raw}, nil
	}
	return m.NormalizeFunc(ctx, raw)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func testStoredEntry(headword string) domain.StoredEntry {
	return domain.StoredEntry{
		ID: uuid.New(),
		Entry: domain.DictionaryEntry{
			Metadata: domain.Metadata{
				SourceLanguage:     "English",
				TargetLanguage:     "English",
				DefinitionLanguage: "English",
			},
			Headword:     headword,
			PartOfSpeech: domain.SinglePOS("verb"),
			Meanings: []domain.Meaning{{
				Definition: "to move fast on foot",
				Examples:   []domain.Example{{Sentence: "I run every day."}},
			}},
		},
	}
}
