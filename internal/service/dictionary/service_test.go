package dictionary

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/entrygen"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockEntryRepo struct {
	mu sync.Mutex

	CreateFunc        func(ctx context.Context, e *domain.StoredEntry) error
	ReplaceFunc       func(ctx context.Context, id uuid.UUID, e domain.StoredEntry) error
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error)
	GetByHeadwordFunc func(ctx context.Context, headword string, langs domain.LanguageConfig) (*domain.StoredEntry, error)
	SearchFunc        func(ctx context.Context, f domain.EntryFilter) ([]domain.StoredEntry, error)
	CountFunc         func(ctx context.Context, f domain.EntryFilter) (int, error)
	LanguagesFunc     func(ctx context.Context) (domain.Languages, error)

	created  []domain.StoredEntry
	replaced []domain.StoredEntry
}

func (m *mockEntryRepo) Create(ctx context.Context, e *domain.StoredEntry) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, e); err != nil {
			return err
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.mu.Lock()
	m.created = append(m.created, *e)
	m.mu.Unlock()
	return nil
}

func (m *mockEntryRepo) Replace(ctx context.Context, id uuid.UUID, e domain.StoredEntry) error {
	if m.ReplaceFunc != nil {
		if err := m.ReplaceFunc(ctx, id, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.replaced = append(m.replaced, e)
	m.mu.Unlock()
	return nil
}

func (m *mockEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEntryRepo) GetByHeadword(ctx context.Context, headword string, langs domain.LanguageConfig) (*domain.StoredEntry, error) {
	if m.GetByHeadwordFunc != nil {
		return m.GetByHeadwordFunc(ctx, headword, langs)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEntryRepo) Search(ctx context.Context, f domain.EntryFilter) ([]domain.StoredEntry, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, f)
	}
	return []domain.StoredEntry{}, nil
}

func (m *mockEntryRepo) Count(ctx context.Context, f domain.EntryFilter) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, f)
	}
	return 0, nil
}

func (m *mockEntryRepo) Languages(ctx context.Context) (domain.Languages, error) {
	if m.LanguagesFunc != nil {
		return m.LanguagesFunc(ctx)
	}
	return domain.Languages{}, nil
}

type mockResolver struct {
	ResolveFunc func(ctx context.Context, word, targetLanguage string, sentence *string) (string, error)
}

func (m *mockResolver) Resolve(ctx context.Context, word, targetLanguage string, sentence *string) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, word, targetLanguage, sentence)
	}
	return word, nil
}

type mockNormalizer struct {
	NormalizeConfigFunc func(ctx context.Context, cfg domain.LanguageConfig) (domain.LanguageConfig, error)
}

func (m *mockNormalizer) NormalizeConfig(ctx context.Context, cfg domain.LanguageConfig) (domain.LanguageConfig, error) {
	if m.NormalizeConfigFunc != nil {
		return m.NormalizeConfigFunc(ctx, cfg)
	}
	return cfg, nil
}

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, headword string, langs domain.LanguageConfig, opts entrygen.Options) (*entrygen.Generated, error)
	ParseFunc    func(raw string, langs domain.LanguageConfig) (*entrygen.Generated, error)

	mu    sync.Mutex
	calls []entrygen.Options
}

func (m *mockGenerator) Generate(ctx context.Context, headword string, langs domain.LanguageConfig, opts entrygen.Options) (*entrygen.Generated, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, headword, langs, opts)
	}
	return &entrygen.Generated{Entry: testEntry(headword, langs)}, nil
}

func (m *mockGenerator) Parse(raw string, langs domain.LanguageConfig) (*entrygen.Generated, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(raw, langs)
	}
	return nil, domain.ErrSchemaViolation
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// ===========================================================================
// Helpers
// ===========================================================================

var testLangs = domain.LanguageConfig{
	SourceLanguage:     "English",
	TargetLanguage:     "Spanish",
	DefinitionLanguage: "English",
}

func testEntry(headword string, langs domain.LanguageConfig) domain.DictionaryEntry {
	return domain.DictionaryEntry{
		Metadata:     domain.MetadataFor(langs),
		Headword:     headword,
		PartOfSpeech: domain.SinglePOS("verb"),
		Meanings: []domain.Meaning{{
			Definition: "to move swiftly on foot",
			Examples:   []domain.Example{{Sentence: "Corro."}},
		}},
	}
}

type testDeps struct {
	entries   *mockEntryRepo
	resolver  *mockResolver
	languages *mockNormalizer
	generator *mockGenerator
	tx        *mockTxManager
}

func newTestService() (*Service, *testDeps) {
	d := &testDeps{
		entries:   &mockEntryRepo{},
		resolver:  &mockResolver{},
		languages: &mockNormalizer{},
		generator: &mockGenerator{},
		tx:        &mockTxManager{},
	}
	svc := NewService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		d.entries, d.resolver, d.languages, d.generator, d.tx,
		testLangs,
	)
	return svc, d
}
