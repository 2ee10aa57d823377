package dictionary

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/entrygen"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type entryRepo interface {
	Create(ctx context.Context, e *domain.StoredEntry) error
	Replace(ctx context.Context, id uuid.UUID, e domain.StoredEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error)
	GetByHeadword(ctx context.Context, headword string, langs domain.LanguageConfig) (*domain.StoredEntry, error)
	Search(ctx context.Context, f domain.EntryFilter) ([]domain.StoredEntry, error)
	Count(ctx context.Context, f domain.EntryFilter) (int, error)
	Languages(ctx context.Context) (domain.Languages, error)
}

type lemmaResolver interface {
	Resolve(ctx context.Context, word, targetLanguage string, sentence *string) (string, error)
}

type languageNormalizer interface {
	NormalizeConfig(ctx context.Context, cfg domain.LanguageConfig) (domain.LanguageConfig, error)
}

type entryGenerator interface {
	Generate(ctx context.Context, headword string, langs domain.LanguageConfig, opts entrygen.Options) (*entrygen.Generated, error)
	Parse(raw string, langs domain.LanguageConfig) (*entrygen.Generated, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service ties lemma resolution, entry generation and the local store
// together.
type Service struct {
	log       *slog.Logger
	entries   entryRepo
	lemmas    lemmaResolver
	languages languageNormalizer
	generator entryGenerator
	tx        txManager
	defaults  domain.LanguageConfig
}

// NewService creates a dictionary service. defaults fills in languages a
// lookup leaves empty.
func NewService(
	logger *slog.Logger,
	entries entryRepo,
	lemmas lemmaResolver,
	languages languageNormalizer,
	generator entryGenerator,
	tx txManager,
	defaults domain.LanguageConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "dictionary"),
		entries:   entries,
		lemmas:    lemmas,
		languages: languages,
		generator: generator,
		tx:        tx,
		defaults:  defaults,
	}
}

// Defaults returns the language configuration used when a lookup leaves
// languages empty.
func (s *Service) Defaults() domain.LanguageConfig { return s.defaults }
