package dictionary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/entrygen"
)

// ---------------------------------------------------------------------------
// 2. Regenerate
// ---------------------------------------------------------------------------

// Regenerate asks for a reworded version of a stored entry under the same
// languages and replaces it. The stored headword is kept even if the model
// spells it differently. On failure the stored entry is left untouched.
func (s *Service) Regenerate(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
	existing, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	langs := existing.Entry.Metadata.Languages()
	gen, err := s.generator.Generate(ctx, existing.Entry.Headword, langs, entrygen.Options{Variation: true})
	if err != nil {
		return nil, err
	}

	next := domain.StoredEntry{
		ID:              existing.ID,
		Entry:           gen.Entry,
		LanguageWarning: gen.LanguageWarning,
		CreatedAt:       existing.CreatedAt,
	}
	next.Entry.Headword = existing.Entry.Headword

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.entries.Replace(ctx, id, next)
	})
	if err != nil {
		return nil, fmt.Errorf("replace entry: %w", err)
	}

	s.log.InfoContext(ctx, "entry regenerated",
		slog.String("entry_id", id.String()),
		slog.String("headword", next.Entry.Headword),
	)
	return &next, nil
}
