package dictionary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// ---------------------------------------------------------------------------
// 3. Get / Search / Delete / Languages
// ---------------------------------------------------------------------------

// Get returns a stored entry by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// Search returns a page of stored entries matching f and the total number
// of matches.
func (s *Service) Search(ctx context.Context, f domain.EntryFilter) (*SearchResult, error) {
	f = f.Normalize()

	entries, err := s.entries.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	total, err := s.entries.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	return &SearchResult{Entries: entries, TotalCount: total}, nil
}

// Delete removes a stored entry.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.log.InfoContext(ctx, "entry deleted", slog.String("entry_id", id.String()))
	return nil
}

// Languages lists the languages present in the store.
func (s *Service) Languages(ctx context.Context) (domain.Languages, error) {
	langs, err := s.entries.Languages(ctx)
	if err != nil {
		return domain.Languages{}, fmt.Errorf("list languages: %w", err)
	}
	return langs, nil
}
