package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/entrygen"
)

// ---------------------------------------------------------------------------
// 1. Lookup
// ---------------------------------------------------------------------------

// Lookup resolves the word to its headword and returns the stored entry for
// it, generating and persisting one when none exists or Force is set.
// A failed generation persists nothing.
func (s *Service) Lookup(ctx context.Context, in LookupInput) (*LookupResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	word := strings.TrimSpace(in.Word)

	langs, err := s.languages.NormalizeConfig(ctx, in.Languages.Merge(s.defaults))
	if err != nil {
		return nil, fmt.Errorf("normalize languages: %w", err)
	}

	headword, err := s.lemmas.Resolve(ctx, word, langs.TargetLanguage, in.Context)
	if err != nil {
		return nil, fmt.Errorf("resolve lemma: %w", err)
	}

	if !in.Force {
		existing, err := s.entries.GetByHeadword(ctx, headword, langs)
		switch {
		case err == nil:
			s.log.DebugContext(ctx, "entry served from store", slog.String("headword", headword))
			return &LookupResult{
				Entry:           *existing,
				Headword:        headword,
				Cached:          true,
				LanguageWarning: existing.LanguageWarning,
			}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("get entry: %w", err)
		}
	}

	gen, err := s.generator.Generate(ctx, headword, langs, entrygen.Options{Context: in.Context})
	if err != nil {
		return nil, err
	}

	stored, cached, err := s.save(ctx, domain.StoredEntry{
		Entry:           gen.Entry,
		LanguageWarning: gen.LanguageWarning,
	}, in.Force)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "lookup completed",
		slog.String("word", word),
		slog.String("headword", headword),
		slog.Bool("cached", cached),
		slog.Bool("force", in.Force),
	)

	return &LookupResult{
		Entry:           *stored,
		Headword:        headword,
		Cached:          cached,
		LanguageWarning: stored.LanguageWarning,
	}, nil
}

// save persists e under its own headword. The model may return a headword
// that differs from the resolved lemma; when that headword is already stored
// the existing entry is kept (cached=true) unless replace is set.
func (s *Service) save(ctx context.Context, e domain.StoredEntry, replace bool) (*domain.StoredEntry, bool, error) {
	langs := e.Entry.Metadata.Languages()
	var (
		result *domain.StoredEntry
		cached bool
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.entries.GetByHeadword(ctx, e.Entry.Headword, langs)
		switch {
		case err == nil:
			if !replace {
				result, cached = existing, true
				return nil
			}
			e.ID, e.CreatedAt = existing.ID, existing.CreatedAt
			if err := s.entries.Replace(ctx, existing.ID, e); err != nil {
				return fmt.Errorf("replace entry: %w", err)
			}
		case errors.Is(err, domain.ErrNotFound):
			if err := s.entries.Create(ctx, &e); err != nil {
				return fmt.Errorf("create entry: %w", err)
			}
		default:
			return fmt.Errorf("get entry: %w", err)
		}
		result = &e
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, cached, nil
}
