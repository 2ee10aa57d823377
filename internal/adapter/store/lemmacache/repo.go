// Package lemmacache persists resolved headwords so lemma lookups survive
// restarts.
package lemmacache

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/lexicon/internal/adapter/store"
	"github.com/heartmarshall/lexicon/internal/domain"
)

// Repo stores lemma cache rows keyed on (word, target_language, context_hash).
type Repo struct {
	db *store.DB
}

// New creates a new lemma cache repository.
func New(db *store.DB) *Repo {
	return &Repo{db: db}
}

func keyWhere(key domain.LemmaKey) squirrel.Eq {
	return squirrel.Eq{
		"word":            key.RawWord,
		"target_language": key.TargetLanguage,
		"context_hash":    key.ContextHash(),
	}
}

// Get returns the cached lemma for key.
// Returns domain.ErrNotFound on a miss.
func (r *Repo) Get(ctx context.Context, key domain.LemmaKey) (string, error) {
	query, args, err := r.db.Builder().
		Select("lemma").From("lemma_cache").Where(keyWhere(key)).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select lemma: %w", err)
	}

	var lemma string
	if err := store.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&lemma); err != nil {
		return "", store.MapError(err, "lemma", key.RawWord)
	}
	return lemma, nil
}

// Put stores lemma for key. An existing row is left untouched, so the first
// resolution of a key wins.
func (r *Repo) Put(ctx context.Context, key domain.LemmaKey, lemma string) error {
	query, args, err := r.db.Builder().
		Insert("lemma_cache").
		Columns("word", "target_language", "context_hash", "lemma", "created_at").
		Values(key.RawWord, key.TargetLanguage, key.ContextHash(), lemma, time.Now().UTC()).
		Suffix("ON CONFLICT (word, target_language, context_hash) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert lemma: %w", err)
	}

	if _, err := store.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return store.MapError(err, "lemma", key.RawWord)
	}
	return nil
}

// Clear removes every cached lemma and returns how many rows were deleted.
func (r *Repo) Clear(ctx context.Context) (int64, error) {
	query, args, err := r.db.Builder().Delete("lemma_cache").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete lemmas: %w", err)
	}

	res, err := store.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear lemma cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear lemma cache: %w", err)
	}
	return n, nil
}

// Count returns the number of cached lemmas.
func (r *Repo) Count(ctx context.Context) (int, error) {
	query, args, err := r.db.Builder().Select("COUNT(*)").From("lemma_cache").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count lemmas: %w", err)
	}

	var n int
	if err := store.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lemmas: %w", err)
	}
	return n, nil
}
