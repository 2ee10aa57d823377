package entry

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/adapter/store"
	"github.com/heartmarshall/lexicon/internal/domain"
)

// load runs sb and attaches meanings and examples to each entry. Every
// result set is drained before the next query so a single-connection pool
// never blocks.
func (r *Repo) load(ctx context.Context, sb squirrel.SelectBuilder) ([]domain.StoredEntry, error) {
	q := store.QuerierFromCtx(ctx, r.db)

	entries, err := r.scanEntries(ctx, q, sb)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]uuid.UUID, len(entries))
	index := make(map[uuid.UUID]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		index[e.ID] = i
	}

	if err := r.attachMeanings(ctx, q, ids, index, entries); err != nil {
		return nil, err
	}
	if err := r.attachExamples(ctx, q, ids, index, entries); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Entry.Normalize()
	}
	return entries, nil
}

func (r *Repo) scanEntries(ctx context.Context, q store.Querier, sb squirrel.SelectBuilder) ([]domain.StoredEntry, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select entries: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.StoredEntry{}
	for rows.Next() {
		var (
			e   domain.StoredEntry
			pos string
			md  = &e.Entry.Metadata
		)
		if err := rows.Scan(
			&e.ID, &e.Entry.Headword, &pos,
			&md.SourceLanguage, &md.TargetLanguage, &md.DefinitionLanguage,
			&e.LanguageWarning, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Entry.PartOfSpeech = domain.ParseStoredPOS(pos)
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func (r *Repo) attachMeanings(ctx context.Context, q store.Querier, ids []uuid.UUID, index map[uuid.UUID]int, entries []domain.StoredEntry) error {
	query, args, err := r.db.Builder().
		Select("entry_id", "definition", "noun_type", "verb_type", "comparison").
		From("meanings").
		Where(squirrel.Eq{"entry_id": ids}).
		OrderBy("entry_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select meanings: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select meanings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id uuid.UUID
			m  domain.Meaning
		)
		if err := rows.Scan(&id, &m.Definition, &m.Grammar.NounType, &m.Grammar.VerbType, &m.Grammar.Comparison); err != nil {
			return fmt.Errorf("scan meaning: %w", err)
		}
		i := index[id]
		entries[i].Entry.Meanings = append(entries[i].Entry.Meanings, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate meanings: %w", err)
	}
	return nil
}

func (r *Repo) attachExamples(ctx context.Context, q store.Querier, ids []uuid.UUID, index map[uuid.UUID]int, entries []domain.StoredEntry) error {
	query, args, err := r.db.Builder().
		Select("entry_id", "meaning_position", "sentence", "translation").
		From("examples").
		Where(squirrel.Eq{"entry_id": ids}).
		OrderBy("entry_id", "meaning_position", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select examples: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select examples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      uuid.UUID
			meaning int
			ex      domain.Example
		)
		if err := rows.Scan(&id, &meaning, &ex.Sentence, &ex.Translation); err != nil {
			return fmt.Errorf("scan example: %w", err)
		}
		i := index[id]
		if meaning < 0 || meaning >= len(entries[i].Entry.Meanings) {
			return fmt.Errorf("example of entry %s references missing meaning %d", id, meaning)
		}
		m := &entries[i].Entry.Meanings[meaning]
		m.Examples = append(m.Examples, ex)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate examples: %w", err)
	}
	return nil
}
