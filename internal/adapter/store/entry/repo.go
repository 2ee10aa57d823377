// Package entry implements the dictionary entry repository. An entry is
// stored across three tables (entries, meanings, examples) and always
// written and replaced as a whole inside one transaction.
package entry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/adapter/store"
	"github.com/heartmarshall/lexicon/internal/domain"
)

// Repo provides dictionary entry persistence.
type Repo struct {
	db *store.DB
	tx *store.TxManager
}

// New creates a new entry repository.
func New(db *store.DB) *Repo {
	return &Repo{db: db, tx: store.NewTxManager(db)}
}

var entryColumns = []string{
	"id", "headword", "part_of_speech",
	"source_language", "target_language", "definition_language",
	"language_warning", "created_at",
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts e with its meanings and examples. A zero ID or CreatedAt is
// filled in. Returns domain.ErrAlreadyExists when an entry with the same
// headword and languages is already stored.
func (r *Repo) Create(ctx context.Context, e *domain.StoredEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	md := e.Entry.Metadata

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := store.QuerierFromCtx(ctx, r.db)

		query, args, err := r.db.Builder().
			Insert("entries").
			Columns(append(entryColumns, "headword_normalized")...).
			Values(
				e.ID, e.Entry.Headword, e.Entry.PartOfSpeech.StorageValue(),
				md.SourceLanguage, md.TargetLanguage, md.DefinitionLanguage,
				e.LanguageWarning, e.CreatedAt,
				domain.NormalizeText(e.Entry.Headword),
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert entry: %w", err)
		}

		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return store.MapError(err, "entry", e.Entry.Headword)
		}

		return r.insertMeanings(ctx, q, e.ID, e.Entry.Meanings)
	})
}

// Replace overwrites the content of the stored entry id with e, keeping its
// ID and creation time.
func (r *Repo) Replace(ctx context.Context, id uuid.UUID, e domain.StoredEntry) error {
	md := e.Entry.Metadata

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := store.QuerierFromCtx(ctx, r.db)

		query, args, err := r.db.Builder().
			Update("entries").
			Set("headword", e.Entry.Headword).
			Set("headword_normalized", domain.NormalizeText(e.Entry.Headword)).
			Set("part_of_speech", e.Entry.PartOfSpeech.StorageValue()).
			Set("source_language", md.SourceLanguage).
			Set("target_language", md.TargetLanguage).
			Set("definition_language", md.DefinitionLanguage).
			Set("language_warning", e.LanguageWarning).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update entry: %w", err)
		}

		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return store.MapError(err, "entry", id)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
		}

		query, args, err = r.db.Builder().Delete("meanings").Where(squirrel.Eq{"entry_id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete meanings: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return store.MapError(err, "meanings", id)
		}

		return r.insertMeanings(ctx, q, id, e.Entry.Meanings)
	})
}

// Delete removes the entry with the given ID. Meanings and examples are
// removed by cascade.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.db.Builder().Delete("entries").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete entry: %w", err)
	}

	res, err := store.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return store.MapError(err, "entry", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) insertMeanings(ctx context.Context, q store.Querier, id uuid.UUID, meanings []domain.Meaning) error {
	if len(meanings) == 0 {
		return nil
	}

	mb := r.db.Builder().Insert("meanings").
		Columns("entry_id", "position", "definition", "noun_type", "verb_type", "comparison")
	eb := r.db.Builder().Insert("examples").
		Columns("entry_id", "meaning_position", "position", "sentence", "translation")
	hasExamples := false

	for i, m := range meanings {
		mb = mb.Values(id, i, m.Definition, m.Grammar.NounType, m.Grammar.VerbType, m.Grammar.Comparison)
		for j, ex := range m.Examples {
			eb = eb.Values(id, i, j, ex.Sentence, ex.Translation)
			hasExamples = true
		}
	}

	query, args, err := mb.ToSql()
	if err != nil {
		return fmt.Errorf("build insert meanings: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return store.MapError(err, "meanings", id)
	}

	if !hasExamples {
		return nil
	}
	query, args, err = eb.ToSql()
	if err != nil {
		return fmt.Errorf("build insert examples: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return store.MapError(err, "examples", id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns the entry with the given ID.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
	entries, err := r.load(ctx, r.selectEntries().Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return &entries[0], nil
}

// GetByHeadword returns the entry stored for headword under langs.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByHeadword(ctx context.Context, headword string, langs domain.LanguageConfig) (*domain.StoredEntry, error) {
	entries, err := r.load(ctx, r.selectEntries().Where(squirrel.Eq{
		"headword":            headword,
		"source_language":     langs.SourceLanguage,
		"target_language":     langs.TargetLanguage,
		"definition_language": langs.DefinitionLanguage,
	}))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %q: %w", headword, domain.ErrNotFound)
	}
	return &entries[0], nil
}

// Search returns entries matching f ordered by headword.
// Returns an empty slice (not nil) when nothing matches.
func (r *Repo) Search(ctx context.Context, f domain.EntryFilter) ([]domain.StoredEntry, error) {
	f = f.Normalize()

	sb := applyFilter(r.selectEntries(), f).
		OrderBy("headword_normalized", "headword", "id").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	return r.load(ctx, sb)
}

// Count returns the number of entries matching f, ignoring paging.
func (r *Repo) Count(ctx context.Context, f domain.EntryFilter) (int, error) {
	f = f.Normalize()

	query, args, err := applyFilter(r.db.Builder().Select("COUNT(*)").From("entries"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count entries: %w", err)
	}

	var n int
	if err := store.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Languages returns the distinct languages present in the store, per role,
// sorted alphabetically.
func (r *Repo) Languages(ctx context.Context) (domain.Languages, error) {
	var (
		out domain.Languages
		err error
	)
	if out.Source, err = r.distinct(ctx, "source_language"); err != nil {
		return domain.Languages{}, err
	}
	if out.Target, err = r.distinct(ctx, "target_language"); err != nil {
		return domain.Languages{}, err
	}
	if out.Definition, err = r.distinct(ctx, "definition_language"); err != nil {
		return domain.Languages{}, err
	}
	return out, nil
}

func (r *Repo) distinct(ctx context.Context, column string) ([]string, error) {
	query, args, err := r.db.Builder().
		Select(column).Distinct().From("entries").OrderBy(column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build distinct %s: %w", column, err)
	}

	rows, err := store.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *Repo) selectEntries() squirrel.SelectBuilder {
	return r.db.Builder().Select(entryColumns...).From("entries")
}

func applyFilter(sb squirrel.SelectBuilder, f domain.EntryFilter) squirrel.SelectBuilder {
	if f.Query != "" {
		sb = sb.Where(`headword_normalized LIKE ? ESCAPE '\'`, "%"+escapeLike(f.Query)+"%")
	}
	if f.SourceLanguage != "" {
		sb = sb.Where(squirrel.Eq{"source_language": f.SourceLanguage})
	}
	if f.TargetLanguage != "" {
		sb = sb.Where(squirrel.Eq{"target_language": f.TargetLanguage})
	}
	if f.DefinitionLanguage != "" {
		sb = sb.Where(squirrel.Eq{"definition_language": f.DefinitionLanguage})
	}
	return sb
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
