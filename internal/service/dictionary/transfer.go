package dictionary

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/lexicon/internal/domain"
)

const maxImportLineBytes = 4 << 20

// ---------------------------------------------------------------------------
// 4. Export
// ---------------------------------------------------------------------------

// Export writes every entry matching f to w as JSON Lines, one stored entry
// per line, ordered by headword. Paging fields of f are ignored.
func (s *Service) Export(ctx context.Context, w io.Writer, f domain.EntryFilter) (int, error) {
	f.Limit = domain.MaxSearchLimit
	f.Offset = 0

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	written := 0
	for {
		page, err := s.entries.Search(ctx, f)
		if err != nil {
			return written, fmt.Errorf("export entries: %w", err)
		}
		for i := range page {
			if err := enc.Encode(page[i]); err != nil {
				return written, fmt.Errorf("write entry: %w", err)
			}
			written++
		}
		if len(page) < f.Limit {
			break
		}
		f.Offset += len(page)
	}

	s.log.InfoContext(ctx, "entries exported", slog.Int("count", written))
	return written, nil
}

// ---------------------------------------------------------------------------
// 5. Import
// ---------------------------------------------------------------------------

// Import reads JSON Lines from r and stores every valid entry. A line is
// either an exported stored entry or a bare dictionary entry; its languages
// are taken from the entry metadata. Each line is validated against the
// entry schema. Invalid lines are reported, entries already stored are
// skipped.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	result := &ImportResult{Errors: []ImportError{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLineBytes)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := s.importLine(ctx, line)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, domain.ErrAlreadyExists):
			result.Skipped++
		case errors.Is(err, domain.ErrSchemaViolation), errors.Is(err, domain.ErrValidation):
			result.Errors = append(result.Errors, ImportError{LineNumber: lineNumber, Reason: err.Error()})
		default:
			return result, fmt.Errorf("import line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read import: %w", err)
	}

	s.log.InfoContext(ctx, "entries imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *Service) importLine(ctx context.Context, line string) error {
	if !gjson.Valid(line) {
		return domain.NewResponseError(domain.ErrSchemaViolation, line, "invalid json")
	}

	body := line
	var warning *string
	if wrapped := gjson.Get(line, "entry"); wrapped.IsObject() {
		body = wrapped.Raw
		if w := gjson.Get(line, "language_warning"); w.Type == gjson.String {
			v := w.String()
			warning = &v
		}
	}

	langs := domain.LanguageConfig{
		SourceLanguage:     gjson.Get(body, "metadata.source_language").String(),
		TargetLanguage:     gjson.Get(body, "metadata.target_language").String(),
		DefinitionLanguage: gjson.Get(body, "metadata.definition_language").String(),
	}
	if err := langs.Validate(); err != nil {
		return err
	}

	gen, err := s.generator.Parse(body, langs)
	if err != nil {
		return err
	}
	if warning == nil {
		warning = gen.LanguageWarning
	}

	e := domain.StoredEntry{Entry: gen.Entry, LanguageWarning: warning}
	return s.entries.Create(ctx, &e)
}
