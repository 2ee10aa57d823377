package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/dictionary"
)

// dictionaryService defines the operations DictionaryHandler needs.
type dictionaryService interface {
	Lookup(ctx context.Context, in dictionary.LookupInput) (*dictionary.LookupResult, error)
	Regenerate(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.StoredEntry, error)
	Search(ctx context.Context, f domain.EntryFilter) (*dictionary.SearchResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Languages(ctx context.Context) (domain.Languages, error)
	Export(ctx context.Context, w io.Writer, f domain.EntryFilter) (int, error)
	Import(ctx context.Context, r io.Reader) (*dictionary.ImportResult, error)
}

// DictionaryHandler serves the entry endpoints. It keeps the selection of
// the API caller in step with lookups, regenerations and deletions.
type DictionaryHandler struct {
	svc       dictionaryService
	selection *dictionary.Selection
	log       *slog.Logger
}

// NewDictionaryHandler creates a DictionaryHandler.
func NewDictionaryHandler(svc dictionaryService, selection *dictionary.Selection, logger *slog.Logger) *DictionaryHandler {
	return &DictionaryHandler{
		svc:       svc,
		selection: selection,
		log:       logger.With("handler", "dictionary"),
	}
}

type languagesRequest struct {
	Source     string `json:"source_language"`
	Target     string `json:"target_language"`
	Definition string `json:"definition_language"`
}

func (r *languagesRequest) domain() domain.LanguageConfig {
	if r == nil {
		return domain.LanguageConfig{}
	}
	return domain.LanguageConfig{
		SourceLanguage:     r.Source,
		TargetLanguage:     r.Target,
		DefinitionLanguage: r.Definition,
	}
}

type lookupRequest struct {
	Word      string            `json:"word"`
	Context   *string           `json:"context"`
	Languages *languagesRequest `json:"languages"`
	Force     bool              `json:"force"`
}

type selectionResponse struct {
	Entry *domain.StoredEntry `json:"entry"`
}

// Lookup handles POST /api/lookup.
func (h *DictionaryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Lookup(r.Context(), dictionary.LookupInput{
		Word:      req.Word,
		Context:   req.Context,
		Languages: req.Languages.domain(),
		Force:     req.Force,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entry := result.Entry
	h.selection.Select(&entry)
	writeJSON(w, http.StatusOK, result)
}

// Search handles GET /api/entries.
func (h *DictionaryHandler) Search(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.svc.Search(r.Context(), f)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/entries/{id}.
func (h *DictionaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/entries/{id}.
func (h *DictionaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	h.selection.Apply(dictionary.Change{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// Regenerate handles POST /api/entries/{id}/regenerate.
func (h *DictionaryHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.Regenerate(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	h.selection.Apply(dictionary.Change{ID: id, Entry: entry})
	writeJSON(w, http.StatusOK, entry)
}

// Languages handles GET /api/languages.
func (h *DictionaryHandler) Languages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.svc.Languages(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, langs)
}

// Export handles GET /api/export. The body is JSON Lines.
func (h *DictionaryHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	n, err := h.svc.Export(r.Context(), w, f)
	if err != nil {
		// Headers are already sent.
		h.log.ErrorContext(r.Context(), "export failed",
			slog.Int("written", n),
			slog.String("error", err.Error()),
		)
	}
}

// Import handles POST /api/import with a JSON Lines body.
func (h *DictionaryHandler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Import(r.Context(), r.Body)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CurrentSelection handles GET /api/selection.
func (h *DictionaryHandler) CurrentSelection(w http.ResponseWriter, r *http.Request) {
	entry, _ := h.selection.Current()
	writeJSON(w, http.StatusOK, selectionResponse{Entry: entry})
}

// ClearSelection handles DELETE /api/selection.
func (h *DictionaryHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.selection.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *DictionaryHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(r *http.Request) (domain.EntryFilter, error) {
	q := r.URL.Query()
	f := domain.EntryFilter{
		Query:              q.Get("q"),
		SourceLanguage:     q.Get("source"),
		TargetLanguage:     q.Get("target"),
		DefinitionLanguage: q.Get("definition"),
	}

	var errs []domain.FieldError
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "limit", Message: "must be an integer"})
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, domain.FieldError{Field: "offset", Message: fmt.Sprintf("invalid value %q", v)})
		}
		f.Offset = n
	}
	if len(errs) > 0 {
		return domain.EntryFilter{}, domain.NewValidationErrors(errs)
	}
	return f, nil
}
