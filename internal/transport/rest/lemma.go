package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/lemma"
)

const maxBatchWords = 200

type lemmaResolver interface {
	Resolve(ctx context.Context, word, targetLanguage string, sentence *string) (string, error)
	ResolveBatch(ctx context.Context, words []string, targetLanguage string) (*lemma.BatchResult, error)
}

type languageNormalizer interface {
	Normalize(ctx context.Context, raw string) (domain.LanguageName, error)
}

// LanguageToolsHandler serves lemma resolution and language normalization.
type LanguageToolsHandler struct {
	lemmas        lemmaResolver
	languages     languageNormalizer
	defaultTarget string
	log           *slog.Logger
}

// NewLanguageToolsHandler creates a LanguageToolsHandler. defaultTarget is
// used when a lemma request names no target language.
func NewLanguageToolsHandler(
	lemmas lemmaResolver,
	languages languageNormalizer,
	defaultTarget string,
	logger *slog.Logger,
) *LanguageToolsHandler {
	return &LanguageToolsHandler{
		lemmas:        lemmas,
		languages:     languages,
		defaultTarget: defaultTarget,
		log:           logger.With("handler", "language_tools"),
	}
}

type lemmaRequest struct {
	Word           string  `json:"word"`
	TargetLanguage string  `json:"target_language"`
	Context        *string `json:"context"`
}

type lemmaResponse struct {
	Word           string `json:"word"`
	Headword       string `json:"headword"`
	TargetLanguage string `json:"target_language"`
}

type lemmaBatchRequest struct {
	Words          []string `json:"words"`
	TargetLanguage string   `json:"target_language"`
}

type lemmaBatchResponse struct {
	Lemmas map[string]string `json:"lemmas"`
	Failed map[string]string `json:"failed"`
}

type normalizeRequest struct {
	Name string `json:"name"`
}

// Lemma handles POST /api/lemma.
func (h *LanguageToolsHandler) Lemma(w http.ResponseWriter, r *http.Request) {
	var req lemmaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.target(r.Context(), req.TargetLanguage)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	headword, err := h.lemmas.Resolve(r.Context(), req.Word, target, req.Context)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lemmaResponse{
		Word:           req.Word,
		Headword:       headword,
		TargetLanguage: target,
	})
}

// LemmaBatch handles POST /api/lemma/batch. Words that fail are reported
// per word; the request itself only fails on invalid input.
func (h *LanguageToolsHandler) LemmaBatch(w http.ResponseWriter, r *http.Request) {
	var req lemmaBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch {
	case len(req.Words) == 0:
		handleError(h.log, w, r, domain.NewValidationError("words", "required"))
		return
	case len(req.Words) > maxBatchWords:
		handleError(h.log, w, r, domain.NewValidationError("words", fmt.Sprintf("too many (max %d)", maxBatchWords)))
		return
	}

	target, err := h.target(r.Context(), req.TargetLanguage)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.lemmas.ResolveBatch(r.Context(), req.Words, target)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := lemmaBatchResponse{
		Lemmas: res.Lemmas,
		Failed: make(map[string]string, len(res.Failed)),
	}
	for word, ferr := range res.Failed {
		resp.Failed[word] = ferr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// NormalizeLanguage handles POST /api/languages/normalize.
func (h *LanguageToolsHandler) NormalizeLanguage(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, err := h.languages.Normalize(r.Context(), req.Name)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, name)
}

func (h *LanguageToolsHandler) target(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		raw = h.defaultTarget
	}
	name, err := h.languages.Normalize(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("target language: %w", err)
	}
	return name.StandardizedName, nil
}
