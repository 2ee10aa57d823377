package language

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/lexicon/internal/adapter/provider/llm"
	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/prompt"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type renderer interface {
	Render(name prompt.Name, vars map[string]string) (string, error)
}

const systemMessage = "You are a language identification and standardization assistant."

// fetchTimeout bounds a shared remote fetch once it no longer follows the
// first caller's context.
const fetchTimeout = time.Minute

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service maps free-text language names to canonical English names.
// Results are cached for the lifetime of the Service.
type Service struct {
	log     *slog.Logger
	llm     completer
	prompts renderer

	mu    sync.RWMutex
	cache map[string]domain.LanguageName
	group singleflight.Group
}

// NewService creates a language normalizer.
func NewService(logger *slog.Logger, llm completer, prompts renderer) *Service {
	return &Service{
		log:     logger.With("service", "language"),
		llm:     llm,
		prompts: prompts,
		cache:   make(map[string]domain.LanguageName),
	}
}

// Normalize returns the canonical name of raw. The input is trimmed; the
// trimmed form is what DisplayName must echo.
func (s *Service) Normalize(ctx context.Context, raw string) (domain.LanguageName, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.LanguageName{}, domain.NewValidationError("language", "required")
	}

	if name, ok := s.cached(raw); ok {
		return name, nil
	}

	// Shared by every caller waiting on raw; detached from any one caller's
	// cancellation and bounded by fetchTimeout instead.
	ch := s.group.DoChan(raw, func() (any, error) {
		if name, ok := s.cached(raw); ok {
			return name, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		name, err := s.fetch(fctx, raw)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[raw] = name
		s.mu.Unlock()
		return name, nil
	})

	select {
	case <-ctx.Done():
		return domain.LanguageName{}, fmt.Errorf("normalize language %q: %w", raw, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.LanguageName{}, res.Err
		}
		return res.Val.(domain.LanguageName), nil
	}
}

// NormalizeConfig normalizes all three languages of cfg.
func (s *Service) NormalizeConfig(ctx context.Context, cfg domain.LanguageConfig) (domain.LanguageConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.LanguageConfig{}, err
	}

	source, err := s.Normalize(ctx, cfg.SourceLanguage)
	if err != nil {
		return domain.LanguageConfig{}, fmt.Errorf("source language: %w", err)
	}
	target, err := s.Normalize(ctx, cfg.TargetLanguage)
	if err != nil {
		return domain.LanguageConfig{}, fmt.Errorf("target language: %w", err)
	}
	def, err := s.Normalize(ctx, cfg.DefinitionLanguage)
	if err != nil {
		return domain.LanguageConfig{}, fmt.Errorf("definition language: %w", err)
	}

	return domain.LanguageConfig{
		SourceLanguage:     source.StandardizedName,
		TargetLanguage:     target.StandardizedName,
		DefinitionLanguage: def.StandardizedName,
	}, nil
}

func (s *Service) cached(raw string) (domain.LanguageName, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.cache[raw]
	return name, ok
}

type validationPayload struct {
	StandardizedName *string `json:"standardized_name"`
	DisplayName      *string `json:"display_name"`
}

func (s *Service) fetch(ctx context.Context, raw string) (domain.LanguageName, error) {
	text, err := s.prompts.Render(prompt.LanguageValidation, map[string]string{
		prompt.VarInputLanguage: raw,
	})
	if err != nil {
		return domain.LanguageName{}, fmt.Errorf("render language prompt: %w", err)
	}

	resp, err := s.llm.Complete(ctx, llm.Request{
		System: []string{systemMessage},
		Prompt: text,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "language normalization failed", slog.String("input", raw), slog.String("error", err.Error()))
		return domain.LanguageName{}, fmt.Errorf("normalize language %q: %w", raw, err)
	}

	name, err := parsePayload(raw, resp)
	if err != nil {
		s.log.WarnContext(ctx, "language normalization rejected", slog.String("input", raw), slog.String("error", err.Error()))
		return domain.LanguageName{}, err
	}

	s.log.DebugContext(ctx, "language normalized",
		slog.String("input", raw),
		slog.String("standardized", name.StandardizedName),
	)
	return name, nil
}

func parsePayload(raw, resp string) (domain.LanguageName, error) {
	body := llm.StripCodeFences(resp)

	var p validationPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.LanguageName{}, domain.NewResponseError(domain.ErrMalformedResponse, resp, "invalid json: %v", err)
	}
	if p.StandardizedName == nil || strings.TrimSpace(*p.StandardizedName) == "" {
		return domain.LanguageName{}, domain.NewResponseError(domain.ErrMalformedResponse, resp, "standardized_name missing")
	}
	if p.DisplayName == nil || *p.DisplayName == "" {
		return domain.LanguageName{}, domain.NewResponseError(domain.ErrMalformedResponse, resp, "display_name missing")
	}
	if *p.DisplayName != raw {
		return domain.LanguageName{}, domain.NewResponseError(domain.ErrMalformedResponse, resp,
			"display_name %q does not echo input %q", *p.DisplayName, raw)
	}

	return domain.LanguageName{
		RawInput:         raw,
		StandardizedName: strings.TrimSpace(*p.StandardizedName),
		DisplayName:      *p.DisplayName,
	}, nil
}
