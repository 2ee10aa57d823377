package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/lexicon/internal/adapter/provider/llm"
	"github.com/heartmarshall/lexicon/internal/adapter/store"
	"github.com/heartmarshall/lexicon/internal/adapter/store/entry"
	"github.com/heartmarshall/lexicon/internal/adapter/store/lemmacache"
	"github.com/heartmarshall/lexicon/internal/config"
	"github.com/heartmarshall/lexicon/internal/prompt"
	"github.com/heartmarshall/lexicon/internal/service/dictionary"
	"github.com/heartmarshall/lexicon/internal/service/entrygen"
	"github.com/heartmarshall/lexicon/internal/service/language"
	"github.com/heartmarshall/lexicon/internal/service/lemma"
)

// Options control how much of the application Build wires.
type Options struct {
	// Offline allows a missing API key. Operations that call the model then
	// fail with domain.ErrRemoteCallFailed.
	Offline bool
}

// Container holds the wired store and services shared by the commands.
type Container struct {
	DB         *store.DB
	LemmaCache *lemmacache.Repo
	Dictionary *dictionary.Service
	Lemmas     *lemma.Resolver
	Languages  *language.Service
	Provider   string
}

// Build opens the store, applies migrations and wires the services.
// The caller must Close the container.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Container, error) {
	prompts, err := prompt.LoadOverrides(cfg.Prompts.OverridesPath)
	if err != nil {
		return nil, err
	}

	completer, err := llm.New(ctx, cfg.LLM, logger)
	switch {
	case err == nil:
	case opts.Offline && errors.Is(err, llm.ErrMissingAPIKey):
		logger.Info("running without llm provider", slog.String("provider", cfg.LLM.Provider))
		completer = llm.Disabled{Provider: cfg.LLM.Provider, Err: err}
	default:
		return nil, fmt.Errorf("llm: %w", err)
	}

	db, err := store.NewDB(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	entries := entry.New(db)
	cacheRepo := lemmacache.New(db)
	txm := store.NewTxManager(db)

	mem := lemma.NewMemoryCache(cfg.Lemma.CacheCapacity)
	var cache lemma.Cache = mem
	if cfg.Lemma.Persist {
		cache = lemma.NewLayered(logger, mem, cacheRepo)
	}

	languages := language.NewService(logger, completer, prompts)
	lemmas := lemma.NewResolver(logger, completer, prompts, cache, cfg.Lemma.BatchWorkers)
	generator := entrygen.NewGenerator(logger, completer, prompts, cfg.LLM.Temperature)

	dict := dictionary.NewService(logger, entries, lemmas, languages, generator, txm, cfg.Languages.Domain())

	return &Container{
		DB:         db,
		LemmaCache: cacheRepo,
		Dictionary: dict,
		Lemmas:     lemmas,
		Languages:  languages,
		Provider:   strings.ToLower(cfg.LLM.Provider),
	}, nil
}

// Close releases the store.
func (c *Container) Close() error {
	return c.DB.Close()
}
