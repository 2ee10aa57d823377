// Command lemma-cache reports or clears the persistent lemma cache.
//
// Flags:
//
//	-clear        delete every cached lemma
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/lexicon/internal/adapter/store"
	"github.com/heartmarshall/lexicon/internal/adapter/store/lemmacache"
	"github.com/heartmarshall/lexicon/internal/app"
	"github.com/heartmarshall/lexicon/internal/config"
)

func main() {
	clearFlag := flag.Bool("clear", false, "delete every cached lemma")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := store.NewDB(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	repo := lemmacache.New(db)

	if *clearFlag {
		deleted, err := repo.Clear(ctx)
		if err != nil {
			logger.Error("clear lemma cache", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("lemma cache cleared", slog.Int64("deleted", deleted))
		return
	}

	n, err := repo.Count(ctx)
	if err != nil {
		logger.Error("count lemma cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("lemma cache", slog.Int("entries", n))
}
