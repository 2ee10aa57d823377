// Command export writes stored entries to a JSON Lines file or imports one.
//
// Flags:
//
//	-out          file to export to ("-" for stdout)
//	-in           file to import from
//	-q            export only headwords matching the query
//	-target       export only entries with this target language
//
// Exactly one of -out and -in is required. Import does not call the model,
// so no API key is needed.
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/lexicon/internal/app"
	"github.com/heartmarshall/lexicon/internal/config"
	"github.com/heartmarshall/lexicon/internal/domain"
)

func main() {
	outFlag := flag.String("out", "", "file to export to (\"-\" for stdout)")
	inFlag := flag.String("in", "", "file to import from")
	queryFlag := flag.String("q", "", "export only headwords matching the query")
	targetFlag := flag.String("target", "", "export only entries with this target language")
	flag.Parse()

	if (*outFlag == "") == (*inFlag == "") {
		fmt.Fprintln(os.Stderr, "usage: export -out <file> | -in <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, logger, app.Options{Offline: true})
	if err != nil {
		logger.Error("build application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	if *inFlag != "" {
		err = runImport(ctx, c, logger, *inFlag)
	} else {
		err = runExport(ctx, c, logger, *outFlag, domain.EntryFilter{Query: *queryFlag, TargetLanguage: *targetFlag})
	}
	if err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runExport(ctx context.Context, c *app.Container, logger *slog.Logger, path string, f domain.EntryFilter) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	bw := bufio.NewWriter(w)
	n, err := c.Dictionary.Export(ctx, bw, f)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	logger.Info("export completed", slog.Int("entries", n), slog.String("path", path))
	return nil
}

func runImport(ctx context.Context, c *app.Container, logger *slog.Logger, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.Dictionary.Import(ctx, file)
	if err != nil {
		return err
	}

	for _, e := range res.Errors {
		logger.Warn("line rejected", slog.Int("line", e.LineNumber), slog.String("reason", e.Reason))
	}
	logger.Info("import completed",
		slog.Int("imported", res.Imported),
		slog.Int("skipped", res.Skipped),
		slog.Int("rejected", len(res.Errors)),
	)
	return nil
}
