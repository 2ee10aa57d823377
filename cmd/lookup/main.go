// Command lookup looks up one word and prints the stored entry as JSON.
//
// Usage:
//
//	lookup [flags] <word>
//
// Flags:
//
//	-context      sentence the word was seen in
//	-source       source language (default from config)
//	-target       target language (default from config)
//	-definition   definition language (default from config)
//	-force        generate a fresh entry even if one is stored
//	-lemma-only   print the resolved headword and exit
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/heartmarshall/lexicon/internal/app"
	"github.com/heartmarshall/lexicon/internal/config"
	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/dictionary"
)

func main() {
	contextFlag := flag.String("context", "", "sentence the word was seen in")
	sourceFlag := flag.String("source", "", "source language")
	targetFlag := flag.String("target", "", "target language")
	definitionFlag := flag.String("definition", "", "definition language")
	forceFlag := flag.Bool("force", false, "generate a fresh entry even if one is stored")
	lemmaOnlyFlag := flag.Bool("lemma-only", false, "print the resolved headword and exit")
	flag.Parse()

	word := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if word == "" {
		fmt.Fprintln(os.Stderr, "usage: lookup [flags] <word>")
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

	c, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("build application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	var sentence *string
	if *contextFlag != "" {
		sentence = contextFlag
	}
	langs := domain.LanguageConfig{
		SourceLanguage:     *sourceFlag,
		TargetLanguage:     *targetFlag,
		DefinitionLanguage: *definitionFlag,
	}

	var out any
	if *lemmaOnlyFlag {
		out, err = resolveLemma(ctx, c, word, langs.Merge(c.Dictionary.Defaults()).TargetLanguage, sentence)
	} else {
		out, err = c.Dictionary.Lookup(ctx, dictionary.LookupInput{
			Word:      word,
			Context:   sentence,
			Languages: langs,
			Force:     *forceFlag,
		})
	}
	if err != nil {
		report(logger, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		logger.Error("write output", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type lemmaOutput struct {
	Word           string `json:"word"`
	Headword       string `json:"headword"`
	TargetLanguage string `json:"target_language"`
}

func resolveLemma(ctx context.Context, c *app.Container, word, target string, sentence *string) (*lemmaOutput, error) {
	name, err := c.Languages.Normalize(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("target language: %w", err)
	}
	headword, err := c.Lemmas.Resolve(ctx, word, name.StandardizedName, sentence)
	if err != nil {
		return nil, err
	}
	return &lemmaOutput{Word: word, Headword: headword, TargetLanguage: name.StandardizedName}, nil
}

// report logs err and, for rejected model output, prints the raw response so
// it can be inspected.
func report(logger *slog.Logger, err error) {
	logger.Error("lookup failed", slog.String("error", err.Error()))

	var rerr *domain.ResponseError
	if errors.As(err, &rerr) && rerr.Raw != "" {
		fmt.Fprintf(os.Stderr, "--- raw model response ---\n%s\n", rerr.Raw)
	}
}
