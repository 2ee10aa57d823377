package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/lexicon/internal/auth"
	"github.com/heartmarshall/lexicon/internal/config"
	"github.com/heartmarshall/lexicon/internal/service/dictionary"
	"github.com/heartmarshall/lexicon/internal/transport/middleware"
	"github.com/heartmarshall/lexicon/internal/transport/rest"
)

// Run starts the HTTP API and blocks until ctx is cancelled, then shuts the
// server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("storage", cfg.Storage.Driver),
	)

	c, err := Build(ctx, cfg, logger, Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("close store", slog.String("error", err.Error()))
		}
	}()

	handler, cleanup := NewHTTPHandler(cfg.Server, c, logger)
	defer cleanup()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// NewHTTPHandler builds the API handler with its middleware chain. The
// returned cleanup stops background work started for the handler.
func NewHTTPHandler(cfg config.ServerConfig, c *Container, logger *slog.Logger) (http.Handler, func()) {
	var api, generation rest.Middleware
	if cfg.AuthEnabled() {
		jwtMgr := auth.NewJWTManager(cfg.AuthSecret, cfg.AuthIssuer, cfg.TokenTTL)
		api = middleware.Auth(jwtMgr)
	} else {
		logger.Warn("api auth disabled: server.auth_secret is empty")
	}

	cleanup := func() {}
	if cfg.GenerationRateLimit > 0 {
		rl := middleware.NewRateLimiter(time.Minute)
		generation = rl.Limit(cfg.GenerationRateLimit)
		cleanup = rl.Stop
	}

	router := rest.NewRouter(rest.Routes{
		Health:     rest.NewHealthHandler(c.DB, BuildVersion(), c.Provider),
		Dictionary: rest.NewDictionaryHandler(c.Dictionary, &dictionary.Selection{}, logger),
		Tools:      rest.NewLanguageToolsHandler(c.Lemmas, c.Languages, c.Dictionary.Defaults().TargetLanguage, logger),
		API:        api,
		Generation: generation,
	})

	var cors middleware.Middleware
	if cfg.CORS.Enabled() {
		cors = middleware.CORS(cfg.CORS)
	}

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		cors,
	)
	return chain(router), cleanup
}
