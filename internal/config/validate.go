package config

import (
	"fmt"
	"slices"
	"strings"
)

// Supported values.
var (
	Providers      = []string{"deepseek", "openai", "ollama", "anthropic", "gemini"}
	StorageDrivers = []string{"sqlite", "postgres"}
	LogFormats     = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	if !slices.Contains(StorageDrivers, strings.ToLower(c.Storage.Driver)) {
		return fmt.Errorf("storage.driver must be one of %v (got %q)", StorageDrivers, c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("storage.dsn is required")
	}

	if err := c.Languages.Domain().Validate(); err != nil {
		return fmt.Errorf("languages: %w", err)
	}

	if c.Lemma.CacheCapacity < 0 {
		return fmt.Errorf("lemma.cache_capacity must be >= 0 (got %d)", c.Lemma.CacheCapacity)
	}
	if c.Lemma.BatchWorkers < 1 {
		return fmt.Errorf("lemma.batch_workers must be >= 1 (got %d)", c.Lemma.BatchWorkers)
	}

	if c.Server.AuthSecret != "" && len(c.Server.AuthSecret) < 32 {
		return fmt.Errorf("server.auth_secret must be at least 32 characters (got %d)", len(c.Server.AuthSecret))
	}

	if c.Server.GenerationRateLimit < 0 {
		return fmt.Errorf("server.generation_rate_limit must be >= 0 (got %d)", c.Server.GenerationRateLimit)
	}

	if c.Log.Format != "" && !slices.Contains(LogFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format must be one of %v (got %q)", LogFormats, c.Log.Format)
	}

	return nil
}

func (l *LLMConfig) validate() error {
	if !slices.Contains(Providers, strings.ToLower(l.Provider)) {
		return fmt.Errorf("provider must be one of %v (got %q)", Providers, l.Provider)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", l.Timeout)
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", l.MaxRetries)
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2] (got %v)", l.Temperature)
	}
	return nil
}
