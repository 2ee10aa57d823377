package config

import (
	"time"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Languages LanguagesConfig `yaml:"languages"`
	Lemma     LemmaConfig     `yaml:"lemma"`
	Prompts   PromptsConfig   `yaml:"prompts"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// AuthSecret enables bearer-token auth on /api when set.
	AuthSecret string        `yaml:"auth_secret" env:"SERVER_AUTH_SECRET"`
	AuthIssuer string        `yaml:"auth_issuer" env:"SERVER_AUTH_ISSUER" env-default:"lexicon"`
	TokenTTL   time.Duration `yaml:"token_ttl"   env:"SERVER_TOKEN_TTL"   env-default:"720h"`
	// GenerationRateLimit caps requests per minute and client on endpoints
	// that call the text-generation service; 0 disables the limit.
	GenerationRateLimit int        `yaml:"generation_rate_limit" env:"SERVER_GENERATION_RATE_LIMIT" env-default:"0"`
	CORS                CORSConfig `yaml:"cors"`
}

// CORSConfig holds Cross-Origin Resource Sharing settings. CORS headers are
// only sent when AllowedOrigins is set.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"300"`
}

// Enabled reports whether CORS headers should be sent.
func (c CORSConfig) Enabled() bool { return c.AllowedOrigins != "" }

// AuthEnabled reports whether the API requires a bearer token.
func (c ServerConfig) AuthEnabled() bool { return c.AuthSecret != "" }

// StorageConfig holds local store settings.
type StorageConfig struct {
	Driver          string        `yaml:"driver"            env:"STORAGE_DRIVER"            env-default:"sqlite"`
	DSN             string        `yaml:"dsn"               env:"STORAGE_DSN"               env-default:"lexicon.db"`
	MaxOpenConns    int           `yaml:"max_open_conns"    env:"STORAGE_MAX_OPEN_CONNS"    env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    env:"STORAGE_MAX_IDLE_CONNS"    env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"STORAGE_CONN_MAX_LIFETIME" env-default:"1h"`
}

// LLMConfig holds text-generation endpoint settings.
type LLMConfig struct {
	Provider     string        `yaml:"provider"      env:"LLM_PROVIDER"      env-default:"deepseek"`
	Model        string        `yaml:"model"         env:"LLM_MODEL"`
	APIKey       string        `yaml:"api_key"       env:"LLM_API_KEY"`
	APIKeyFile   string        `yaml:"api_key_file"  env:"LLM_API_KEY_FILE"  env-default:"api_key.txt"`
	BaseURL      string        `yaml:"base_url"      env:"LLM_BASE_URL"`
	Timeout      time.Duration `yaml:"timeout"       env:"LLM_TIMEOUT"       env-default:"60s"`
	MaxRetries   int           `yaml:"max_retries"   env:"LLM_MAX_RETRIES"   env-default:"0"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"LLM_RETRY_BACKOFF" env-default:"500ms"`
	MaxTokens    int           `yaml:"max_tokens"    env:"LLM_MAX_TOKENS"    env-default:"2048"`
	Temperature  float32       `yaml:"temperature"   env:"LLM_TEMPERATURE"   env-default:"0.7"`
}

// LanguagesConfig holds the default language triple.
type LanguagesConfig struct {
	Source     string `yaml:"source"     env:"LANG_SOURCE"     env-default:"English"`
	Target     string `yaml:"target"     env:"LANG_TARGET"     env-default:"English"`
	Definition string `yaml:"definition" env:"LANG_DEFINITION" env-default:"English"`
}

// Domain converts the section to a domain.LanguageConfig.
func (c LanguagesConfig) Domain() domain.LanguageConfig {
	return domain.LanguageConfig{
		SourceLanguage:     c.Source,
		TargetLanguage:     c.Target,
		DefinitionLanguage: c.Definition,
	}
}

// LemmaConfig holds lemma cache settings.
type LemmaConfig struct {
	// CacheCapacity bounds the in-memory cache; 0 means unbounded.
	CacheCapacity int  `yaml:"cache_capacity" env:"LEMMA_CACHE_CAPACITY" env-default:"0"`
	Persist       bool `yaml:"persist"        env:"LEMMA_PERSIST"        env-default:"false"`
	BatchWorkers  int  `yaml:"batch_workers"  env:"LEMMA_BATCH_WORKERS"  env-default:"4"`
}

// PromptsConfig points at optional template overrides.
type PromptsConfig struct {
	OverridesPath string `yaml:"overrides_path" env:"PROMPTS_OVERRIDES_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
