package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ProviderConfig describes a credentialed text-to-image provider. Secrets
// lists credential names, tried left to right.
type ProviderConfig struct {
	Name     string   `mapstructure:"name" validate:"required"`
	Endpoint string   `mapstructure:"endpoint" validate:"required,url"`
	Header   string   `mapstructure:"header"`
	Secrets  []string `mapstructure:"secrets" validate:"dive,required"`
}

// FallbackConfig describes a provider that needs no credential.
type FallbackConfig struct {
	Name           string `mapstructure:"name" validate:"required"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type fileConfig struct {
	Providers []ProviderConfig `mapstructure:"providers" validate:"dive"`
	Fallbacks []FallbackConfig `mapstructure:"fallbacks" validate:"dive"`
}

// Config represents application configuration loaded from environment
// variables and an optional TOML file.
type Config struct {
	AppEnv               string
	Port                 string
	DatabaseURL          string
	GeoIPDBPath          string
	DefaultLocale        string
	ConfigFile           string
	SecretsFiles         []string
	ClipdropBaseURL      string
	PollinationsBaseURL  string
	ProviderTimeout      time.Duration
	FallbackTimeout      time.Duration
	PatchWatermarkRegion bool
	SessionTTL           time.Duration
	CORSAllowedOrigins   []string
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
	Providers            []ProviderConfig
	Fallbacks            []FallbackConfig
}

// LoadConfig loads configuration from environment variables, applies
// defaults, then overlays the provider tables from the config file if one
// exists.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		GeoIPDBPath:          os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:        getEnv("DEFAULT_LOCALE", "en"),
		ConfigFile:           getEnv("ARTIFY_CONFIG", "config.toml"),
		SecretsFiles:         secretsFiles(os.Getenv("SECRETS_FILE")),
		ClipdropBaseURL:      strings.TrimRight(getEnv("CLIPDROP_BASE_URL", "https://clipdrop-api.co"), "/"),
		PollinationsBaseURL:  strings.TrimRight(getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"), "/"),
		ProviderTimeout:      time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		FallbackTimeout:      time.Second * time.Duration(getEnvInt("FALLBACK_TIMEOUT_SECONDS", 60)),
		PatchWatermarkRegion: getEnvBool("PATCH_WATERMARK_REGION", false),
		SessionTTL:           time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)),
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	cfg.Providers = defaultProviders(cfg.ClipdropBaseURL)
	cfg.Fallbacks = defaultFallbacks(cfg.PollinationsBaseURL)

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive")
	}
	if cfg.FallbackTimeout <= 0 {
		return nil, fmt.Errorf("FALLBACK_TIMEOUT_SECONDS must be positive")
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	path := strings.TrimSpace(c.ConfigFile)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := validator.New().Struct(fc); err != nil {
		return fmt.Errorf("validate config %s: %w", path, err)
	}
	if v.IsSet("providers") {
		c.Providers = fc.Providers
	}
	if v.IsSet("fallbacks") {
		c.Fallbacks = fc.Fallbacks
	}
	return nil
}

func defaultProviders(clipdropBase string) []ProviderConfig {
	return []ProviderConfig{{
		Name:     "clipdrop",
		Endpoint: clipdropBase + "/text-to-image/v1",
		Header:   "x-api-key",
		Secrets:  []string{"CLIPDROP_API_KEY", "CLIPDROP_API_KEY_2"},
	}}
}

func defaultFallbacks(pollinationsBase string) []FallbackConfig {
	return []FallbackConfig{
		{Name: "pollinations", BaseURL: pollinationsBase, Model: "flux"},
		{Name: "pollinations-turbo", BaseURL: pollinationsBase, Model: "turbo"},
	}
}

// secretsFiles lists the TOML secret files consulted after the
// environment: an explicit SECRETS_FILE, else the home and working
// directory .streamlit/secrets.toml.
func secretsFiles(explicit string) []string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return []string{explicit}
	}
	var files []string
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, home+"/.streamlit/secrets.toml")
	}
	return append(files, ".streamlit/secrets.toml")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
