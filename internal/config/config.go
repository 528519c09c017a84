package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// UI server config
type Config struct {
	Environment    string        `env:"ENVIRONMENT,default=dev"`
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           int           `env:"PORT,default=3000"`
	LogLevel       string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=60s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	APIBaseURL     string        `env:"API_BASE_URL"` // overrides the environment default (see BaseURLForEnvironment)
	ClientTimeout  time.Duration `env:"CLIENT_TIMEOUT,default=30s"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL,default=8h"`
	MaxUploadSize  int64         `env:"MAX_UPLOAD_SIZE,default=10485760"` // 10MB
	RateLimitRPS   int32         `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int32         `env:"RATE_LIMIT_BURST,default=10"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS,separator=|"`
	ResultPolicy   string        `env:"RESULT_POLICY,default=latest-request"`
}

const (
	ProductionAPIBaseURL  = "https://your-production-api.com"
	DevelopmentAPIBaseURL = "http://localhost:8000"

	SessionCookieName = "eduvision_session"
	SessionIssuer     = "EduVision"

	// used outside prod when SESSION_SECRET is not set
	devSessionSecret = "eduvision-development-session-secret"

	MinSessionSecretLength = 32
	ServerShutdownTimeout  = 10 * time.Second
	HandlerTimeout         = 60 * time.Second
	CORSMaxAgeInSeconds    = 86400
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}

var ValidResultPolicies = map[string]bool{
	"latest-request": true,
	"last-arrival":   true,
}

// BaseURLForEnvironment returns the backend origin used when API_BASE_URL is not set
func BaseURLForEnvironment(environment string) string {
	if environment == "prod" {
		return ProductionAPIBaseURL
	}
	return DevelopmentAPIBaseURL
}

func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = BaseURLForEnvironment(cfg.Environment)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.SessionSecret == "" && cfg.Environment != "prod" {
		cfg.SessionSecret = devSessionSecret
	}

	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
}

func validateConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.ClientTimeout <= 0 {
		return fmt.Errorf("client timeout must be positive, got %v", cfg.ClientTimeout)
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %v", cfg.SessionTTL)
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize)
	}

	u, err := url.ParseRequestURI(cfg.APIBaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %s", cfg.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use http or https: %s", cfg.APIBaseURL)
	}

	if cfg.Environment == "prod" {
		if cfg.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in %s environment", cfg.Environment)
		}
		if len(cfg.SessionSecret) < MinSessionSecretLength {
			return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment", MinSessionSecretLength, cfg.Environment)
		}
	}

	if !ValidResultPolicies[cfg.ResultPolicy] {
		return fmt.Errorf("invalid RESULT_POLICY '%s'. Valid policies: latest-request, last-arrival", cfg.ResultPolicy)
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "" {
			return fmt.Errorf("ALLOWED_ORIGINS contains an empty origin")
		}
	}

	return nil
}
