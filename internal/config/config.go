package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
)

// Common errors
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
	ErrInsecureJWTSecret  = errors.New("JWT_SECRET_KEY must be changed from its default in production")
	ErrUnsupportedJWTAlg  = errors.New("JWT_ALGORITHM must be one of HS256, HS384, HS512")
	ErrInvalidTokenTTL    = errors.New("JWT_EXPIRE_MINUTES must be positive")
	ErrInvalidSameSite    = errors.New("COOKIE_SAMESITE must be one of lax, strict, none")
)

// DefaultJWTSecret is the placeholder secret shipped for local development.
const DefaultJWTSecret = "change_me"

// Config holds every setting the server reads at startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBSchema    string `env:"DB_SCHEMA"`

	JWTSecretKey     string `env:"JWT_SECRET_KEY" envDefault:"change_me"`
	JWTAlgorithm     string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`

	// "production" switches the cookie policy and forbids derived OAuth redirect URIs.
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CookieName     string `env:"COOKIE_NAME" envDefault:"access_token"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string `env:"COOKIE_SAMESITE" envDefault:"lax"`
	CookieDomain   string `env:"COOKIE_DOMAIN"`

	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	FrontendURL      string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	OAuthSuccessPath string   `env:"OAUTH_SUCCESS_PATH" envDefault:"/dashboard"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	FMPAPIKey         string  `env:"FMP_API_KEY"`
	FMPBaseURL        string  `env:"FMP_BASE_URL" envDefault:"https://financialmodelingprep.com/api/v3"`
	FMPRequestsPerSec float64 `env:"FMP_REQUESTS_PER_SECOND" envDefault:"5"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURI  string `env:"GITHUB_REDIRECT_URI"`

	AuthRateLimitPerMinute int `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE and
// from the process environment. The file uses the same keys as the
// environment; environment variables win over file values.
//
// Example file:
//
//	ENV: production
//	COOKIE_DOMAIN: .profitpath.app
//	ALLOWED_ORIGINS: [https://profitpath.app, https://www.profitpath.app]
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"), os.Environ())
}

// LoadFrom is Load with an explicit file path and environment, for tests and tools.
func LoadFrom(path string, environ []string) (Config, error) {
	vars := map[string]string{}

	if path != "" {
		fileVars, err := readYAML(path)
		if err != nil {
			return Config{}, err
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.AllowedOrigins = trimCSV(cfg.AllowedOrigins)
	cfg.CookieSameSite = strings.ToLower(strings.TrimSpace(cfg.CookieSameSite))
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(cfg.FrontendURL), "/")

	return cfg, nil
}

func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(x))
			for _, item := range x {
				parts = append(parts, fmt.Sprint(item))
			}
			out[k] = strings.Join(parts, ",")
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out, nil
}

// IsProduction reports whether the deployment environment is production.
func (c Config) IsProduction() bool {
	return IsProduction(c.Env)
}

// IsProduction reports whether env names the production environment.
func IsProduction(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "production")
}

// Validate checks the settings that would otherwise fail late or insecurely.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: got %q", ErrUnsupportedJWTAlg, c.JWTAlgorithm)
	}
	if c.JWTExpireMinutes <= 0 {
		return ErrInvalidTokenTTL
	}
	if c.IsProduction() && (c.JWTSecretKey == "" || c.JWTSecretKey == DefaultJWTSecret) {
		return ErrInsecureJWTSecret
	}
	switch c.CookieSameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidSameSite, c.CookieSameSite)
	}
	return nil
}

func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
