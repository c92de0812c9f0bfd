package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort       = 3318
	DefaultAPITimeout = 30 * time.Second
	DefaultRPM        = 120
)

type Config struct {
	Port               int
	APIURL             string
	APITimeout         time.Duration
	Environment        string
	JWTSecret          string
	DatabaseURL        string
	DatabaseType       string
	RedisURL           string
	StaticDir          string
	PageRulesFile      string
	LetterDir          string
	RateLimitPerMinute int
	TrustedProxies     []string
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool {
	return c.Environment == "production"
}

// ParseFlags reads flags, then the environment (including a .env file
// that never overrides variables already set), then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var timeoutMS int
	var envFile string
	var proxies string

	fs := flag.NewFlagSet("usulan-gedung", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.APIURL, "api", "", "Upstream API base URL")
	fs.IntVar(&timeoutMS, "api-timeout", 0, "Upstream API timeout in milliseconds")
	fs.StringVar(&cfg.Environment, "env", "", "Environment name (production enables secure cookies)")
	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Storage
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for shared rate limit state")
	fs.StringVar(&cfg.LetterDir, "letters", "", "Directory to archive generated letters")

	// Pages
	fs.StringVar(&cfg.StaticDir, "static", "", "Directory with dashboard pages")
	fs.StringVar(&cfg.PageRulesFile, "pages", "", "YAML file with page access rules")

	fs.IntVar(&cfg.RateLimitPerMinute, "rpm", 0, "Per-IP API requests per minute")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs whose X-Forwarded-For is honored")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Session token secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.APIURL == "" {
		cfg.APIURL = firstEnv("NEXT_PUBLIC_API_URL", "API_URL")
	}
	if cfg.APIURL == "" {
		return Config{}, errors.New("API URL required (use -api or NEXT_PUBLIC_API_URL env)")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if timeoutMS == 0 {
		ms, err := envInt("NEXT_PUBLIC_API_TIMEOUT", int(DefaultAPITimeout/time.Millisecond))
		if err != nil {
			return Config{}, err
		}
		timeoutMS = ms
	}
	if timeoutMS <= 0 {
		return Config{}, errors.New("API timeout must be positive")
	}
	cfg.APITimeout = time.Duration(timeoutMS) * time.Millisecond

	if cfg.Environment == "" {
		cfg.Environment = firstEnv("NODE_ENV", "APP_ENV")
		if cfg.Environment == "" {
			cfg.Environment = "development"
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "file:usulan.db"
		}
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = os.Getenv("STATIC_DIR")
	}
	if cfg.PageRulesFile == "" {
		cfg.PageRulesFile = os.Getenv("PAGE_RULES_FILE")
	}
	if cfg.LetterDir == "" {
		cfg.LetterDir = os.Getenv("LETTER_DIR")
	}

	if cfg.RateLimitPerMinute == 0 {
		rpm, err := envInt("RATE_LIMIT_PER_MINUTE", DefaultRPM)
		if err != nil {
			return Config{}, err
		}
		cfg.RateLimitPerMinute = rpm
	}

	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	cfg.TrustedProxies = splitList(proxies)

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
