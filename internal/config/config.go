package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port string

	Store          string
	DatabaseURL    string
	DBMaxOpenConns int

	LogLevel string

	MetricsEnabled bool
	MetricsToken   string

	// WriteRateLimit is POST requests per minute per client IP; 0 disables it.
	WriteRateLimit int
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		Store:        strings.ToLower(getenv("STORE", StorePostgres)),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MetricsToken: os.Getenv("METRICS_TOKEN"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.WriteRateLimit, err = intEnv("WRITE_RATE_LIMIT", 0); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = boolEnv("METRICS_ENABLED", false); err != nil {
		return Config{}, err
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		cfg.DatabaseURL = databaseURL()
	default:
		return Config{}, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}

	if cfg.WriteRateLimit < 0 {
		return Config{}, fmt.Errorf("WRITE_RATE_LIMIT must not be negative")
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// POSTGRES_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	u := url.URL{
		Scheme: "postgres",
		User: url.UserPassword(
			getenv("POSTGRES_USER", "postgres"),
			getenv("POSTGRES_PASSWORD", "postgres"),
		),
		Host: getenv("POSTGRES_HOST", "localhost") + ":" + getenv("POSTGRES_PORT", "5432"),
		Path: "/" + getenv("POSTGRES_DB", "catalog"),
	}
	q := u.Query()
	q.Set("sslmode", getenv("POSTGRES_SSLMODE", "disable"))
	u.RawQuery = q.Encode()

	return u.String()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", k, err)
	}
	return i, nil
}

func boolEnv(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", k, err)
	}
	return b, nil
}
