package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/workshop-planner/internal/timeline"
)

// Store names the key-value substrate backing persisted agendas and the library.
type Store string

const (
	StoreMemory Store = "memory"
	StoreSQLite Store = "sqlite"
	StoreRedis  Store = "redis"
)

// Config captures environment driven configuration values for the planner.
type Config struct {
	HTTPPort        int
	Store           Store
	SQLiteDSN       string
	RedisAddr       string
	RedisDB         int
	RedisNamespace  string
	CatalogFile     string
	DefaultStart    string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Missing required values and
// unparsable values are collected and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		Store:           StoreSQLite,
		SQLiteDSN:       "planner.db",
		RedisNamespace:  "planner:",
		DefaultStart:    "09:00",
		LogLevel:        slog.LevelInfo,
		LogFormat:       "json",
		ShutdownTimeout: 10 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("PLANNER_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "PLANNER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if storeValue := env("PLANNER_STORE"); storeValue != "" {
		switch store := Store(strings.ToLower(storeValue)); store {
		case StoreMemory, StoreSQLite, StoreRedis:
			cfg.Store = store
		default:
			invalid = append(invalid, "PLANNER_STORE")
		}
	}

	if dsn := env("PLANNER_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.RedisAddr = env("PLANNER_REDIS_ADDR")
	if cfg.Store == StoreRedis && cfg.RedisAddr == "" {
		missing = append(missing, "PLANNER_REDIS_ADDR")
	}

	if dbValue := env("PLANNER_REDIS_DB"); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "PLANNER_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	if namespace := env("PLANNER_REDIS_NAMESPACE"); namespace != "" {
		cfg.RedisNamespace = namespace
	}

	cfg.CatalogFile = env("PLANNER_CATALOG_FILE")

	if start := env("PLANNER_DEFAULT_START"); start != "" {
		clock, err := timeline.ParseClock(start)
		if err != nil {
			invalid = append(invalid, "PLANNER_DEFAULT_START")
		} else {
			cfg.DefaultStart = clock.String()
		}
	}

	if levelValue := env("PLANNER_LOG_LEVEL"); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "PLANNER_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if format := env("PLANNER_LOG_FORMAT"); format != "" {
		switch format = strings.ToLower(format); format {
		case "json", "text":
			cfg.LogFormat = format
		default:
			invalid = append(invalid, "PLANNER_LOG_FORMAT")
		}
	}

	if timeoutValue := env("PLANNER_SHUTDOWN_TIMEOUT"); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "PLANNER_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
