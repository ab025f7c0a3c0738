package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Config describes how a SQLite database is opened and tuned.
type Config struct {
	// DSN is the database file path or connection string.
	DSN string

	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, MEMORY).
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF).
	Synchronous string
}

// DefaultConfig returns the settings used by the planner for dsn.
func DefaultConfig(dsn string) Config {
	journal := "WAL"
	if dsn == MemoryDSN {
		journal = "MEMORY"
	}
	return Config{
		DSN:         dsn,
		BusyTimeout: 5 * time.Second,
		JournalMode: journal,
		Synchronous: "NORMAL",
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DSN) == "" {
		problems = append(problems, "dsn is required")
	}
	if c.BusyTimeout < 0 {
		problems = append(problems, "busy timeout must not be negative")
	}
	switch strings.ToUpper(c.JournalMode) {
	case "", "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
	default:
		problems = append(problems, fmt.Sprintf("unsupported journal mode %q", c.JournalMode))
	}
	switch strings.ToUpper(c.Synchronous) {
	case "", "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		problems = append(problems, fmt.Sprintf("unsupported synchronous mode %q", c.Synchronous))
	}
	if len(problems) > 0 {
		return errors.New("invalid sqlite config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) pragmas() []string {
	var out []string
	if c.BusyTimeout > 0 {
		out = append(out, fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeout.Milliseconds()))
	}
	if c.JournalMode != "" {
		out = append(out, "PRAGMA journal_mode = "+strings.ToUpper(c.JournalMode))
	}
	if c.Synchronous != "" {
		out = append(out, "PRAGMA synchronous = "+strings.ToUpper(c.Synchronous))
	}
	return out
}
