package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Migration is one embedded schema change.
type Migration struct {
	Version     string
	Description string
	FileName    string
	SQL         string
	Checksum    string
}

func (m Migration) number() int {
	n, _ := strconv.Atoi(m.Version)
	return n
}

// Migrations returns the embedded migrations in version order.
func Migrations() ([]Migration, error) {
	return scanMigrations(migrationFiles, "migrations")
}

func scanMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var migrations []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("migration %s: name must match {version}_{description}.sql", entry.Name())
		}
		if prev, dup := seen[match[1]]; dup {
			return nil, fmt.Errorf("migration version %s used by %s and %s", match[1], prev, entry.Name())
		}
		seen[match[1]] = entry.Name()

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Version:     match[1],
			Description: match[2],
			FileName:    entry.Name(),
			SQL:         string(content),
			Checksum:    hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].number() < migrations[j].number()
	})
	return migrations, nil
}

// migrator applies embedded migrations and records them in schema_migrations.
type migrator struct {
	pool *ConnectionPool
}

func (m migrator) initVersionTable(ctx context.Context) error {
	_, err := m.pool.DB().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (m migrator) applied(ctx context.Context) (map[string]string, error) {
	rows, err := m.pool.DB().QueryContext(ctx, `SELECT version, COALESCE(checksum, '') FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = checksum
	}
	return applied, rows.Err()
}

// run applies every pending migration and returns the versions it applied.
func (m migrator) run(ctx context.Context, migrations []Migration) ([]string, error) {
	if err := m.initVersionTable(ctx); err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, migration := range migrations {
		if checksum, ok := applied[migration.Version]; ok {
			if checksum != "" && checksum != migration.Checksum {
				return ran, fmt.Errorf("migration %s changed after it was applied", migration.FileName)
			}
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return ran, err
		}
		ran = append(ran, migration.Version)
	}
	return ran, nil
}

func (m migrator) apply(ctx context.Context, migration Migration) error {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s: no SQL statements found", migration.FileName)
	}

	started := time.Now()
	return m.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s statement %d: %w", migration.FileName, i+1, err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`,
			migration.Version,
			time.Now().UTC().Format(time.RFC3339),
			migration.Checksum,
			time.Since(started).Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Version, err)
		}
		return nil
	})
}

// splitStatements splits on semicolons and drops comment-only lines.
func splitStatements(content string) []string {
	var statements []string
	for _, chunk := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
