package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax for the SQL the repositories issue.
type Dialect int

const (
	DialectSqlite Dialect = iota
	DialectPostgres
)

// DialectFor maps a DB_DRIVER value ("sqlite", "postgres", "pgx") to a Dialect.
func DialectFor(driver string) Dialect {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return DialectPostgres
	default:
		return DialectSqlite
	}
}

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d Dialect) rebind(q string) string {
	if d != DialectPostgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Initialize the carrier catalog schema. The DDL is valid for both
// SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createAliasesQuery := `
	CREATE TABLE IF NOT EXISTS city_aliases (
		alias TEXT PRIMARY KEY,
		canonical TEXT NOT NULL
	);
	`

	createRouteCarriersQuery := `
	CREATE TABLE IF NOT EXISTS route_carriers (
		from_city TEXT NOT NULL,
		to_city TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		trucks_per_day INTEGER NOT NULL,
		PRIMARY KEY (from_city, to_city, position)
	);
	`

	createDefaultCarriersQuery := `
	CREATE TABLE IF NOT EXISTS default_carriers (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		trucks_per_day INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_city_aliases_canonical
	ON city_aliases(canonical);
	`

	statements := []string{
		createAliasesQuery,
		createRouteCarriersQuery,
		createDefaultCarriersQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
