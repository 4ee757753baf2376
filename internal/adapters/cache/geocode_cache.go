// Package cache persists address -> coordinate lookups so repeated directions
// requests skip the geocoder.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/obs"
)

// GeocodeCache is a SQL-backed cache mapping addresses to coordinates.
// Address keys are expected to be normalized by the caller.
type GeocodeCache struct {
	DB       *sql.DB
	postgres bool
}

// NewSQLGeocodeCache returns a cache for Postgres (pgx stdlib driver).
func NewSQLGeocodeCache(db *sql.DB) *GeocodeCache {
	return &GeocodeCache{DB: db, postgres: true}
}

// NewSqliteGeocodeCache returns a cache for SQLite.
func NewSqliteGeocodeCache(db *sql.DB) *GeocodeCache {
	return &GeocodeCache{DB: db}
}

// InitSchema creates the geocode_cache table. The DDL is valid for both SQLite and Postgres.
func (s *GeocodeCache) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("geocode cache: init schema: %w", err)
	}
	return nil
}

// Fetch cached coordinates for the given addresses. Unknown addresses are absent from the result.
func (s *GeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := dedupe(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	var rows *sql.Rows
	if s.postgres {
		rows, err = s.DB.QueryContext(ctx, `
		SELECT address, lon, lat
		FROM geocode_cache
		WHERE address = ANY($1::text[]);
		`, uniq)
	} else {
		// SQLite does not support binding slices directly in an IN (...) clause.
		// Only the placeholder structure is interpolated; all values remain parameterized.
		args := make([]any, 0, len(uniq))
		for _, a := range uniq {
			args = append(args, a)
		}
		q := fmt.Sprintf(`
		SELECT address, lon, lat
		FROM geocode_cache
		WHERE address IN (%s);
		`, strings.TrimSuffix(strings.Repeat("?,", len(uniq)), ","))
		rows, err = s.DB.QueryContext(ctx, q, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var addr string
		var c domain.Coordinates
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store address -> coordinate mappings, overwriting existing entries.
func (s *GeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
	INSERT OR REPLACE INTO geocode_cache (address, lon, lat)
	VALUES (?, ?, ?);
	`
	if s.postgres {
		upsert = `
		INSERT INTO geocode_cache (address, lon, lat)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE
		SET lon = EXCLUDED.lon,
			lat = EXCLUDED.lat;
		`
	}

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}

		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("insert geocode cache coord=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

func dedupe(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	uniq := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	return uniq
}
