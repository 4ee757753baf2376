package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/obs"
)

// SQL-backed implementation of the CarrierRepository port, for SQLite and Postgres.
type SQLCarrierRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLCarrierRepository(db *sql.DB, d Dialect) *SQLCarrierRepository {
	return &SQLCarrierRepository{DB: db, Dialect: d}
}

func (s *SQLCarrierRepository) ResolveAlias(ctx context.Context, alias string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "catalog.ResolveAlias")(&err)

	if s.DB == nil {
		return "", false, errors.New("carrier repository: DB is nil")
	}

	query := s.Dialect.rebind(`
	SELECT canonical
	FROM city_aliases
	WHERE alias = ?;
	`)

	var canonical string
	err = s.DB.QueryRowContext(ctx, query, alias).Scan(&canonical)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve alias %q: %w", alias, err)
	}
	return canonical, true, nil
}

func (s *SQLCarrierRepository) CarriersForRoute(ctx context.Context, from, to string) (_ []domain.Carrier, _ bool, err error) {
	defer obs.Time(ctx, "catalog.CarriersForRoute")(&err)

	if s.DB == nil {
		return nil, false, errors.New("carrier repository: DB is nil")
	}

	query := s.Dialect.rebind(`
	SELECT
		name,
		trucks_per_day
	FROM route_carriers
	WHERE from_city = ? AND to_city = ?
	ORDER BY position;
	`)

	carriers, err := s.queryCarriers(ctx, query, from, to)
	if err != nil {
		return nil, false, fmt.Errorf("carriers for route %s -> %s: %w", from, to, err)
	}
	return carriers, len(carriers) > 0, nil
}

func (s *SQLCarrierRepository) DefaultCarriers(ctx context.Context) (_ []domain.Carrier, err error) {
	defer obs.Time(ctx, "catalog.DefaultCarriers")(&err)

	if s.DB == nil {
		return nil, errors.New("carrier repository: DB is nil")
	}

	query := `
	SELECT
		name,
		trucks_per_day
	FROM default_carriers
	ORDER BY position;
	`

	carriers, err := s.queryCarriers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("default carriers: %w", err)
	}
	return carriers, nil
}

func (s *SQLCarrierRepository) queryCarriers(ctx context.Context, query string, args ...any) ([]domain.Carrier, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	carriers := make([]domain.Carrier, 0, 4)
	for rows.Next() {
		var c domain.Carrier
		if err := rows.Scan(&c.Name, &c.TrucksPerDay); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		carriers = append(carriers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return carriers, nil
}
