package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type CarrierSeed struct {
	Name         string `json:"name" yaml:"name"`
	TrucksPerDay int    `json:"trucks_per_day" yaml:"trucks_per_day"`
}

type RouteSeed struct {
	From     string        `json:"from" yaml:"from"`
	To       string        `json:"to" yaml:"to"`
	Carriers []CarrierSeed `json:"carriers" yaml:"carriers"`
}

// CatalogSeed is the full carrier catalog: alias -> canonical city,
// carriers per directional route and the fallback carriers.
type CatalogSeed struct {
	Aliases  map[string]string `json:"aliases" yaml:"aliases"`
	Routes   []RouteSeed       `json:"routes" yaml:"routes"`
	Defaults []CarrierSeed     `json:"defaults" yaml:"defaults"`
}

// BuiltinCatalog returns the catalog the search API ships with.
func BuiltinCatalog() CatalogSeed {
	return CatalogSeed{
		Aliases: map[string]string{
			"new york":      "new york",
			"nueva york":    "new york",
			"ny":            "new york",
			"washington dc": "washington dc",
			"san francisco": "san francisco",
			"sf":            "san francisco",
			"los angeles":   "los angeles",
			"la":            "los angeles",
		},
		Routes: []RouteSeed{
			{
				From: "new york",
				To:   "washington dc",
				Carriers: []CarrierSeed{
					{Name: "Knight-Swift Transport Services", TrucksPerDay: 10},
					{Name: "J.B. Hunt Transport Services Inc", TrucksPerDay: 7},
					{Name: "YRC Worldwide", TrucksPerDay: 5},
				},
			},
			{
				From: "san francisco",
				To:   "los angeles",
				Carriers: []CarrierSeed{
					{Name: "XPO Logistics", TrucksPerDay: 9},
					{Name: "Schneider", TrucksPerDay: 6},
					{Name: "Landstar Systems", TrucksPerDay: 2},
				},
			},
		},
		Defaults: []CarrierSeed{
			{Name: "UPS Inc.", TrucksPerDay: 11},
			{Name: "FedEx Corp", TrucksPerDay: 9},
		},
	}
}

// LoadSeed reads a catalog from a .yaml/.yml or .json file.
func LoadSeed(path string) (CatalogSeed, error) {
	var seed CatalogSeed

	bytes, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &seed)
	case ".json":
		err = json.Unmarshal(bytes, &seed)
	default:
		return seed, fmt.Errorf("load seed: unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return seed, fmt.Errorf("load seed: parse %q: %w", path, err)
	}

	if err := seed.Validate(); err != nil {
		return seed, fmt.Errorf("load seed: %w", err)
	}
	return seed, nil
}

// Validate checks the catalog is usable and lower-cases its keys.
func (s *CatalogSeed) Validate() error {
	aliases := make(map[string]string, len(s.Aliases))
	for alias, canonical := range s.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		c := strings.ToLower(strings.TrimSpace(canonical))
		if a == "" || c == "" {
			return fmt.Errorf("alias %q -> %q: alias and canonical cannot be empty", alias, canonical)
		}
		aliases[a] = c
	}
	s.Aliases = aliases

	for i := range s.Routes {
		r := &s.Routes[i]
		r.From = strings.ToLower(strings.TrimSpace(r.From))
		r.To = strings.ToLower(strings.TrimSpace(r.To))
		if r.From == "" || r.To == "" {
			return fmt.Errorf("route at index %d: from and to cannot be empty", i+1)
		}
		if err := validateCarriers(r.Carriers); err != nil {
			return fmt.Errorf("route %s -> %s: %w", r.From, r.To, err)
		}
	}

	if len(s.Defaults) == 0 {
		return errors.New("defaults: at least one default carrier is required")
	}
	if err := validateCarriers(s.Defaults); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

func validateCarriers(cs []CarrierSeed) error {
	for i, c := range cs {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("carrier at index %d: name cannot be empty", i+1)
		}
		if c.TrucksPerDay < 0 {
			return fmt.Errorf("carrier %q: trucks_per_day cannot be negative", c.Name)
		}
	}
	return nil
}

// SeedCatalog replaces the stored catalog with seed in one transaction.
func SeedCatalog(ctx context.Context, db *sql.DB, d Dialect, seed CatalogSeed) error {
	if db == nil {
		return errors.New("seed catalog: DB is nil")
	}
	if err := seed.Validate(); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"city_aliases", "route_carriers", "default_carriers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("seed catalog: clear %s: %w", table, err)
		}
	}

	aliasStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO city_aliases (alias, canonical)
	VALUES (?, ?);
	`))
	if err != nil {
		return fmt.Errorf("seed catalog: prepare alias insert: %w", err)
	}
	defer aliasStmt.Close()

	for alias, canonical := range seed.Aliases {
		if _, err := aliasStmt.ExecContext(ctx, alias, canonical); err != nil {
			return fmt.Errorf("seed catalog: insert alias %q: %w", alias, err)
		}
	}

	routeStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO route_carriers (from_city, to_city, position, name, trucks_per_day)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("seed catalog: prepare route insert: %w", err)
	}
	defer routeStmt.Close()

	for _, r := range seed.Routes {
		for pos, c := range r.Carriers {
			if _, err := routeStmt.ExecContext(ctx, r.From, r.To, pos, c.Name, c.TrucksPerDay); err != nil {
				return fmt.Errorf("seed catalog: insert route %s -> %s carrier %q: %w", r.From, r.To, c.Name, err)
			}
		}
	}

	defaultStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO default_carriers (position, name, trucks_per_day)
	VALUES (?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("seed catalog: prepare default insert: %w", err)
	}
	defer defaultStmt.Close()

	for pos, c := range seed.Defaults {
		if _, err := defaultStmt.ExecContext(ctx, pos, c.Name, c.TrucksPerDay); err != nil {
			return fmt.Errorf("seed catalog: insert default carrier %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed catalog: commit tx: %w", err)
	}

	return nil
}
