package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

type seedCity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Province    string   `json:"province"`
	Slug        string   `json:"slug"`
	Population  *int64   `json:"population"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	GmapsURL    string   `json:"gmaps_url"`
	NotableFact string   `json:"notable_fact"`
}

// Migrate applies migrations and optional seed files found in the repository.
// It creates a `schema_migrations` table to track applied migrations and applies
// any SQL files in `db/migrations/` that have not yet been recorded. Seed files
// in seedFS are applied idempotently.
func Migrate(ctx context.Context, d *DB, migrationFS embed.FS, seedFS embed.FS) error {
	// ensure migrations table exists
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	// embedded migrations are provided under "migrations/..." in the top-level db package
	migDir := "migrations"

	entries, err := fs.ReadDir(migrationFS, migDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// collect .sql files and sort
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		// use filename (without extension) as migration version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		// check if already applied
		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if row == nil {
			return fmt.Errorf("migration check query returned nil row for %s", version)
		}
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			// already applied
			continue
		}

		// read and execute migration from embedded FS (use posix path.Join)
		p := path.Join(migDir, fname)
		b, err := fs.ReadFile(migrationFS, p)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		// record migration
		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
	}

	// optional seed: cities dataset (attempt to read from seedFS; ignore not-found)
	citiesPath := path.Join("seed", "cities.json")
	if b, err := fs.ReadFile(seedFS, citiesPath); err == nil {
		var cities []seedCity
		if err := json.Unmarshal(b, &cities); err != nil {
			return fmt.Errorf("parse cities seed: %w", err)
		}
		for _, c := range cities {
			if _, err := d.Exec(ctx, `INSERT INTO cities (id, name, province, slug, population, latitude, longitude, gmaps_url, notable_fact) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, province=excluded.province, slug=excluded.slug, population=excluded.population, latitude=excluded.latitude, longitude=excluded.longitude, gmaps_url=excluded.gmaps_url, notable_fact=excluded.notable_fact`,
				c.ID, c.Name, c.Province, c.Slug, c.Population, c.Latitude, c.Longitude, c.GmapsURL, c.NotableFact); err != nil {
				return fmt.Errorf("seed city %s: %w", c.ID, err)
			}
		}
	}

	return nil
}
