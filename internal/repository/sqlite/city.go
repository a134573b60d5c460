package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homefolio/realtorsites/internal/models"
)

func (r *SQLiteRepo) GetCity(ctx context.Context, id string) (*models.City, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, province, slug, population, latitude, longitude, gmaps_url, notable_fact FROM cities WHERE id = ?`, id)

	var (
		c           models.City
		slug        sql.NullString
		population  sql.NullInt64
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		gmapsURL    sql.NullString
		notableFact sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Province, &slug, &population, &latitude, &longitude, &gmapsURL, &notableFact); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.Slug = slug.String
	c.GmapsURL = gmapsURL.String
	c.NotableFact = notableFact.String
	if population.Valid {
		v := population.Int64
		c.Population = &v
	}
	if latitude.Valid {
		v := latitude.Float64
		c.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		c.Longitude = &v
	}
	return &c, nil
}

func (r *SQLiteRepo) UpsertCity(ctx context.Context, c *models.City) error {
	if c == nil {
		return fmt.Errorf("city is nil")
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO cities (id, name, province, slug, population, latitude, longitude, gmaps_url, notable_fact) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, province=excluded.province, slug=excluded.slug, population=excluded.population, latitude=excluded.latitude, longitude=excluded.longitude, gmaps_url=excluded.gmaps_url, notable_fact=excluded.notable_fact`,
		c.ID, c.Name, c.Province, c.Slug, c.Population, c.Latitude, c.Longitude, c.GmapsURL, c.NotableFact)
	return err
}
