package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homefolio/realtorsites/internal/models"
)

func (r *SQLiteRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("testimonial is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO realtor_testimonials (realtor_id, client_name, client_location, text, rating, date, is_featured, display_order) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RealtorID, t.ClientName, t.ClientLocation, t.Text, t.Rating, t.Date, t.IsFeatured, t.DisplayOrder)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ListTestimonialsByRealtor orders featured first, then by rating and the
// explicit display order, matching the public page layout.
func (r *SQLiteRepo) ListTestimonialsByRealtor(ctx context.Context, realtorID string) ([]models.Testimonial, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, realtor_id, client_name, client_location, text, rating, date, is_featured, display_order FROM realtor_testimonials WHERE realtor_id = ? ORDER BY is_featured DESC, rating DESC, display_order ASC`, realtorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Testimonial
	for rows.Next() {
		var (
			t        models.Testimonial
			location sql.NullString
			date     sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.RealtorID, &t.ClientName, &location, &t.Text, &t.Rating, &date, &t.IsFeatured, &t.DisplayOrder); err != nil {
			return nil, err
		}
		t.ClientLocation = location.String
		t.Date = date.String
		out = append(out, t)
	}
	return out, rows.Err()
}
