package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/pkg/repository"
)

const realtorCols = `id, first_name, last_name, display_name, title, email, phone, photo_url, bio, tagline, website_url, social_links, specializations, years_experience, brokerage_name, primary_city, primary_province, city_id, is_featured, total_volume, client_satisfaction_rating, is_claimed, claimed_by_user_id, created, updated`

// public_realtors omits claim ownership; claimed_by_user_id scans as NULL
const publicRealtorCols = `id, first_name, last_name, display_name, title, email, phone, photo_url, bio, tagline, website_url, social_links, specializations, years_experience, brokerage_name, primary_city, primary_province, city_id, is_featured, total_volume, client_satisfaction_rating, is_claimed, NULL, created, updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRealtor(row rowScanner) (*models.Realtor, error) {
	var (
		re              models.Realtor
		title           sql.NullString
		email           sql.NullString
		phone           sql.NullString
		photoURL        sql.NullString
		bio             sql.NullString
		tagline         sql.NullString
		websiteURL      sql.NullString
		socialLinks     sql.NullString
		specializations sql.NullString
		brokerageName   sql.NullString
		cityID          sql.NullString
		claimedBy       sql.NullInt64
	)
	err := row.Scan(&re.ID, &re.FirstName, &re.LastName, &re.DisplayName, &title, &email, &phone,
		&photoURL, &bio, &tagline, &websiteURL, &socialLinks, &specializations,
		&re.YearsExperience, &brokerageName, &re.PrimaryCity, &re.PrimaryProvince, &cityID,
		&re.IsFeatured, &re.TotalVolume, &re.ClientSatisfactionRating, &re.IsClaimed, &claimedBy,
		&re.Created, &re.Updated)
	if err != nil {
		return nil, err
	}

	re.Title = title.String
	re.Email = email.String
	re.Phone = phone.String
	re.PhotoURL = photoURL.String
	re.Bio = bio.String
	re.Tagline = tagline.String
	re.WebsiteURL = websiteURL.String
	re.BrokerageName = brokerageName.String
	if socialLinks.Valid && socialLinks.String != "" {
		re.SocialLinks = json.RawMessage(socialLinks.String)
	}
	if specializations.Valid && specializations.String != "" {
		if err := json.Unmarshal([]byte(specializations.String), &re.Specializations); err != nil {
			return nil, fmt.Errorf("decode specializations for %s: %w", re.ID, err)
		}
	}
	if cityID.Valid {
		s := cityID.String
		re.CityID = &s
	}
	if claimedBy.Valid {
		v := claimedBy.Int64
		re.ClaimedByUserID = &v
	}

	return &re, nil
}

func (r *SQLiteRepo) CreateRealtor(ctx context.Context, re *models.Realtor) error {
	if re == nil {
		return fmt.Errorf("realtor is nil")
	}

	var specJSON any
	if re.Specializations != nil {
		b, err := json.Marshal(re.Specializations)
		if err != nil {
			return fmt.Errorf("encode specializations: %w", err)
		}
		specJSON = string(b)
	}
	var socialJSON any
	if len(re.SocialLinks) > 0 {
		socialJSON = string(re.SocialLinks)
	}

	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO realtors (id, first_name, last_name, display_name, title, email, phone, photo_url, bio, tagline, website_url, social_links, specializations, years_experience, brokerage_name, primary_city, primary_province, city_id, is_featured, total_volume, client_satisfaction_rating, is_claimed, claimed_by_user_id, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		re.ID, re.FirstName, re.LastName, re.DisplayName, re.Title, re.Email, re.Phone,
		re.PhotoURL, re.Bio, re.Tagline, re.WebsiteURL, socialJSON, specJSON,
		re.YearsExperience, re.BrokerageName, re.PrimaryCity, re.PrimaryProvince, re.CityID,
		re.IsFeatured, re.TotalVolume, re.ClientSatisfactionRating, ts, ts)
	return err
}

func (r *SQLiteRepo) GetRealtor(ctx context.Context, id string) (*models.Realtor, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+realtorCols+` FROM realtors WHERE id = ?`, id)
	re, err := scanRealtor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return re, err
}

// GetPublicRealtor reads through the public_realtors view, which never
// exposes claimed_by_user_id.
func (r *SQLiteRepo) GetPublicRealtor(ctx context.Context, id string) (*models.Realtor, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+publicRealtorCols+` FROM public_realtors WHERE id = ?`, id)
	re, err := scanRealtor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return re, err
}

// UpdateRealtorFields applies the given column set. The caller is responsible
// for allow-listing field names; values must already be SQL-storable.
func (r *SQLiteRepo) UpdateRealtorFields(ctx context.Context, id string, fields map[string]any) (*models.Realtor, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, fields[k])
	}
	sets = append(sets, "updated = ?")
	args = append(args, now(), id)

	res, err := r.conn.Exec(ctx, `UPDATE realtors SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return r.GetRealtor(ctx, id)
}

func (r *SQLiteRepo) ListRealtors(ctx context.Context, f repository.RealtorFilter) ([]models.Realtor, error) {
	var (
		where []string
		args  []any
	)
	if f.City != "" {
		where = append(where, `LOWER(primary_city) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, f.City)
	}
	if f.Province != "" {
		where = append(where, `LOWER(primary_province) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, f.Province)
	}
	if f.FeaturedOnly {
		where = append(where, `is_featured = 1`)
	}
	if f.Specialization != "" {
		// specializations is a JSON array of strings
		where = append(where, `specializations LIKE '%"' || ? || '"%'`)
		args = append(args, f.Specialization)
	}

	q := `SELECT ` + publicRealtorCols + ` FROM public_realtors`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}

	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	switch f.SortBy {
	case "name":
		q += ` ORDER BY display_name ` + dir
	case "experience":
		q += ` ORDER BY years_experience ` + dir
	default: // performance
		q += ` ORDER BY is_featured DESC, total_volume DESC, client_satisfaction_rating DESC`
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	q += ` LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Realtor
	for rows.Next() {
		re, err := scanRealtor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *re)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountRealtors(ctx context.Context) (int64, error) {
	var n int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM public_realtors`)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
