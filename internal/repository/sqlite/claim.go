package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/pkg/repository"
)

// CreateClaim persists a pending claim. The partial unique index on
// (realtor_id, user_id) WHERE status='pending' turns the duplicate-submission
// race into a deterministic conflict.
func (r *SQLiteRepo) CreateClaim(ctx context.Context, c *models.RealtorClaim) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("claim is nil")
	}

	var info any
	if len(c.VerificationInfo) > 0 {
		info = string(c.VerificationInfo)
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO realtor_claims (realtor_id, user_id, claim_token, submitted_email, submitted_phone, verification_info, status, submitted_at) VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		c.RealtorID, c.UserID, c.ClaimToken, c.SubmittedEmail, c.SubmittedPhone, info, c.SubmittedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: realtor_claims.realtor_id") {
			return 0, repository.ErrDuplicateClaim
		}
		return 0, fmt.Errorf("insert claim: %w", err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetClaimForRealtorAndUser(ctx context.Context, realtorID string, userID int64) (*models.RealtorClaim, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, realtor_id, user_id, claim_token, submitted_email, submitted_phone, verification_info, status, submitted_at, verified_at FROM realtor_claims WHERE realtor_id = ? AND user_id = ?`, realtorID, userID)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func scanClaim(row rowScanner) (*models.RealtorClaim, error) {
	var (
		c          models.RealtorClaim
		phone      sql.NullString
		info       sql.NullString
		verifiedAt sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.RealtorID, &c.UserID, &c.ClaimToken, &c.SubmittedEmail, &phone, &info, &c.Status, &c.SubmittedAt, &verifiedAt); err != nil {
		return nil, err
	}
	c.SubmittedPhone = phone.String
	if info.Valid && info.String != "" {
		c.VerificationInfo = json.RawMessage(info.String)
	}
	if verifiedAt.Valid {
		v := verifiedAt.Int64
		c.VerifiedAt = &v
	}
	return &c, nil
}

// GetClaimByToken joins the target realtor projection for the preview read.
func (r *SQLiteRepo) GetClaimByToken(ctx context.Context, token string) (*models.ClaimWithRealtor, error) {
	row := r.conn.QueryRow(ctx, `SELECT c.id, c.realtor_id, c.user_id, c.submitted_email, c.status, c.submitted_at, c.verified_at, r.id, r.first_name, r.last_name, r.primary_city, r.primary_province, r.is_claimed FROM realtor_claims c JOIN realtors r ON r.id = c.realtor_id WHERE c.claim_token = ?`, token)

	var (
		cw         models.ClaimWithRealtor
		verifiedAt sql.NullInt64
	)
	err := row.Scan(&cw.ID, &cw.RealtorID, &cw.UserID, &cw.SubmittedEmail, &cw.Status, &cw.SubmittedAt, &verifiedAt,
		&cw.Realtor.ID, &cw.Realtor.FirstName, &cw.Realtor.LastName, &cw.Realtor.PrimaryCity, &cw.Realtor.PrimaryProvince, &cw.Realtor.IsClaimed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if verifiedAt.Valid {
		v := verifiedAt.Int64
		cw.VerifiedAt = &v
	}
	cw.ClaimToken = token
	return &cw, nil
}

func (r *SQLiteRepo) ListClaimsByUser(ctx context.Context, userID int64, claimID *int64) ([]models.ClaimWithRealtor, error) {
	q := `SELECT c.id, c.realtor_id, c.user_id, c.submitted_email, c.status, c.submitted_at, c.verified_at, r.id, r.first_name, r.last_name, r.primary_city, r.primary_province FROM realtor_claims c JOIN realtors r ON r.id = c.realtor_id WHERE c.user_id = ?`
	args := []any{userID}
	if claimID != nil {
		q += ` AND c.id = ?`
		args = append(args, *claimID)
	}
	q += ` ORDER BY c.submitted_at DESC`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ClaimWithRealtor
	for rows.Next() {
		var (
			cw         models.ClaimWithRealtor
			verifiedAt sql.NullInt64
		)
		if err := rows.Scan(&cw.ID, &cw.RealtorID, &cw.UserID, &cw.SubmittedEmail, &cw.Status, &cw.SubmittedAt, &verifiedAt,
			&cw.Realtor.ID, &cw.Realtor.FirstName, &cw.Realtor.LastName, &cw.Realtor.PrimaryCity, &cw.Realtor.PrimaryProvince); err != nil {
			return nil, err
		}
		if verifiedAt.Valid {
			v := verifiedAt.Int64
			cw.VerifiedAt = &v
		}
		out = append(out, cw)
	}
	return out, rows.Err()
}

// VerifyClaim runs the whole validate-then-mutate sequence inside one
// transaction. Guards:
//  1. token resolves to a claim with status = 'pending'
//  2. the target realtor is not claimed
//  3. the claim is within the verification window
//
// Both row updates are themselves conditional on the guards, so a concurrent
// verification observes either the pre- or post-transition state and loses
// cleanly on one of them.
func (r *SQLiteRepo) VerifyClaim(ctx context.Context, token string, nowT time.Time, ttl time.Duration) (*models.ClaimVerification, error) {
	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin verify tx: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT c.id, c.realtor_id, c.user_id, c.submitted_at, r.is_claimed, r.first_name, r.last_name FROM realtor_claims c JOIN realtors r ON r.id = c.realtor_id WHERE c.claim_token = ? AND c.status = 'pending'`, token)

	var (
		claimID     int64
		realtorID   string
		userID      int64
		submittedAt int64
		isClaimed   bool
		firstName   string
		lastName    string
	)
	if err := row.Scan(&claimID, &realtorID, &userID, &submittedAt, &isClaimed, &firstName, &lastName); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, repository.ErrClaimNotPending
		}
		return nil, fmt.Errorf("resolve claim token: %w", err)
	}

	if isClaimed {
		_ = tx.Rollback()
		return nil, repository.ErrRealtorClaimed
	}

	if nowT.UTC().Unix()-submittedAt > int64(ttl.Seconds()) {
		_ = tx.Rollback()
		return nil, repository.ErrClaimExpired
	}

	ts := nowT.UTC().Unix()
	res, err := tx.ExecContext(ctx, `UPDATE realtor_claims SET status = 'verified', verified_at = ? WHERE id = ? AND status = 'pending'`, ts, claimID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("update claim: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		_ = tx.Rollback()
		if err != nil {
			return nil, err
		}
		return nil, repository.ErrClaimNotPending
	}

	res, err = tx.ExecContext(ctx, `UPDATE realtors SET is_claimed = 1, claimed_by_user_id = ?, updated = ? WHERE id = ? AND is_claimed = 0`, userID, ts, realtorID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("update realtor: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		_ = tx.Rollback()
		if err != nil {
			return nil, err
		}
		return nil, repository.ErrRealtorClaimed
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit verify tx: %w", err)
	}

	r.logger.Info("claim verified",
		slog.Int64("claim_id", claimID),
		slog.String("realtor_id", realtorID),
		slog.Int64("user_id", userID),
	)

	return &models.ClaimVerification{
		ClaimID:     claimID,
		RealtorID:   realtorID,
		RealtorName: firstName + " " + lastName,
		UserID:      userID,
	}, nil
}
