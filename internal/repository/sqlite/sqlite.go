package sqlite

import (
	"time"

	"log/slog"

	"github.com/homefolio/realtorsites/internal/db"
	"github.com/homefolio/realtorsites/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.RealtorRepo = (*SQLiteRepo)(nil)
var _ repository.ClaimRepo = (*SQLiteRepo)(nil)
var _ repository.TestimonialRepo = (*SQLiteRepo)(nil)
var _ repository.CityRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().Unix()
}
