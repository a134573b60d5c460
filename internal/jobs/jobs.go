package jobs

import (
	"context"
	"time"

	"github.com/homefolio/realtorsites/internal/models"
)

// Job types dispatched through the queue.
const TypeClaimVerificationEmail = "claim.verification_email"

// Handler is the function that processes a job
type Handler func(ctx context.Context, j *models.BackgroundJob) error

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	// simple exponential: base 2^attempt seconds, capped
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}
