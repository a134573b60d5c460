package repository

import (
	"context"
	"errors"
	"time"

	"github.com/homefolio/realtorsites/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// Errors returned by the claim state transition. Handlers map these onto the
// HTTP error taxonomy; everything else is an internal failure.
var (
	// ErrDuplicateClaim: a pending claim already exists for (realtor, user).
	ErrDuplicateClaim = errors.New("claim already submitted")
	// ErrClaimNotPending: no claim with the given token is in status pending.
	// Deliberately covers "never existed" and "already verified" alike.
	ErrClaimNotPending = errors.New("invalid or expired verification token")
	// ErrRealtorClaimed: the target profile is already claimed.
	ErrRealtorClaimed = errors.New("realtor profile already claimed")
	// ErrClaimExpired: the claim is older than the verification window.
	ErrClaimExpired = errors.New("verification token has expired")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RealtorFilter holds list/search parameters. Zero values mean "no filter".
type RealtorFilter struct {
	City           string
	Province       string
	Specialization string
	FeaturedOnly   bool
	SortBy         string // performance, name, experience
	SortOrder      string // asc, desc
	Limit          int
	Offset         int
}

type RealtorRepo interface {
	CreateRealtor(ctx context.Context, r *models.Realtor) error
	GetRealtor(ctx context.Context, id string) (*models.Realtor, error)
	// GetPublicRealtor reads the public projection, which hides claim
	// ownership. Returns (nil, nil) when no realtor matches.
	GetPublicRealtor(ctx context.Context, id string) (*models.Realtor, error)
	// UpdateRealtorFields applies an allow-listed field set. Returns the
	// updated row, or (nil, nil) when no realtor matches.
	UpdateRealtorFields(ctx context.Context, id string, fields map[string]any) (*models.Realtor, error)
	ListRealtors(ctx context.Context, f RealtorFilter) ([]models.Realtor, error)
	CountRealtors(ctx context.Context) (int64, error)
}

type ClaimRepo interface {
	// CreateClaim persists a pending claim. Returns ErrDuplicateClaim when a
	// pending claim for the same (realtor, user) already exists.
	CreateClaim(ctx context.Context, c *models.RealtorClaim) (int64, error)
	GetClaimForRealtorAndUser(ctx context.Context, realtorID string, userID int64) (*models.RealtorClaim, error)
	// GetClaimByToken is a pure read used by the preview endpoint; it joins
	// the target realtor projection. Returns (nil, nil) for unknown tokens.
	GetClaimByToken(ctx context.Context, token string) (*models.ClaimWithRealtor, error)
	// ListClaimsByUser returns claims owned by userID ordered by submitted_at
	// descending, optionally restricted to a single claim id.
	ListClaimsByUser(ctx context.Context, userID int64, claimID *int64) ([]models.ClaimWithRealtor, error)
	// VerifyClaim performs the pending->verified transition and marks the
	// realtor claimed, both inside one transaction. Returns
	// ErrClaimNotPending, ErrRealtorClaimed or ErrClaimExpired on guard
	// failures; on any of those nothing is written.
	VerifyClaim(ctx context.Context, token string, now time.Time, ttl time.Duration) (*models.ClaimVerification, error)
}

type TestimonialRepo interface {
	CreateTestimonial(ctx context.Context, t *models.Testimonial) (int64, error)
	ListTestimonialsByRealtor(ctx context.Context, realtorID string) ([]models.Testimonial, error)
}

type CityRepo interface {
	GetCity(ctx context.Context, id string) (*models.City, error)
	UpsertCity(ctx context.Context, c *models.City) error
}

type JobRepo interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
}
