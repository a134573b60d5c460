package mock

import (
	"context"
	"time"

	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo        *MockUserRepo
	RealtorRepo     *MockRealtorRepo
	ClaimRepo       *MockClaimRepo
	TestimonialRepo *MockTestimonialRepo
	CityRepo        *MockCityRepo
	JobRepo         *MockJobRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:        &MockUserRepo{},
		RealtorRepo:     &MockRealtorRepo{},
		ClaimRepo:       &MockClaimRepo{},
		TestimonialRepo: &MockTestimonialRepo{},
		CityRepo:        &MockCityRepo{},
		JobRepo:         &MockJobRepo{},
	}
}

type MockUserRepo struct {
	Stored    *models.User
	CreateErr error
}

func (m *MockUserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.Stored = &models.User{ID: 1, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}
	return 1, nil
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *MockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

type MockRealtorRepo struct {
	Stored    *models.Realtor
	Realtors  []models.Realtor
	GetErr    error
	UpdateErr error
	ListErr   error
	Updated   map[string]any
}

func (m *MockRealtorRepo) CreateRealtor(ctx context.Context, r *models.Realtor) error {
	m.Stored = r
	return nil
}

func (m *MockRealtorRepo) GetRealtor(ctx context.Context, id string) (*models.Realtor, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *MockRealtorRepo) GetPublicRealtor(ctx context.Context, id string) (*models.Realtor, error) {
	return m.GetRealtor(ctx, id)
}

func (m *MockRealtorRepo) UpdateRealtorFields(ctx context.Context, id string, fields map[string]any) (*models.Realtor, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if m.Stored == nil || m.Stored.ID != id {
		return nil, nil
	}
	m.Updated = fields
	return m.Stored, nil
}

func (m *MockRealtorRepo) ListRealtors(ctx context.Context, f repository.RealtorFilter) ([]models.Realtor, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Realtors, nil
}

func (m *MockRealtorRepo) CountRealtors(ctx context.Context) (int64, error) {
	if m.ListErr != nil {
		return 0, m.ListErr
	}
	return int64(len(m.Realtors)), nil
}

type MockClaimRepo struct {
	Stored *models.RealtorClaim
	// StoredAfter hides Stored from the first N GetClaimForRealtorAndUser
	// calls, simulating a claim inserted concurrently after the pre-check.
	StoredAfter  int
	ByToken      *models.ClaimWithRealtor
	Claims       []models.ClaimWithRealtor
	VerifyResult *models.ClaimVerification
	CreateErr    error
	VerifyErr    error
	ListErr      error
	CreateCalls  int
	getCalls     int
}

func (m *MockClaimRepo) CreateClaim(ctx context.Context, c *models.RealtorClaim) (int64, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *c
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *MockClaimRepo) GetClaimForRealtorAndUser(ctx context.Context, realtorID string, userID int64) (*models.RealtorClaim, error) {
	m.getCalls++
	if m.getCalls <= m.StoredAfter {
		return nil, nil
	}
	if m.Stored != nil && m.Stored.RealtorID == realtorID && m.Stored.UserID == userID {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *MockClaimRepo) GetClaimByToken(ctx context.Context, token string) (*models.ClaimWithRealtor, error) {
	if m.ByToken != nil && m.ByToken.ClaimToken == token {
		return m.ByToken, nil
	}
	return nil, nil
}

func (m *MockClaimRepo) ListClaimsByUser(ctx context.Context, userID int64, claimID *int64) ([]models.ClaimWithRealtor, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.ClaimWithRealtor
	for _, c := range m.Claims {
		if c.UserID != userID {
			continue
		}
		if claimID != nil && c.ID != *claimID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockClaimRepo) VerifyClaim(ctx context.Context, token string, now time.Time, ttl time.Duration) (*models.ClaimVerification, error) {
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	return m.VerifyResult, nil
}

type MockTestimonialRepo struct {
	Testimonials []models.Testimonial
	ListErr      error
}

func (m *MockTestimonialRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) (int64, error) {
	m.Testimonials = append(m.Testimonials, *t)
	return int64(len(m.Testimonials)), nil
}

func (m *MockTestimonialRepo) ListTestimonialsByRealtor(ctx context.Context, realtorID string) ([]models.Testimonial, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.Testimonial
	for _, t := range m.Testimonials {
		if t.RealtorID == realtorID {
			out = append(out, t)
		}
	}
	return out, nil
}

type MockCityRepo struct {
	Stored *models.City
}

func (m *MockCityRepo) GetCity(ctx context.Context, id string) (*models.City, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *MockCityRepo) UpsertCity(ctx context.Context, c *models.City) error {
	m.Stored = c
	return nil
}

type MockJobRepo struct {
	Enqueued   []*models.BackgroundJob
	EnqueueErr error
}

func (m *MockJobRepo) Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error) {
	if m.EnqueueErr != nil {
		return 0, m.EnqueueErr
	}
	m.Enqueued = append(m.Enqueued, j)
	return int64(len(m.Enqueued)), nil
}

func (m *MockJobRepo) FetchNext(ctx context.Context) (*models.BackgroundJob, error) {
	return nil, nil
}

func (m *MockJobRepo) UpdateJob(ctx context.Context, j *models.BackgroundJob) error { return nil }

func (m *MockJobRepo) MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error {
	return nil
}
