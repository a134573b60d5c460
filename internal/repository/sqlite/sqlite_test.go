package sqlite_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	dbfs "github.com/homefolio/realtorsites/db"
	"github.com/homefolio/realtorsites/internal/db"
	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/internal/repository/sqlite"
)

var dbSeq atomic.Int64

// setupRepo opens a fresh in-memory database, runs the real migrations and
// seeds, and returns a repository bound to it.
func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	ctx := context.Background()
	database, err := db.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	// one connection keeps the shared memory database alive and the
	// foreign_keys pragma in effect
	database.GetConn().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(database, nil)
}

func seedUser(t *testing.T, repo *sqlite.SQLiteRepo, email string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &models.User{Name: "Test User", Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return id
}

func seedRealtor(t *testing.T, repo *sqlite.SQLiteRepo, id string) *models.Realtor {
	t.Helper()
	re := &models.Realtor{
		ID:              id,
		FirstName:       "Jane",
		LastName:        "Doe",
		DisplayName:     "Jane Doe",
		PrimaryCity:     "Toronto",
		PrimaryProvince: "ON",
		Specializations: []string{"luxury", "condos"},
	}
	if err := repo.CreateRealtor(context.Background(), re); err != nil {
		t.Fatalf("failed to create realtor %s: %v", id, err)
	}
	return re
}

func TestUserRepo(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatal("expected error for nil user")
	}

	id := seedUser(t, repo, "ana@example.com")
	if id == 0 {
		t.Fatal("expected non-zero user id")
	}

	u, err := repo.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u == nil || u.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Created == 0 {
		t.Fatal("expected created timestamp to be set")
	}

	u, err = repo.GetUserByEmail(ctx, "ana@example.com")
	if err != nil || u == nil || u.ID != id {
		t.Fatalf("get by email: %v %+v", err, u)
	}

	// not found is (nil, nil)
	u, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || u != nil {
		t.Fatalf("expected (nil, nil) for unknown email, got %+v %v", u, err)
	}

	// duplicate email violates the unique constraint
	if _, err := repo.CreateUser(ctx, &models.User{Name: "Dup", Email: "ana@example.com", PasswordHash: "x"}); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestCityRepo(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// cities.json is applied during migration
	c, err := repo.GetCity(ctx, "city-toronto-on")
	if err != nil {
		t.Fatalf("get seeded city: %v", err)
	}
	if c == nil || c.Name != "Toronto" || c.Province != "Ontario" {
		t.Fatalf("unexpected seeded city: %+v", c)
	}

	c, err = repo.GetCity(ctx, "city-nowhere")
	if err != nil || c != nil {
		t.Fatalf("expected (nil, nil) for unknown city, got %+v %v", c, err)
	}

	// upsert overwrites in place
	if err := repo.UpsertCity(ctx, &models.City{ID: "city-toronto-on", Name: "Toronto", Province: "ON", Slug: "toronto", NotableFact: "Updated fact"}); err != nil {
		t.Fatalf("upsert city: %v", err)
	}
	c, err = repo.GetCity(ctx, "city-toronto-on")
	if err != nil || c == nil || c.NotableFact != "Updated fact" {
		t.Fatalf("expected upsert to overwrite, got %+v %v", c, err)
	}
}

func TestTestimonialRepo(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seedRealtor(t, repo, "realtor-1")

	rows := []models.Testimonial{
		{RealtorID: "realtor-1", ClientName: "Low", Text: "ok", Rating: 3, DisplayOrder: 2},
		{RealtorID: "realtor-1", ClientName: "Featured", Text: "great", Rating: 4, IsFeatured: true},
		{RealtorID: "realtor-1", ClientName: "High", Text: "amazing", Rating: 5, DisplayOrder: 1},
	}
	for i := range rows {
		if _, err := repo.CreateTestimonial(ctx, &rows[i]); err != nil {
			t.Fatalf("create testimonial: %v", err)
		}
	}

	got, err := repo.ListTestimonialsByRealtor(ctx, "realtor-1")
	if err != nil {
		t.Fatalf("list testimonials: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 testimonials, got %d", len(got))
	}
	// featured first, then rating desc
	if got[0].ClientName != "Featured" || got[1].ClientName != "High" || got[2].ClientName != "Low" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].ClientName, got[1].ClientName, got[2].ClientName)
	}

	got, err = repo.ListTestimonialsByRealtor(ctx, "realtor-unknown")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no testimonials for unknown realtor, got %d %v", len(got), err)
	}
}

func TestJobRepo(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// nothing queued yet
	j, err := repo.FetchNext(ctx)
	if err != nil || j != nil {
		t.Fatalf("expected empty queue, got %+v %v", j, err)
	}

	lowPriority := &models.BackgroundJob{Type: "low", Payload: []byte(`{"n":1}`), Priority: 200, ScheduledAt: time.Now().Add(-time.Minute)}
	highPriority := &models.BackgroundJob{Type: "high", Payload: []byte(`{"n":2}`), Priority: 50, ScheduledAt: time.Now().Add(-time.Minute)}
	future := &models.BackgroundJob{Type: "future", Priority: 1, ScheduledAt: time.Now().Add(time.Hour)}

	for _, job := range []*models.BackgroundJob{lowPriority, highPriority, future} {
		if _, err := repo.Enqueue(ctx, job); err != nil {
			t.Fatalf("enqueue %s: %v", job.Type, err)
		}
	}
	if lowPriority.MaxAttempts != 5 {
		t.Fatalf("expected default max attempts 5, got %d", lowPriority.MaxAttempts)
	}

	// priority wins; future job is not eligible
	j, err = repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch next: %v", err)
	}
	if j == nil || j.Type != "high" {
		t.Fatalf("expected high priority job, got %+v", j)
	}
	if j.Status != "running" {
		t.Fatalf("fetched job must be marked in-flight, got %q", j.Status)
	}

	// the fetched job is claimed; another fetch must not return it again
	j2, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if j2 == nil || j2.Type != "low" {
		t.Fatalf("expected low priority job on second fetch, got %+v", j2)
	}
	if next, err := repo.FetchNext(ctx); err != nil || next != nil {
		t.Fatalf("both jobs in flight, expected nil, got %+v %v", next, err)
	}

	// mark the first done; only the in-flight low job remains
	j.Status = "done"
	if err := repo.UpdateJob(ctx, j); err != nil {
		t.Fatalf("update job: %v", err)
	}
	j = j2

	// exhausted job goes to the dead letter table and leaves the queue
	j.Status = "failed"
	j.Attempts = 5
	j.LastError = "smtp unreachable"
	if err := repo.MoveToDeadLetter(ctx, j); err != nil {
		t.Fatalf("move to dead letter: %v", err)
	}
	next, err := repo.FetchNext(ctx)
	if err != nil || next != nil {
		t.Fatalf("expected queue drained of eligible jobs, got %+v %v", next, err)
	}
}
