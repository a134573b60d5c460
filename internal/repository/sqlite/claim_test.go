package sqlite_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/pkg/repository"
)

const weekTTL = 7 * 24 * time.Hour

func timeNow() time.Time { return time.Now().UTC() }

func nowUnix() int64 { return time.Now().UTC().Unix() }

func TestClaimLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID := seedUser(t, repo, "claimer@example.com")
	seedRealtor(t, repo, "realtor-1")

	claim := &models.RealtorClaim{
		RealtorID:        "realtor-1",
		UserID:           userID,
		ClaimToken:       "tok-lifecycle",
		SubmittedEmail:   "claimer@example.com",
		SubmittedPhone:   "555-1234",
		VerificationInfo: json.RawMessage(`{"license":"A123"}`),
		Status:           models.ClaimStatusPending,
		SubmittedAt:      nowUnix(),
	}
	claimID, err := repo.CreateClaim(ctx, claim)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if claimID == 0 {
		t.Fatal("expected non-zero claim id")
	}

	// readable by (realtor, user)
	got, err := repo.GetClaimForRealtorAndUser(ctx, "realtor-1", userID)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if got == nil || got.ID != claimID || got.Status != models.ClaimStatusPending {
		t.Fatalf("unexpected claim: %+v", got)
	}
	if got.SubmittedPhone != "555-1234" || string(got.VerificationInfo) != `{"license":"A123"}` {
		t.Fatalf("claim fields did not round-trip: %+v", got)
	}

	// readable by token, with realtor projection joined
	byToken, err := repo.GetClaimByToken(ctx, "tok-lifecycle")
	if err != nil {
		t.Fatalf("get claim by token: %v", err)
	}
	if byToken == nil || byToken.ID != claimID {
		t.Fatalf("unexpected claim by token: %+v", byToken)
	}
	if byToken.Realtor.FirstName != "Jane" || byToken.Realtor.PrimaryCity != "Toronto" || byToken.Realtor.IsClaimed {
		t.Fatalf("unexpected realtor projection: %+v", byToken.Realtor)
	}

	result, err := repo.VerifyClaim(ctx, "tok-lifecycle", timeNow(), weekTTL)
	if err != nil {
		t.Fatalf("verify claim: %v", err)
	}
	if result.ClaimID != claimID || result.RealtorID != "realtor-1" || result.UserID != userID {
		t.Fatalf("unexpected verification result: %+v", result)
	}
	if result.RealtorName != "Jane Doe" {
		t.Fatalf("unexpected realtor name: %q", result.RealtorName)
	}

	// all four fields flipped together
	verified, err := repo.GetClaimForRealtorAndUser(ctx, "realtor-1", userID)
	if err != nil || verified == nil {
		t.Fatalf("get claim after verify: %v", err)
	}
	if verified.Status != models.ClaimStatusVerified || verified.VerifiedAt == nil {
		t.Fatalf("claim not marked verified: %+v", verified)
	}
	re, err := repo.GetRealtor(ctx, "realtor-1")
	if err != nil || re == nil {
		t.Fatalf("get realtor after verify: %v", err)
	}
	if !re.IsClaimed || re.ClaimedByUserID == nil || *re.ClaimedByUserID != userID {
		t.Fatalf("realtor not marked claimed: %+v", re)
	}

	// a second verification of the same token must not succeed
	if _, err := repo.VerifyClaim(ctx, "tok-lifecycle", timeNow(), weekTTL); !errors.Is(err, repository.ErrClaimNotPending) {
		t.Fatalf("expected ErrClaimNotPending on re-verify, got %v", err)
	}
}

func TestVerifyClaimUnknownToken(t *testing.T) {
	repo := setupRepo(t)
	if _, err := repo.VerifyClaim(context.Background(), "no-such-token", timeNow(), weekTTL); !errors.Is(err, repository.ErrClaimNotPending) {
		t.Fatalf("expected ErrClaimNotPending, got %v", err)
	}
}

func TestVerifyClaimExpired(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID := seedUser(t, repo, "late@example.com")
	seedRealtor(t, repo, "realtor-1")

	claim := &models.RealtorClaim{
		RealtorID:      "realtor-1",
		UserID:         userID,
		ClaimToken:     "tok-stale",
		SubmittedEmail: "late@example.com",
		SubmittedAt:    time.Now().UTC().Add(-8 * 24 * time.Hour).Unix(),
	}
	if _, err := repo.CreateClaim(ctx, claim); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	if _, err := repo.VerifyClaim(ctx, "tok-stale", timeNow(), weekTTL); !errors.Is(err, repository.ErrClaimExpired) {
		t.Fatalf("expected ErrClaimExpired, got %v", err)
	}

	// nothing changed
	got, err := repo.GetClaimForRealtorAndUser(ctx, "realtor-1", userID)
	if err != nil || got == nil || got.Status != models.ClaimStatusPending {
		t.Fatalf("expired claim must stay pending: %+v %v", got, err)
	}
	re, err := repo.GetRealtor(ctx, "realtor-1")
	if err != nil || re == nil || re.IsClaimed {
		t.Fatalf("realtor must stay unclaimed: %+v %v", re, err)
	}
}

func TestVerifyClaimRealtorAlreadyClaimed(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	winner := seedUser(t, repo, "winner@example.com")
	loser := seedUser(t, repo, "loser@example.com")
	seedRealtor(t, repo, "realtor-1")

	for _, c := range []*models.RealtorClaim{
		{RealtorID: "realtor-1", UserID: winner, ClaimToken: "tok-winner", SubmittedEmail: "winner@example.com", SubmittedAt: nowUnix()},
		{RealtorID: "realtor-1", UserID: loser, ClaimToken: "tok-loser", SubmittedEmail: "loser@example.com", SubmittedAt: nowUnix()},
	} {
		if _, err := repo.CreateClaim(ctx, c); err != nil {
			t.Fatalf("create claim %s: %v", c.ClaimToken, err)
		}
	}

	if _, err := repo.VerifyClaim(ctx, "tok-winner", timeNow(), weekTTL); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	if _, err := repo.VerifyClaim(ctx, "tok-loser", timeNow(), weekTTL); !errors.Is(err, repository.ErrRealtorClaimed) {
		t.Fatalf("expected ErrRealtorClaimed for second claimant, got %v", err)
	}

	// the losing claim is still pending, not silently consumed
	got, err := repo.GetClaimForRealtorAndUser(ctx, "realtor-1", loser)
	if err != nil || got == nil || got.Status != models.ClaimStatusPending {
		t.Fatalf("losing claim must stay pending: %+v %v", got, err)
	}
}

func TestCreateClaimDuplicatePending(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID := seedUser(t, repo, "dup@example.com")
	seedRealtor(t, repo, "realtor-1")

	first := &models.RealtorClaim{RealtorID: "realtor-1", UserID: userID, ClaimToken: "tok-one", SubmittedEmail: "dup@example.com", SubmittedAt: nowUnix()}
	if _, err := repo.CreateClaim(ctx, first); err != nil {
		t.Fatalf("create first claim: %v", err)
	}

	second := &models.RealtorClaim{RealtorID: "realtor-1", UserID: userID, ClaimToken: "tok-two", SubmittedEmail: "dup@example.com", SubmittedAt: nowUnix()}
	if _, err := repo.CreateClaim(ctx, second); !errors.Is(err, repository.ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}

	// a different user may still hold their own pending claim
	otherUser := seedUser(t, repo, "other@example.com")
	other := &models.RealtorClaim{RealtorID: "realtor-1", UserID: otherUser, ClaimToken: "tok-three", SubmittedEmail: "other@example.com", SubmittedAt: nowUnix()}
	if _, err := repo.CreateClaim(ctx, other); err != nil {
		t.Fatalf("other user's claim should be allowed: %v", err)
	}
}

func TestListClaimsByUser(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID := seedUser(t, repo, "lister@example.com")
	otherID := seedUser(t, repo, "other@example.com")
	seedRealtor(t, repo, "realtor-1")
	seedRealtor(t, repo, "realtor-2")

	base := nowUnix()
	older := &models.RealtorClaim{RealtorID: "realtor-1", UserID: userID, ClaimToken: "tok-a", SubmittedEmail: "lister@example.com", SubmittedAt: base - 100}
	newer := &models.RealtorClaim{RealtorID: "realtor-2", UserID: userID, ClaimToken: "tok-b", SubmittedEmail: "lister@example.com", SubmittedAt: base}
	foreign := &models.RealtorClaim{RealtorID: "realtor-1", UserID: otherID, ClaimToken: "tok-c", SubmittedEmail: "other@example.com", SubmittedAt: base}
	var newerID int64
	for _, c := range []*models.RealtorClaim{older, newer, foreign} {
		id, err := repo.CreateClaim(ctx, c)
		if err != nil {
			t.Fatalf("create claim %s: %v", c.ClaimToken, err)
		}
		if c == newer {
			newerID = id
		}
	}

	claims, err := repo.ListClaimsByUser(ctx, userID, nil)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	// newest first, realtor projection filled
	if claims[0].RealtorID != "realtor-2" || claims[1].RealtorID != "realtor-1" {
		t.Fatalf("unexpected order: %s, %s", claims[0].RealtorID, claims[1].RealtorID)
	}
	if claims[0].Realtor.FirstName == "" {
		t.Fatalf("expected realtor projection to be joined: %+v", claims[0].Realtor)
	}

	filtered, err := repo.ListClaimsByUser(ctx, userID, &newerID)
	if err != nil || len(filtered) != 1 || filtered[0].ID != newerID {
		t.Fatalf("expected only claim %d, got %+v %v", newerID, filtered, err)
	}

	empty, err := repo.ListClaimsByUser(ctx, 999, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no claims for unknown user, got %d %v", len(empty), err)
	}
}
