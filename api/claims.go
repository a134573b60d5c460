package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/homefolio/realtorsites/internal/jobs"
	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/pkg/repository"
	"github.com/qri-io/jsonschema"
)

// verification_info is an opaque evidence payload, but it must at least be a
// JSON object (the original store coerced it to one).
var verificationInfoSchema = mustSchema(`{"type": "object"}`)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return rs
}

type ClaimsHandler struct {
	realtorRepo repository.RealtorRepo
	claimRepo   repository.ClaimRepo
	jobRepo     repository.JobRepo
	claimTTL    time.Duration
}

func NewClaimsHandler(rr repository.RealtorRepo, cr repository.ClaimRepo, jr repository.JobRepo, claimTTL time.Duration) *ClaimsHandler {
	if claimTTL <= 0 {
		claimTTL = 7 * 24 * time.Hour
	}
	return &ClaimsHandler{realtorRepo: rr, claimRepo: cr, jobRepo: jr, claimTTL: claimTTL}
}

// generateClaimToken returns a 256-bit random token, hex encoded.
func generateClaimToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate claim token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type submitClaimRequest struct {
	RealtorID        string          `json:"realtor_id"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	VerificationInfo json.RawMessage `json:"verification_info,omitempty"`
}

type submitClaimResponse struct {
	ClaimID int64  `json:"claim_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type duplicateClaimResponse struct {
	Error       string `json:"error"`
	ClaimStatus string `json:"claim_status"`
}

// SubmitClaim validates and persists a new pending claim, then enqueues the
// verification email as a fire-and-forget job.
func (h *ClaimsHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req submitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.RealtorID == "" || req.Email == "" {
		writeError(w, "Realtor ID and email are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if len(req.VerificationInfo) > 0 {
		keyErrs, err := verificationInfoSchema.ValidateBytes(ctx, req.VerificationInfo)
		if err != nil || len(keyErrs) > 0 {
			writeError(w, "verification_info must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	realtor, err := h.realtorRepo.GetRealtor(ctx, req.RealtorID)
	if err != nil {
		logger.Error("fetch realtor for claim", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to submit claim: %v", err), http.StatusInternalServerError)
		return
	}
	if realtor == nil {
		writeError(w, "Realtor not found", http.StatusNotFound)
		return
	}
	if realtor.IsClaimed {
		writeError(w, "This realtor profile has already been claimed", http.StatusConflict)
		return
	}

	existing, err := h.claimRepo.GetClaimForRealtorAndUser(ctx, req.RealtorID, userID)
	if err != nil {
		logger.Error("check existing claim", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to submit claim: %v", err), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeJSON(w, duplicateClaimResponse{
			Error:       "You have already submitted a claim for this realtor",
			ClaimStatus: existing.Status,
		}, http.StatusConflict)
		return
	}

	token, err := generateClaimToken()
	if err != nil {
		writeError(w, "Failed to submit claim", http.StatusInternalServerError)
		return
	}

	claim := &models.RealtorClaim{
		RealtorID:        req.RealtorID,
		UserID:           userID,
		ClaimToken:       token,
		SubmittedEmail:   req.Email,
		SubmittedPhone:   req.Phone,
		VerificationInfo: req.VerificationInfo,
		Status:           models.ClaimStatusPending,
		SubmittedAt:      time.Now().UTC().Unix(),
	}

	claimID, err := h.claimRepo.CreateClaim(ctx, claim)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateClaim) {
			// lost the insert race; re-read so this branch reports the same
			// status the pre-check would have
			status := models.ClaimStatusPending
			if existing, lookupErr := h.claimRepo.GetClaimForRealtorAndUser(ctx, req.RealtorID, userID); lookupErr == nil && existing != nil {
				status = existing.Status
			}
			writeJSON(w, duplicateClaimResponse{
				Error:       "You have already submitted a claim for this realtor",
				ClaimStatus: status,
			}, http.StatusConflict)
			return
		}
		logger.Error("create claim", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to submit claim: %v", err), http.StatusInternalServerError)
		return
	}

	// best-effort email dispatch; never fails the request
	payload, _ := json.Marshal(jobs.VerificationEmailPayload{
		Email:       req.Email,
		Token:       token,
		RealtorName: realtor.FirstName + " " + realtor.LastName,
	})
	j := &models.BackgroundJob{Type: jobs.TypeClaimVerificationEmail, Payload: payload, Priority: 100, MaxAttempts: 3, ScheduledAt: time.Now()}
	if _, err := h.jobRepo.Enqueue(ctx, j); err != nil {
		logger.Warn("enqueue verification email", slog.Any("err", err))
	}

	writeJSON(w, submitClaimResponse{
		ClaimID: claimID,
		Status:  models.ClaimStatusPending,
		Message: "Claim submitted successfully. A verification email has been sent to the realtor's email address.",
	}, http.StatusOK)
}

// ListClaims returns the caller's claims, newest first.
func (h *ClaimsHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var claimID *int64
	if s := r.URL.Query().Get("claim_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, "invalid claim_id", http.StatusBadRequest)
			return
		}
		claimID = &v
	}

	claims, err := h.claimRepo.ListClaimsByUser(r.Context(), userID, claimID)
	if err != nil {
		logger.Error("list claims", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to fetch claims: %v", err), http.StatusInternalServerError)
		return
	}
	if claims == nil {
		claims = []models.ClaimWithRealtor{}
	}

	writeJSON(w, map[string]any{"data": claims}, http.StatusOK)
}

type previewRealtor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type previewClaimResponse struct {
	ClaimID       int64          `json:"claim_id"`
	Status        string         `json:"status"`
	Realtor       previewRealtor `json:"realtor"`
	SubmittedAt   string         `json:"submitted_at"`
	ExpiresInDays int            `json:"expires_in_days"`
}

// PreviewClaim reports claim status by token without mutating anything.
// Check order: unknown token, already verified, expired, realtor claimed.
func (h *ClaimsHandler) PreviewClaim(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	claim, err := h.claimRepo.GetClaimByToken(r.Context(), token)
	if err != nil {
		logger.Error("claim preview lookup", slog.Any("err", err))
		writeError(w, fmt.Sprintf("Failed to fetch claim: %v", err), http.StatusInternalServerError)
		return
	}
	if claim == nil {
		writeError(w, "Invalid verification token", http.StatusNotFound)
		return
	}

	if claim.Status == models.ClaimStatusVerified {
		writeErrorStatus(w, "This claim has already been verified", "already_verified", http.StatusConflict)
		return
	}

	elapsed := time.Now().UTC().Unix() - claim.SubmittedAt
	if elapsed > int64(h.claimTTL.Seconds()) {
		writeErrorStatus(w, "Verification token has expired", "expired", http.StatusGone)
		return
	}

	if claim.Realtor.IsClaimed {
		writeErrorStatus(w, "This realtor profile has already been claimed", "already_claimed", http.StatusConflict)
		return
	}

	ttlDays := int(h.claimTTL.Hours() / 24)
	daysElapsed := int(elapsed / 86400)
	expiresIn := ttlDays - daysElapsed
	if expiresIn < 0 {
		expiresIn = 0
	}

	writeJSON(w, previewClaimResponse{
		ClaimID: claim.ID,
		Status:  claim.Status,
		Realtor: previewRealtor{
			ID:       claim.Realtor.ID,
			Name:     claim.Realtor.FirstName + " " + claim.Realtor.LastName,
			Location: claim.Realtor.PrimaryCity + ", " + claim.Realtor.PrimaryProvince,
		},
		SubmittedAt:   time.Unix(claim.SubmittedAt, 0).UTC().Format(time.RFC3339),
		ExpiresInDays: expiresIn,
	}, http.StatusOK)
}

type verifyClaimRequest struct {
	Token string `json:"token"`
}

type verifiedRealtor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type verifyClaimResponse struct {
	Message string          `json:"message"`
	Realtor verifiedRealtor `json:"realtor"`
}

// VerifyClaim performs the pending->verified transition. All guard checks and
// both row updates run inside one repository transaction.
func (h *ClaimsHandler) VerifyClaim(w http.ResponseWriter, r *http.Request) {
	var req verifyClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		writeError(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	result, err := h.claimRepo.VerifyClaim(r.Context(), req.Token, time.Now(), h.claimTTL)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClaimNotPending):
			// deliberately covers unknown and already-verified tokens alike
			writeError(w, "Invalid or expired verification token", http.StatusNotFound)
		case errors.Is(err, repository.ErrRealtorClaimed):
			writeError(w, "This realtor profile has already been claimed by another user", http.StatusConflict)
		case errors.Is(err, repository.ErrClaimExpired):
			writeError(w, "Verification token has expired. Please submit a new claim.", http.StatusGone)
		default:
			logger.Error("verify claim", slog.Any("err", err))
			writeError(w, fmt.Sprintf("Failed to verify claim: %v", err), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, verifyClaimResponse{
		Message: "Claim verified successfully! You now have control of this realtor profile.",
		Realtor: verifiedRealtor{ID: result.RealtorID, Name: result.RealtorName},
	}, http.StatusOK)
}
