package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/homefolio/realtorsites/internal/mailer"
	"github.com/homefolio/realtorsites/internal/models"
)

// VerificationEmailPayload is the payload for claim.verification_email jobs.
type VerificationEmailPayload struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	RealtorName string `json:"realtor_name"`
}

// VerificationEmailHandler builds the handler that delivers claim
// verification links. Delivery failures surface as handler errors so the pool
// retries and eventually dead-letters; the originating request is long gone.
func VerificationEmailHandler(m mailer.Mailer, publicBaseURL string) Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var p VerificationEmailPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode verification email payload: %w", err)
		}
		if p.Email == "" || p.Token == "" {
			return fmt.Errorf("verification email payload missing email or token")
		}

		link := strings.TrimRight(publicBaseURL, "/") + "/claim/verify?token=" + url.QueryEscape(p.Token)
		return m.SendClaimVerification(ctx, p.Email, p.RealtorName, link)
	}
}
