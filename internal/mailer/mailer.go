package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"log/slog"

	"github.com/homefolio/realtorsites/internal/config"
)

// Mailer delivers claim verification messages.
type Mailer interface {
	SendClaimVerification(ctx context.Context, to, realtorName, link string) error
}

// New returns an SMTP mailer when a host is configured, otherwise a log-only
// mailer so local runs still show the verification link.
func New(cfg config.SMTPConfig, logger *slog.Logger) Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Host == "" {
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func (m *SMTPMailer) SendClaimVerification(ctx context.Context, to, realtorName, link string) error {
	msg := buildVerificationMessage(m.cfg.From, to, realtorName, link)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, nil, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	m.logger.Info("verification email sent", slog.String("to", to))
	return nil
}

// LogMailer logs the verification link instead of sending it.
type LogMailer struct {
	logger *slog.Logger
}

func (m *LogMailer) SendClaimVerification(ctx context.Context, to, realtorName, link string) error {
	m.logger.Info("verification email (not sent, smtp unconfigured)",
		slog.String("to", to),
		slog.String("link", link),
	)
	return nil
}

func buildVerificationMessage(from, to, realtorName, link string) []byte {
	subject := "Verify your realtor profile claim"
	body := fmt.Sprintf("A claim was submitted for the profile of %s.\r\n\r\nTo complete verification, open the link below within 7 days:\r\n\r\n%s\r\n\r\nIf you did not submit this claim, ignore this message.\r\n", realtorName, link)
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", from, to, subject, body))
}
