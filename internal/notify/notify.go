// Package notify stores contact-page submissions and pings the site admin
// over SMS so they hear about new messages without watching a dashboard.
package notify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Coder-vibhi/baua-lms/internal/models"
)

type Service struct {
	db           *sql.DB
	twilioClient *twilio.RestClient
	fromNumber   string
	adminNumber  string
	log          zerolog.Logger
}

// NewService creates the contact service. When Twilio credentials are
// missing, submissions are still stored and the SMS is skipped.
func NewService(db *sql.DB, accountSID, authToken, fromNumber, adminNumber string, logger zerolog.Logger) *Service {
	var client *twilio.RestClient
	if accountSID != "" && authToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	}

	return &Service{
		db:           db,
		twilioClient: client,
		fromNumber:   fromNumber,
		adminNumber:  adminNumber,
		log:          logger,
	}
}

// SubmitContact stores the submission and fires the admin SMS. SMS failure
// is logged but never surfaced to the submitter.
func (s *Service) SubmitContact(ctx context.Context, name, email, body string) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{ID: uuid.New(), Name: name, Email: email, Body: body}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, name, email, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, msg.ID, msg.Name, msg.Email, msg.Body).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	s.notifyAdmin(msg)
	return msg, nil
}

func (s *Service) notifyAdmin(msg *models.ContactMessage) {
	if s.twilioClient == nil || s.fromNumber == "" || s.adminNumber == "" {
		return
	}

	text := fmt.Sprintf("New contact message from %s <%s>: %s", msg.Name, msg.Email, truncate(msg.Body, 120))
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.fromNumber)
	params.SetTo(s.adminNumber)
	params.SetBody(text)

	if _, err := s.twilioClient.Api.CreateMessage(params); err != nil {
		s.log.Warn().Err(err).Str("contact_id", msg.ID.String()).Msg("admin SMS failed")
		return
	}
	s.log.Info().Str("contact_id", msg.ID.String()).Msg("admin notified by SMS")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
