package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mreyes-dev/portfolio-site-backend/config"
	"github.com/mreyes-dev/portfolio-site-backend/models"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Mailer sends the notification that accompanies a contact submission.
type Mailer interface {
	SendContactNotification(ctx context.Context, submission models.ContactSubmission) error
}

// ResendMailer sends email through the Resend HTTP API.
//
// Required configuration:
//   - RESEND_API_KEY: Resend API key
//   - RESEND_FROM_EMAIL: sender address (e.g. "Site <noreply@example.com>")
//   - CONTACT_NOTIFY_EMAIL: where contact-form notifications land
type ResendMailer struct {
	apiKey      string
	fromEmail   string
	notifyEmail string
	client      *http.Client
}

func NewResendMailer(cfg map[string]string) (*ResendMailer, error) {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if fromEmail == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL environment variable is required")
	}

	notifyEmail := config.GetString(cfg, "CONTACT_NOTIFY_EMAIL", "")
	if notifyEmail == "" {
		return nil, fmt.Errorf("CONTACT_NOTIFY_EMAIL environment variable is required")
	}

	return &ResendMailer{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		notifyEmail: notifyEmail,
		client:      &http.Client{},
	}, nil
}

func (m *ResendMailer) SendContactNotification(ctx context.Context, submission models.ContactSubmission) error {
	subject := fmt.Sprintf("New contact form message from %s", submission.Name)
	body := fmt.Sprintf(
		"<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(submission.Name),
		html.EscapeString(submission.Email),
		html.EscapeString(submission.Message),
	)
	return m.send(ctx, subject, body, []string{m.notifyEmail})
}

// send performs a single attempt against the Resend API; there is no retry.
func (m *ResendMailer) send(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    m.fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
