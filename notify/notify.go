// Package notify sends alert emails when a critical case comes in.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	templates "github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/templates/html"
)

// Notifier is told about every newly created case
type Notifier interface {
	CaseCreated(ctx context.Context, c models.Case) error
}

// Sender is the part of the sendgrid client used here
// go generate: mockery --name Sender
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Nop drops every notification
type Nop struct{}

// CaseCreated does nothing
func (Nop) CaseCreated(context.Context, models.Case) error { return nil }

// SendGrid emails the alert list about critical cases
type SendGrid struct {
	Client Sender
	From   *mail.Email
	To     []string
	// BaseURL, when set, adds a dashboard link for the case
	BaseURL string
}

// New returns a SendGrid notifier, or Nop when no API key or recipients are configured
func New(conf *config.Config) Notifier {
	if conf.SendGridAPIKey == "" || len(conf.AlertEmails) == 0 {
		return Nop{}
	}
	return &SendGrid{
		Client:  sendgrid.NewSendClient(conf.SendGridAPIKey),
		From:    mail.NewEmail("GoldGuard Alerts", conf.AlertFromEmail),
		To:      conf.AlertEmails,
		BaseURL: conf.BaseURL,
	}
}

// CaseCreated sends an alert when the case is Critical
func (s *SendGrid) CaseCreated(ctx context.Context, c models.Case) error {
	if c.Priority != models.PriorityCritical || len(s.To) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Critical galamsey report: %s", c.Title)
	plainText, htmlContent := alertBody(subject, c, s.caseLink(c))

	p := mail.NewPersonalization()
	for _, addr := range s.To {
		p.AddTos(mail.NewEmail("", addr))
	}
	message := mail.NewV3Mail()
	message.SetFrom(s.From)
	message.Subject = subject
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", plainText), mail.NewContent("text/html", htmlContent))

	response, err := s.Client.SendWithContext(ctx, message)
	if err != nil {
		zap.S().Errorw("failed to send alert", "error", err, "caseId", c.ID)
		return fmt.Errorf("sending alert for %s: %w", c.ID, err)
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "caseId", c.ID)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("alert sent", "caseId", c.ID, "recipients", len(s.To))
	return nil
}

func (s *SendGrid) caseLink(c models.Case) string {
	if s.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.BaseURL, "/") + "/api/v1/case/" + c.ID
}

func alertBody(subject string, c models.Case, link string) (string, string) {
	where := string(c.Region)
	if c.Location != nil && c.Location.Address != "" {
		where = c.Location.Address
	}
	details := []string{
		"Case: " + c.ID,
		"Type: " + c.Type,
		"Region: " + string(c.Region),
		"Location: " + where,
		"Reported: " + c.CreatedAt.UTC().Format("2006-01-02 15:04 MST"),
	}
	plain := strings.Join(append(details, "", c.Description), "\n")
	if link != "" {
		plain += "\n\n" + link
	}
	return plain, templates.RenderAlertEmail(subject, details, c.Description, link)
}
