// File: internal/infra/adapters/mail/sendgrid_mailer.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"

	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var _ adapter.Mailer = (*SendGridMailer)(nil)

// SendGridMailer implements adapter.Mailer with the SendGrid v3 mail API.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *sgmail.Email
	subject string
}

func NewSendGridMailer(apiKey, fromName, fromEmail, subject string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key empty")
	}
	if fromEmail == "" {
		return nil, errors.New("sender address empty")
	}
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    sgmail.NewEmail(fromName, fromEmail),
		subject: subject,
	}, nil
}

func (m *SendGridMailer) Name() string { return "sendgrid" }

func (m *SendGridMailer) SendActivation(ctx context.Context, to *model.User, link string) error {
	plain, htmlBody := activationBody(to, link)
	message := sgmail.NewSingleEmail(m.from, m.subject, sgmail.NewEmail(to.Name, to.Email), plain, htmlBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func activationBody(to *model.User, link string) (plain, htmlBody string) {
	greeting := "Hello"
	if to.Name != "" {
		greeting = "Hello " + to.Name
	}
	plain = fmt.Sprintf("%s,\n\nPlease activate your account by following this link:\n%s\n", greeting, link)
	htmlBody = fmt.Sprintf(`<p>%s,</p><p>Please activate your account by following this link:</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(greeting), html.EscapeString(link), html.EscapeString(link))
	return plain, htmlBody
}
