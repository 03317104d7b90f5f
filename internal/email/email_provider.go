package email

import (
	"context"
	"errors"
	"strconv"

	"github.com/wneessen/go-mail"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

// ErrNotConfigured reports missing SMTP settings. It surfaces once at
// construction, not per message.
var ErrNotConfigured = errors.New("email: SMTP host, port, user and password must be provided")

func NewEmailProvider(
	smtpHost, smtpUser, smtpPassword, smtpPort string) (*EmailProvider, error) {

	if smtpHost == "" || smtpUser == "" || smtpPassword == "" || smtpPort == "" {
		return nil, ErrNotConfigured
	}

	smtpPortInt, err := strconv.Atoi(smtpPort)
	if err != nil {
		return nil, errors.New("email: invalid SMTP port: " + err.Error())
	}

	client, err := mail.NewClient(
		smtpHost,
		mail.WithPort(smtpPortInt),
		mail.WithUsername(smtpUser),
		mail.WithPassword(smtpPassword),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, errors.New("email: failed to create SMTP client: " + err.Error())
	}

	return &EmailProvider{client: client}, nil
}

type EmailProvider struct {
	client *mail.Client
}

// SendEmail submits one message and blocks until the transport accepts or
// rejects it, so the caller can record delivery per message.
func (e *EmailProvider) SendEmail(ctx context.Context, email usecase.Email) error {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return err
	}
	if err := msg.To(email.To...); err != nil {
		return err
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	return e.client.DialAndSendWithContext(ctx, msg)
}
