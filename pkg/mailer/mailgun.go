package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends messages through the Mailgun HTTP API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

// NewMailgun builds a sender for domain. apiBase selects the region, for
// example mg.APIBaseEU; empty keeps the US default.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{Sender: sender, client: client}
}

// Send sends one message. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	_, _, err := m.client.Send(ctx, msg)
	return classifySendError(err)
}

// classifySendError marks client errors that a retry cannot fix as ErrBadJob.
// Throttling and timeouts stay retryable.
func classifySendError(err error) error {
	var resp *mg.UnexpectedResponseError
	if !errors.As(err, &resp) {
		return err
	}
	switch {
	case resp.Actual == http.StatusTooManyRequests, resp.Actual == http.StatusRequestTimeout:
		return err
	case resp.Actual >= 400 && resp.Actual < 500:
		return fmt.Errorf("%w: mailgun rejected message: %w", ErrBadJob, err)
	default:
		return err
	}
}

var _ Sender = (*Mailgun)(nil)
