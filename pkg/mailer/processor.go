package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	tpl "github.com/oksasatya/go-ddd-auth-service/pkg/mailer/templates"
)

const sendTimeout = 15 * time.Second

// Sender is satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Processor renders jobs and hands them to a Sender.
type Processor struct {
	Sender Sender
}

func NewProcessor(s Sender) *Processor {
	return &Processor{Sender: s}
}

// Handle renders the job if it names a template, then sends it.
func (p *Processor) Handle(ctx context.Context, job EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := tpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadJob, err)
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrBadJob)
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return p.Sender.Send(c, job.To, subject, text, html)
}
