package mailer

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-service/pkg/mailer/templates"
)

// EmailJob is one email to deliver, either pre-rendered or by template.
type EmailJob struct {
	To       string              `json:"to"`
	Subject  string              `json:"subject,omitempty"`
	Text     string              `json:"text,omitempty"`
	HTML     string              `json:"html,omitempty"`
	Template string              `json:"template,omitempty"` // e.g. "welcome", "account_activated"
	Data     templates.EmailData `json:"data"`
}

var ErrNoRecipient = errors.New("email job has no recipient")

// Render fills Subject, Text and HTML from Template when one is set.
func (j *EmailJob) Render() error {
	if j.Template == "" {
		return nil
	}
	s, t, h, err := templates.Render(j.Template, j.Data)
	if err != nil {
		return err
	}
	j.Subject, j.Text, j.HTML = s, t, h
	return nil
}

// Deliver renders the job and hands it to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if job.To == "" {
		return ErrNoRecipient
	}
	if err := job.Render(); err != nil {
		return err
	}
	return s.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
