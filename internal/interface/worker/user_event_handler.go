package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/pkg/mailer"
	"github.com/oksasatya/go-ddd-user-service/pkg/mailer/templates"
)

// Branding is copied into every rendered email.
type Branding struct {
	CompanyName string
	AppName     string
	SupportURL  string
}

// UserEventHandler turns user lifecycle events into notification emails.
type UserEventHandler struct {
	Mailer   mailer.Sender // nil disables sending
	Branding Branding
	Logger   *logrus.Logger
}

// PermanentError marks a message that will never succeed and must not be requeued.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

var eventTemplates = map[application.EventType]string{
	application.EventUserCreated:     templates.Welcome,
	application.EventUserActivated:   templates.AccountActivated,
	application.EventUserDeactivated: templates.AccountDeactivated,
}

// Handle processes one raw message body.
func (h *UserEventHandler) Handle(ctx context.Context, body []byte) error {
	var ev application.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return &PermanentError{Err: fmt.Errorf("decode user event: %w", err)}
	}
	log := h.Logger.WithFields(logrus.Fields{"type": ev.Type, "user_id": ev.UserID})

	job, ok := h.JobFor(ev)
	if !ok {
		log.Info("user event received")
		return nil
	}
	if h.Mailer == nil {
		log.WithField("template", job.Template).Info("mail sending disabled, skipping")
		return nil
	}
	if err := mailer.Deliver(ctx, h.Mailer, job); err != nil {
		if errors.Is(err, mailer.ErrNoRecipient) {
			return &PermanentError{Err: err}
		}
		return fmt.Errorf("send %s to %s: %w", job.Template, job.To, err)
	}
	log.WithField("template", job.Template).Info("notification sent")
	return nil
}

// JobFor maps an event to the email it triggers, if any.
func (h *UserEventHandler) JobFor(ev application.UserEvent) (mailer.EmailJob, bool) {
	tpl, ok := eventTemplates[ev.Type]
	if !ok {
		return mailer.EmailJob{}, false
	}
	data := templates.NewEmailData(ev.Name, ev.Email,
		templates.WithStatus(ev.Status),
		templates.WithTime(ev.OccurredAt),
		templates.WithBranding(h.Branding.CompanyName, h.Branding.AppName, h.Branding.SupportURL),
	)
	return mailer.EmailJob{To: ev.Email, Template: tpl, Data: data}, true
}
