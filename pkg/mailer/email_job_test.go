package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-service/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	calls                   int
}

func (r *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	r.calls++
	r.to, r.subject, r.text, r.html = to, subject, text, html
	return nil
}

func TestDeliver_RendersTemplate(t *testing.T) {
	s := &recordingSender{}
	job := EmailJob{
		To:       "ada@example.com",
		Template: templates.AccountActivated,
		Data:     templates.NewEmailData("Ada", "ada@example.com"),
	}

	require.NoError(t, Deliver(context.Background(), s, job))
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "Your User Service account is active", s.subject)
	assert.Contains(t, s.text, "Hi Ada,")
	assert.NotEmpty(t, s.html)
}

func TestDeliver_PreRendered(t *testing.T) {
	s := &recordingSender{}
	job := EmailJob{To: "ada@example.com", Subject: "Hello", Text: "plain"}

	require.NoError(t, Deliver(context.Background(), s, job))
	assert.Equal(t, "Hello", s.subject)
	assert.Equal(t, "plain", s.text)
}

func TestDeliver_NoRecipient(t *testing.T) {
	s := &recordingSender{}
	err := Deliver(context.Background(), s, EmailJob{Template: templates.Welcome})
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Zero(t, s.calls)
}
