package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithStatus(s string) Option { return func(d *EmailData) { d.Status = s } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// WithBranding fills the footer fields; blank values keep the defaults.
func WithBranding(company, app, supportURL string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(company); s != "" {
			d.CompanyName = s
		}
		if s := strings.TrimSpace(app); s != "" {
			d.AppName = s
		}
		if s := strings.TrimSpace(supportURL); s != "" {
			d.SupportURL = s
		}
	}
}

// NewEmailData builds template data for one recipient.
func NewEmailData(name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:        name,
		Email:       email,
		CompanyName: "User Service",
		AppName:     "User Service",
	}
	WithTime(time.Now())(&d)
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
