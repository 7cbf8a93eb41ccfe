package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

// Each email is three files: <name>.subject.tmpl, <name>.text.tmpl, <name>.html.tmpl.
//
//go:embed *.tmpl
var files embed.FS

const (
	Welcome            = "welcome"
	AccountActivated   = "account_activated"
	AccountDeactivated = "account_deactivated"
)

// EmailData is the dot value of every template.
type EmailData struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`

	CompanyName string `json:"company_name"`
	AppName     string `json:"app_name"`
	SupportURL  string `json:"support_url"`

	Time   string    `json:"time"`
	TimeAt time.Time `json:"time_at"`
}

var funcs = map[string]any{
	"default": orDefault,
	"upper":   strings.ToUpper,
	"now":     func() time.Time { return time.Now().UTC() },
}

// Parsed once; a broken template fails at startup rather than per email.
var (
	plain = texttpl.Must(texttpl.New("plain").Funcs(funcs).ParseFS(files, "*.subject.tmpl", "*.text.tmpl"))
	rich  = htmpl.Must(htmpl.New("rich").Funcs(funcs).ParseFS(files, "*.html.tmpl"))
)

// orDefault backs `{{ .Name | default "there" }}`: blank strings and zero values take the fallback.
func orDefault(fallback, v any) any {
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	if rv := reflect.ValueOf(v); rv.IsZero() {
		return fallback
	}
	return v
}

// Render returns the subject (trimmed to one line), text body and HTML body of email name.
func Render(name string, data any) (subject, text, html string, err error) {
	var sb, tb, hb bytes.Buffer
	if err = plain.ExecuteTemplate(&sb, name+".subject.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err = plain.ExecuteTemplate(&tb, name+".text.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	if err = rich.ExecuteTemplate(&hb, name+".html.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), tb.String(), hb.String(), nil
}
