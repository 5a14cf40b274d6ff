package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"eventify/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// Layout used for event dates in every email, e.g. "Saturday, 15 March 2025 at 10:00 AM".
const eventDateLayout = "Monday, 2 January 2006 at 3:04 PM"

func templateFuncs(loc *time.Location) map[string]any {
	return map[string]any{
		"eventDate": func(t time.Time) string { return t.In(loc).Format(eventDateLayout) },
	}
}

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
type templateRenderer struct {
	loc *time.Location
}

// NewTemplateRenderer returns an EmailTemplateRenderer that loads templates from the embedded
// templates folder. Event dates are shown in loc; nil means UTC.
func NewTemplateRenderer(loc *time.Location) domain.EmailTemplateRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &templateRenderer{loc: loc}
}

// Render executes the named template (e.g. "welcome") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	subject, err = r.renderText(templateName+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = r.renderHTML(templateName+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = r.renderText(templateName+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) renderHTML(name string, data any) (string, error) {
	t, err := template.New(name).Funcs(templateFuncs(r.loc)).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) renderText(name string, data any) (string, error) {
	t, err := texttemplate.New(name).Funcs(templateFuncs(r.loc)).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
