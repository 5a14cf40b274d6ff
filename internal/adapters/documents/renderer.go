// Package documents renders participation certificates and on-duty letters.
package documents

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"eventify/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

const (
	longDateLayout  = "Monday, 2 January 2006"
	shortDateLayout = "02/01/2006"
)

type renderer struct {
	certificate *template.Template
	odLetter    *texttemplate.Template
}

// NewRenderer parses the embedded templates. Dates are shown in loc; nil means UTC.
func NewRenderer(loc *time.Location) (domain.DocumentRenderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	title := cases.Title(language.English, cases.NoLower)
	funcs := map[string]any{
		"longDate":  func(t time.Time) string { return t.In(loc).Format(longDateLayout) },
		"shortDate": func(t time.Time) string { return t.In(loc).Format(shortDateLayout) },
		"department": func(s string) string {
			return title.String(strings.TrimSpace(s))
		},
		"inc": func(i int) int { return i + 1 },
	}

	cert, err := template.New("certificate.html").Funcs(funcs).ParseFS(templateFS, "templates/certificate.html")
	if err != nil {
		return nil, fmt.Errorf("parse certificate template: %w", err)
	}
	letter, err := texttemplate.New("od_letter.txt").Funcs(funcs).ParseFS(templateFS, "templates/od_letter.txt")
	if err != nil {
		return nil, fmt.Errorf("parse od letter template: %w", err)
	}
	return &renderer{certificate: cert, odLetter: letter}, nil
}

func (r *renderer) Certificate(data *domain.CertificateData) ([]byte, error) {
	if data == nil || data.Event == nil || data.Registration == nil {
		return nil, fmt.Errorf("certificate data incomplete: %w", domain.ErrInvalidInput)
	}
	var buf bytes.Buffer
	if err := r.certificate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *renderer) ODLetter(data *domain.ODLetterData) ([]byte, error) {
	if data == nil || data.Event == nil || data.Registration == nil {
		return nil, fmt.Errorf("od letter data incomplete: %w", domain.ErrInvalidInput)
	}
	var buf bytes.Buffer
	if err := r.odLetter.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
