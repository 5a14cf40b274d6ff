package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Document is a generated certificate or on-duty letter stored in the document bucket.
// swagger:model Document
type Document struct {
	Kind           DocumentKind `json:"kind"`
	RegistrationID string       `json:"registration_id"`
	Key            string       `json:"key"`
	URL            string       `json:"url"`
	ContentType    string       `json:"content_type"`
	Content        string       `json:"content"`
}

// Bucket folders and file extensions per document kind.
var documentLayout = map[DocumentKind]struct{ folder, ext, contentType string }{
	DocumentCertificate: {"certificates", ".html", "text/html; charset=utf-8"},
	DocumentODLetter:    {"od-letters", ".txt", "text/plain; charset=utf-8"},
}

// DocumentKey returns the bucket key of a registration's document, e.g. "od-letters/<id>.txt".
func DocumentKey(kind DocumentKind, registrationID string) string {
	l := documentLayout[kind]
	return l.folder + "/" + registrationID + l.ext
}

// DocumentContentType returns the media type stored with documents of kind.
func DocumentContentType(kind DocumentKind) string {
	return documentLayout[kind].contentType
}

// ParseDocumentKey is the inverse of DocumentKey for a folder and file name.
func ParseDocumentKey(folder, file string) (DocumentKind, string, error) {
	for kind, l := range documentLayout {
		if l.folder != folder {
			continue
		}
		id, ok := strings.CutSuffix(file, l.ext)
		if !ok || id == "" {
			break
		}
		return kind, id, nil
	}
	return "", "", fmt.Errorf("unknown document %s/%s: %w", folder, file, ErrNotFound)
}

// CertificateData is the input of a participation certificate.
type CertificateData struct {
	Recipient    string
	TeamName     string
	Event        *Event
	Registration *Registration
	IssuedAt     time.Time
}

// ODLetterData is the input of an on-duty letter addressed to a department.
type ODLetterData struct {
	Department   string
	Event        *Event
	Registration *Registration
	IssuedAt     time.Time
}

// DocumentRenderer produces document bodies.
type DocumentRenderer interface {
	Certificate(data *CertificateData) ([]byte, error)
	ODLetter(data *ODLetterData) ([]byte, error)
}

// DocumentStore persists generated documents and returns a retrievable location.
// Get fails with ErrNotFound for a missing key.
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (url string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// DocumentService generates documents for a registration owner and serves them back to that
// owner only.
type DocumentService interface {
	Certificate(ctx context.Context, registrationID, userID string) (*Document, error)
	ODLetter(ctx context.Context, registrationID, userID string) (*Document, error)
	Download(ctx context.Context, registrationID, userID string, kind DocumentKind) (*Document, error)
}
