package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/domain"
)

type fakeDocumentRenderer struct {
	certificates []*domain.CertificateData
	letters      []*domain.ODLetterData
}

func (f *fakeDocumentRenderer) Certificate(data *domain.CertificateData) ([]byte, error) {
	f.certificates = append(f.certificates, data)
	return []byte("<h1>" + data.Recipient + "</h1>"), nil
}

func (f *fakeDocumentRenderer) ODLetter(data *domain.ODLetterData) ([]byte, error) {
	f.letters = append(f.letters, data)
	return []byte("To the HOD, " + data.Department), nil
}

type fakeDocumentStore struct {
	keys  []string
	blobs map[string][]byte
	err   error
}

func (f *fakeDocumentStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	if f.blobs == nil {
		f.blobs = make(map[string][]byte)
	}
	f.blobs[key] = body
	return "https://docs.example.com/" + key, nil
}

func (f *fakeDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return body, nil
}

func newDocumentFixture(attended bool) (*fakeDB, *fakeDocumentRenderer, *fakeDocumentStore, domain.DocumentService, *domain.Registration) {
	db := newFakeDB()
	ev := db.addEvent(&domain.Event{Title: "Robotics Expo", Date: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)})
	reg := db.addRegistration(&domain.Registration{
		EventID:  ev.ID,
		UserID:   "u-1",
		TeamName: "Gearheads",
		Attended: attended,
		TeamMembers: []*domain.TeamMember{
			{Name: "Asha", Email: "asha@x.in", Department: "CSE"},
			{Name: "Kiran", Email: "kiran@x.in", Department: "ECE"},
		},
	})
	renderer := &fakeDocumentRenderer{}
	store := &fakeDocumentStore{}
	svc := NewDocumentService(&fakeRegistrationRepo{db: db}, &fakeEventRepo{db: db}, renderer, store, 5*time.Second)
	return db, renderer, store, svc, reg
}

func TestDocumentService_Certificate(t *testing.T) {
	t.Run("blocked until attended", func(t *testing.T) {
		_, renderer, store, svc, reg := newDocumentFixture(false)
		_, err := svc.Certificate(context.Background(), reg.ID, "u-1")
		require.ErrorIs(t, err, domain.ErrNotAttended)
		assert.Empty(t, renderer.certificates)
		assert.Empty(t, store.keys)
		assert.False(t, reg.CertificateGenerated)
	})

	t.Run("issued to the team leader", func(t *testing.T) {
		_, renderer, store, svc, reg := newDocumentFixture(true)
		doc, err := svc.Certificate(context.Background(), reg.ID, "u-1")
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentCertificate, doc.Kind)
		assert.Equal(t, "certificates/"+reg.ID+".html", doc.Key)
		assert.Equal(t, "https://docs.example.com/certificates/"+reg.ID+".html", doc.URL)
		assert.Equal(t, "<h1>Asha</h1>", doc.Content)
		assert.Equal(t, []string{doc.Key}, store.keys)
		require.Len(t, renderer.certificates, 1)
		assert.Equal(t, "Robotics Expo", renderer.certificates[0].Event.Title)
		assert.True(t, reg.CertificateGenerated)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, _, _, svc, reg := newDocumentFixture(true)
		_, err := svc.Certificate(context.Background(), reg.ID, "u-2")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("store failure leaves the flag unset", func(t *testing.T) {
		_, _, store, svc, reg := newDocumentFixture(true)
		store.err = errors.New("bucket missing")
		_, err := svc.Certificate(context.Background(), reg.ID, "u-1")
		require.Error(t, err)
		assert.False(t, reg.CertificateGenerated)
	})

	t.Run("unknown registration", func(t *testing.T) {
		_, _, _, svc, _ := newDocumentFixture(true)
		_, err := svc.Certificate(context.Background(), "missing", "u-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDocumentService_ODLetter(t *testing.T) {
	_, renderer, _, svc, reg := newDocumentFixture(false)
	doc, err := svc.ODLetter(context.Background(), reg.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "od-letters/"+reg.ID+".txt", doc.Key)
	assert.Equal(t, "text/plain; charset=utf-8", doc.ContentType)
	require.Len(t, renderer.letters, 1)
	assert.Equal(t, "CSE", renderer.letters[0].Department)
	assert.True(t, reg.ODLetterGenerated)
}

func TestDocumentService_Download(t *testing.T) {
	t.Run("owner reads a generated letter", func(t *testing.T) {
		_, _, _, svc, reg := newDocumentFixture(false)
		_, err := svc.ODLetter(context.Background(), reg.ID, "u-1")
		require.NoError(t, err)

		doc, err := svc.Download(context.Background(), reg.ID, "u-1", domain.DocumentODLetter)
		require.NoError(t, err)
		assert.Equal(t, "To the HOD, CSE", doc.Content)
		assert.Equal(t, "text/plain; charset=utf-8", doc.ContentType)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, _, _, svc, reg := newDocumentFixture(false)
		_, err := svc.ODLetter(context.Background(), reg.ID, "u-1")
		require.NoError(t, err)

		_, err = svc.Download(context.Background(), reg.ID, "u-2", domain.DocumentODLetter)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("never generated", func(t *testing.T) {
		_, _, store, svc, reg := newDocumentFixture(true)
		_, err := svc.Download(context.Background(), reg.ID, "u-1", domain.DocumentCertificate)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, store.keys)
	})

	t.Run("missing blob", func(t *testing.T) {
		_, _, store, svc, reg := newDocumentFixture(true)
		_, err := svc.Certificate(context.Background(), reg.ID, "u-1")
		require.NoError(t, err)
		delete(store.blobs, domain.DocumentKey(domain.DocumentCertificate, reg.ID))

		_, err = svc.Download(context.Background(), reg.ID, "u-1", domain.DocumentCertificate)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
