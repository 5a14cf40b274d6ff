package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventify/internal/domain"
)

type documentService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	renderer         domain.DocumentRenderer
	store            domain.DocumentStore
	contextTimeout   time.Duration
}

func NewDocumentService(registrationRepo domain.RegistrationRepository, eventRepo domain.EventRepository, renderer domain.DocumentRenderer, store domain.DocumentStore, timeout time.Duration) domain.DocumentService {
	return &documentService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		renderer:         renderer,
		store:            store,
		contextTimeout:   timeout,
	}
}

func (s *documentService) Certificate(ctx context.Context, registrationID, userID string) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, event, err := s.load(ctx, registrationID, userID)
	if err != nil {
		return nil, err
	}
	if !reg.Attended {
		return nil, domain.ErrNotAttended
	}

	data := &domain.CertificateData{
		Recipient:    leaderOf(reg).Name,
		TeamName:     reg.TeamName,
		Event:        event,
		Registration: reg,
		IssuedAt:     time.Now(),
	}
	body, err := s.renderer.Certificate(data)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return s.save(ctx, reg.ID, domain.DocumentCertificate, body)
}

func (s *documentService) ODLetter(ctx context.Context, registrationID, userID string) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, event, err := s.load(ctx, registrationID, userID)
	if err != nil {
		return nil, err
	}

	data := &domain.ODLetterData{
		Department:   leaderOf(reg).Department,
		Event:        event,
		Registration: reg,
		IssuedAt:     time.Now(),
	}
	body, err := s.renderer.ODLetter(data)
	if err != nil {
		return nil, fmt.Errorf("render od letter: %w", err)
	}
	return s.save(ctx, reg.ID, domain.DocumentODLetter, body)
}

// Download returns a previously generated document. Documents that were never generated are
// reported as ErrNotFound.
func (s *documentService) Download(ctx context.Context, registrationID, userID string, kind domain.DocumentKind) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.owned(ctx, registrationID, userID)
	if err != nil {
		return nil, err
	}
	generated := reg.CertificateGenerated
	if kind == domain.DocumentODLetter {
		generated = reg.ODLetterGenerated
	}
	if !generated {
		return nil, domain.ErrNotFound
	}

	key := domain.DocumentKey(kind, reg.ID)
	body, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return &domain.Document{
		Kind:           kind,
		RegistrationID: reg.ID,
		Key:            key,
		ContentType:    domain.DocumentContentType(kind),
		Content:        string(body),
	}, nil
}

// owned fetches a registration and checks that userID made it.
func (s *documentService) owned(ctx context.Context, registrationID, userID string) (*domain.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return reg, nil
}

func (s *documentService) load(ctx context.Context, registrationID, userID string) (*domain.Registration, *domain.Event, error) {
	reg, err := s.owned(ctx, registrationID, userID)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	return reg, event, nil
}

func (s *documentService) save(ctx context.Context, registrationID string, kind domain.DocumentKind, body []byte) (*domain.Document, error) {
	key := domain.DocumentKey(kind, registrationID)
	contentType := domain.DocumentContentType(kind)
	url, err := s.store.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", kind, err)
	}
	if err := s.registrationRepo.MarkGenerated(ctx, registrationID, kind); err != nil {
		return nil, fmt.Errorf("mark %s generated: %w", kind, err)
	}
	return &domain.Document{
		Kind:           kind,
		RegistrationID: registrationID,
		Key:            key,
		URL:            url,
		ContentType:    contentType,
		Content:        string(body),
	}, nil
}

// leaderOf returns the first team member, which is always the registering user.
func leaderOf(reg *domain.Registration) *domain.TeamMember {
	if len(reg.TeamMembers) == 0 {
		return &domain.TeamMember{}
	}
	return reg.TeamMembers[0]
}
