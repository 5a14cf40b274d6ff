package domain

import "errors"

// Sentinel errors shared by services, repositories and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyRegistered is returned when the user already holds a registration for the event.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrNoSlots is returned when an event has no available slots left.
	ErrNoSlots = errors.New("no slots available")
	// ErrNotAttended is returned when a certificate is requested for a registration without attendance.
	ErrNotAttended = errors.New("attendance has not been marked")

	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAdminCode   = errors.New("invalid admin code")
)
