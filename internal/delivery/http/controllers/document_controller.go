package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

type DocumentController struct {
	Logger  *slog.Logger
	Service domain.DocumentService
}

func NewDocumentController(logger *slog.Logger, svc domain.DocumentService) *DocumentController {
	return &DocumentController{Logger: logger, Service: svc}
}

// Certificate godoc
// @Summary Generate a participation certificate
// @Description Owner only. Requires attendance to have been marked.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the stored document"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: not_attended"
// @Router /api/registrations/{registrationID}/certificate [post]
func (c *DocumentController) Certificate(w http.ResponseWriter, r *http.Request) {
	c.generate(w, r, c.Service.Certificate)
}

// ODLetter godoc
// @Summary Generate an on-duty letter
// @Description Owner only.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the stored document"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/registrations/{registrationID}/od-letter [post]
func (c *DocumentController) ODLetter(w http.ResponseWriter, r *http.Request) {
	c.generate(w, r, c.Service.ODLetter)
}

func (c *DocumentController) generate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, registrationID, userID string) (*domain.Document, error)) {
	regID, ok := helpers.PathID(w, r, "registrationID")
	if !ok {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	doc, err := fn(r.Context(), regID, p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, doc)
}

// Download godoc
// @Summary Download a generated document
// @Description Owner only. Serves the stored body of a certificate (certificates/{id}.html) or on-duty letter (od-letters/{id}.txt).
// @Tags documents
// @Produce html
// @Produce plain
// @Security BearerAuth
// @Param folder path string true "certificates or od-letters"
// @Param file path string true "Registration ID with the document extension"
// @Success 200 {string} string "document body"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/documents/{folder}/{file} [get]
func (c *DocumentController) Download(w http.ResponseWriter, r *http.Request) {
	kind, rawID, err := domain.ParseDocumentKey(r.PathValue("folder"), r.PathValue("file"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "document not found")
		return
	}
	regID, err := uuid.Parse(rawID)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "document not found")
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	doc, err := c.Service.Download(r.Context(), regID.String(), p.UserID, kind)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc.Content)); err != nil {
		c.Logger.Warn("document write failed", "registration_id", doc.RegistrationID, "error", err)
	}
}
