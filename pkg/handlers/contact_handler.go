package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/models"
)

// ContactService stores contact submissions and notifies the admin.
type ContactService interface {
	SubmitContact(ctx context.Context, name, email, body string) (*models.ContactMessage, error)
}

type ContactHandler struct {
	svc ContactService
	log zerolog.Logger
}

func NewContactHandler(svc ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{svc: svc, log: logger}
}

// Submit handles POST /contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "name, email and message are required")
		return
	}

	msg, err := h.svc.SubmitContact(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		h.log.Error().Err(err).Msg("contact submission failed")
		writeError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Thanks for reaching out! We'll get back to you soon.",
		"id":      msg.ID.String(),
	})
}
