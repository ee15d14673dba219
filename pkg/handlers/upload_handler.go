package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/storage"
)

// Uploader issues presigned upload tickets for course media.
type Uploader interface {
	NewUploadTicket(ctx context.Context, kind, fileName string) (*storage.UploadTicket, error)
}

type UploadHandler struct {
	svc Uploader
	log zerolog.Logger
}

func NewUploadHandler(svc Uploader, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, log: logger}
}

// RequestUpload handles POST /admin/uploads. The admin panel PUTs the file
// to the returned URL, then saves public_url into the course or chapter
// form.
func (h *UploadHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}

	var req struct {
		Kind     string `json:"kind"` // "course" or "roadmap"
		FileName string `json:"file_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	ticket, err := h.svc.NewUploadTicket(r.Context(), req.Kind, req.FileName)
	if err != nil {
		h.log.Error().Err(err).Msg("upload ticket failed")
		writeError(w, http.StatusInternalServerError, "failed to create upload URL")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}
