package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/auth"
	"github.com/Coder-vibhi/baua-lms/internal/models"
	"github.com/Coder-vibhi/baua-lms/internal/progress"
)

// ProgressService is the slice of progress tracking the HTTP layer needs.
type ProgressService interface {
	MarkVideoComplete(ctx context.Context, userID uuid.UUID, videoID, chapterID int64) (*models.CompletionResult, error)
	MarkRoadmapViewed(ctx context.Context, userID uuid.UUID, chapterID int64) (*models.CompletionResult, error)
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error)
}

type ProgressHandler struct {
	svc ProgressService
	log zerolog.Logger
}

func NewProgressHandler(svc ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{svc: svc, log: logger}
}

// MarkComplete handles POST /mark-complete. The credited user is always the
// authenticated one; a userId in the body is ignored so nobody can farm
// coins into another account.
func (h *ProgressHandler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		VideoID   int64 `json:"videoId"`
		ChapterID int64 `json:"chapterId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.VideoID <= 0 || req.ChapterID <= 0 {
		writeError(w, http.StatusBadRequest, "videoId and chapterId are required")
		return
	}

	result, err := h.svc.MarkVideoComplete(r.Context(), userID, req.VideoID, req.ChapterID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID.String()).Int64("video", req.VideoID).Msg("mark complete failed")
		writeError(w, http.StatusInternalServerError, "failed to record completion")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MarkRoadmapViewed handles POST /mark-roadmap-viewed.
func (h *ProgressHandler) MarkRoadmapViewed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		ChapterID int64 `json:"chapterId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ChapterID <= 0 {
		writeError(w, http.StatusBadRequest, "chapterId is required")
		return
	}

	result, err := h.svc.MarkRoadmapViewed(r.Context(), userID, req.ChapterID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID.String()).Int64("chapter", req.ChapterID).Msg("mark roadmap viewed failed")
		writeError(w, http.StatusInternalServerError, "failed to record roadmap view")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetUserProfile handles GET /user-profile/{userId}. Learners can only read
// their own profile.
func (h *ProgressHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	authedID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	requestedID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if requestedID != authedID {
		writeError(w, http.StatusForbidden, "cannot read another user's profile")
		return
	}

	up, err := h.svc.GetUserProfile(r.Context(), requestedID)
	if errors.Is(err, progress.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user", requestedID.String()).Msg("get profile failed")
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, up)
}
