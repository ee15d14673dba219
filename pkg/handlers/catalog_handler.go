package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/catalog"
	"github.com/Coder-vibhi/baua-lms/internal/models"
)

// CatalogService is the slice of the catalog the HTTP layer needs.
type CatalogService interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.CourseDetails, error)
	ListChapterVideos(ctx context.Context, chapterID int64) ([]models.Video, error)
	CreateCourse(ctx context.Context, title, description string, imageURL, playlistURL *string) (*models.Course, error)
	CreateChapter(ctx context.Context, courseID int64, title, description string, roadmapImageURL *string) (*models.Chapter, error)
	CreateVideo(ctx context.Context, chapterID int64, title, videoURL string, sequenceNumber int) (*models.Video, error)
}

type CatalogHandler struct {
	svc CatalogService
	log zerolog.Logger
}

func NewCatalogHandler(svc CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: logger}
}

// ListCourses handles GET /courses.
func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.svc.ListCourses(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list courses failed")
		writeError(w, http.StatusInternalServerError, "failed to load courses")
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{id}, returning the course with its
// chapters.
func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.svc.GetCourse(r.Context(), id)
	if errors.Is(err, catalog.ErrCourseNotFound) {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("course", id).Msg("get course failed")
		writeError(w, http.StatusInternalServerError, "failed to load course")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// ListChapterVideos handles GET /chapters/{id}/videos.
func (h *CatalogHandler) ListChapterVideos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	videos, err := h.svc.ListChapterVideos(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("chapter", id).Msg("list videos failed")
		writeError(w, http.StatusInternalServerError, "failed to load videos")
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// CreateCourse handles POST /admin/add-course.
func (h *CatalogHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		ImageURL    *string `json:"image_url"`
		PlaylistURL *string `json:"playlist_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	course, err := h.svc.CreateCourse(r.Context(), req.Title, req.Description, req.ImageURL, req.PlaylistURL)
	if err != nil {
		h.log.Error().Err(err).Msg("create course failed")
		writeError(w, http.StatusInternalServerError, "failed to create course")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// CreateChapter handles POST /admin/add-chapter.
func (h *CatalogHandler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID        int64   `json:"course_id"`
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		RoadmapImageURL *string `json:"roadmap_image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.CourseID <= 0 || req.Title == "" {
		writeError(w, http.StatusBadRequest, "course_id and title are required")
		return
	}

	chapter, err := h.svc.CreateChapter(r.Context(), req.CourseID, req.Title, req.Description, req.RoadmapImageURL)
	if err != nil {
		h.log.Error().Err(err).Int64("course", req.CourseID).Msg("create chapter failed")
		writeError(w, http.StatusInternalServerError, "failed to create chapter")
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

// CreateVideo handles POST /admin/add-video.
func (h *CatalogHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChapterID      int64  `json:"chapter_id"`
		Title          string `json:"title"`
		VideoURL       string `json:"video_url"`
		SequenceNumber int    `json:"sequence_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.ChapterID <= 0 || req.Title == "" || req.VideoURL == "" {
		writeError(w, http.StatusBadRequest, "chapter_id, title and video_url are required")
		return
	}

	video, err := h.svc.CreateVideo(r.Context(), req.ChapterID, req.Title, req.VideoURL, req.SequenceNumber)
	if err != nil {
		h.log.Error().Err(err).Int64("chapter", req.ChapterID).Msg("create video failed")
		writeError(w, http.StatusInternalServerError, "failed to create video")
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// pathID parses the numeric {name} path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
