package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Coder-vibhi/baua-lms/internal/auth"
	"github.com/Coder-vibhi/baua-lms/internal/models"
)

type stubProgress struct {
	result    *models.CompletionResult
	profile   *models.UserProgress
	err       error
	lastUser  uuid.UUID
	lastVideo int64
}

func (s *stubProgress) MarkVideoComplete(ctx context.Context, userID uuid.UUID, videoID, chapterID int64) (*models.CompletionResult, error) {
	s.lastUser, s.lastVideo = userID, videoID
	return s.result, s.err
}

func (s *stubProgress) MarkRoadmapViewed(ctx context.Context, userID uuid.UUID, chapterID int64) (*models.CompletionResult, error) {
	s.lastUser = userID
	return s.result, s.err
}

func (s *stubProgress) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.UserProgress, error) {
	return s.profile, s.err
}

func newProgressRouter(stub *stubProgress) *mux.Router {
	h := NewProgressHandler(stub, zerolog.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/mark-complete", h.MarkComplete).Methods("POST")
	r.HandleFunc("/mark-roadmap-viewed", h.MarkRoadmapViewed).Methods("POST")
	r.HandleFunc("/user-profile/{userId}", h.GetUserProfile).Methods("GET")
	return r
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestMarkComplete(t *testing.T) {
	userID := uuid.New()
	stub := &stubProgress{result: &models.CompletionResult{
		Message: "Video Completed! +1 Coin", CoinsAdded: 1, NewBalance: 5,
	}}

	req := authed(httptest.NewRequest("POST", "/mark-complete",
		bytes.NewBufferString(`{"videoId":7,"chapterId":3}`)), userID)
	rec := httptest.NewRecorder()

	newProgressRouter(stub).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, stub.lastUser, "credited user comes from the token")
	assert.Equal(t, int64(7), stub.lastVideo)

	var got models.CompletionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.CoinsAdded)
	assert.Equal(t, int64(5), got.NewBalance)
}

func TestMarkCompleteRequiresAuth(t *testing.T) {
	req := httptest.NewRequest("POST", "/mark-complete", bytes.NewBufferString(`{"videoId":7,"chapterId":3}`))
	rec := httptest.NewRecorder()
	newProgressRouter(&stubProgress{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkCompleteValidation(t *testing.T) {
	req := authed(httptest.NewRequest("POST", "/mark-complete", bytes.NewBufferString(`{"videoId":0}`)), uuid.New())
	rec := httptest.NewRecorder()
	newProgressRouter(&stubProgress{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkRoadmapViewed(t *testing.T) {
	userID := uuid.New()
	stub := &stubProgress{result: &models.CompletionResult{
		Message: "Roadmap Unlocked! +1 Coin", CoinsAdded: 1, NewBalance: 2,
	}}

	req := authed(httptest.NewRequest("POST", "/mark-roadmap-viewed",
		bytes.NewBufferString(`{"chapterId":3}`)), userID)
	rec := httptest.NewRecorder()

	newProgressRouter(stub).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, stub.lastUser)
}

func TestGetUserProfileOwn(t *testing.T) {
	userID := uuid.New()
	stub := &stubProgress{profile: &models.UserProgress{
		Profile:        models.Profile{ID: userID, Name: "Vibhi", Coins: 42},
		Progress:       60,
		CompletedCount: 12,
	}}

	req := authed(httptest.NewRequest("GET", "/user-profile/"+userID.String(), nil), userID)
	rec := httptest.NewRecorder()

	newProgressRouter(stub).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.UserProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 60, got.Progress)
	assert.Equal(t, int64(42), got.Coins)
}

func TestGetUserProfileOfAnotherUserForbidden(t *testing.T) {
	req := authed(httptest.NewRequest("GET", "/user-profile/"+uuid.NewString(), nil), uuid.New())
	rec := httptest.NewRecorder()
	newProgressRouter(&stubProgress{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
