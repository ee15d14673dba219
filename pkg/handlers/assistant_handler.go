package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Coder-vibhi/baua-lms/internal/assistant"
	"github.com/Coder-vibhi/baua-lms/internal/auth"
	"github.com/Coder-vibhi/baua-lms/internal/metrics"
	"github.com/Coder-vibhi/baua-lms/internal/ratelimit"
)

const maxQuestionLength = 2000

// AssistantService is the slice of the AI proxy the HTTP layer needs.
type AssistantService interface {
	Ask(ctx context.Context, question string) (string, error)
	ListModels(ctx context.Context) ([]assistant.ModelInfo, error)
}

type AssistantHandler struct {
	svc     AssistantService
	limiter *ratelimit.Limiter
	limits  ratelimit.AssistantLimits
	log     zerolog.Logger
}

func NewAssistantHandler(svc AssistantService, limiter *ratelimit.Limiter, limits ratelimit.AssistantLimits, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{svc: svc, limiter: limiter, limits: limits, log: logger}
}

// Chat handles POST /assistant/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(req.Question) > maxQuestionLength {
		writeError(w, http.StatusUnprocessableEntity, "question too long")
		return
	}

	if err := h.limiter.CheckAssistant(r.Context(), h.limits, userID.String(), remoteIP(r)); err != nil {
		metrics.AssistantRequests.WithLabelValues("rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "too many questions, slow down")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question)
	if errors.Is(err, assistant.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}
	if err != nil {
		metrics.AssistantRequests.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("user", userID.String()).Msg("assistant request failed")
		writeError(w, http.StatusBadGateway, "assistant is unavailable right now")
		return
	}

	metrics.AssistantRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// ListModels handles GET /assistant/models.
func (h *AssistantHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.ListModels(r.Context())
	if errors.Is(err, assistant.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("model list failed")
		writeError(w, http.StatusBadGateway, "assistant is unavailable right now")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

// remoteIP strips the port from RemoteAddr for rate-limit keying.
func remoteIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}
