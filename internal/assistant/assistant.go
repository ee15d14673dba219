// Package assistant proxies student questions to the Google generative
// language API. The API key stays server-side; browsers only ever talk to
// this proxy.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

var (
	ErrNotConfigured = errors.New("assistant API key not configured")
	ErrEmptyAnswer   = errors.New("assistant returned no answer")
)

// mentorPrompt frames every student question. Kept close to the tone the
// product ships with: terse competitive-programming style answers.
const mentorPrompt = `You are 'Baua AI', a smart, cool, and expert Coding Mentor.

YOUR CODING STYLE:
1. LeetCode/Competitive style: write short, clean, and efficient code.
2. No fluff: skip boilerplate unless necessary. Use simple variable names like 'seen', 'res', 'curr'.
3. Minimal comments: only comment on the tricky logic.

YOUR TONE:
1. Direct and to the point.
2. Use Markdown formatting.
3. Explain the logic in max 2 bullet points AFTER the code.

Now answer this Student Question: %s`

type Service struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewService(apiKey, model string, logger zerolog.Logger) *Service {
	return &Service{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// request/response shapes for the generateContent call.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ModelInfo describes one available generative model.
type ModelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
	Error  *apiError   `json:"error,omitempty"`
}

// Ask wraps the question in the mentor prompt and returns the first
// candidate's text.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if s.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(mentorPrompt, question)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		s.baseURL, url.PathEscape(s.model), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode assistant response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("assistant API error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyAnswer
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

// ListModels returns the models that support generateContent, mirroring the
// model-discovery check the maintainers run against the API.
func (s *Service) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/v1beta/models?key=%s", s.baseURL, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model list request failed: %w", err)
	}
	defer resp.Body.Close()

	var out listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("assistant API error %d: %s", out.Error.Code, out.Error.Message)
	}

	chatModels := make([]ModelInfo, 0, len(out.Models))
	for _, m := range out.Models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				chatModels = append(chatModels, m)
				break
			}
		}
	}

	return chatModels, nil
}
