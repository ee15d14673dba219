package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewService("test-key", "gemini-2.5-flash", zerolog.Nop())
	s.baseURL = srv.URL
	return s
}

func TestAskReturnsFirstCandidate(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "use a hash map"}},
				}},
			},
		})
	})

	answer, err := s.Ask(context.Background(), "how do I solve two sum?")
	require.NoError(t, err)
	assert.Equal(t, "use a hash map", answer)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Baua AI")
	assert.Contains(t, prompt, "how do I solve two sum?")
}

func TestAskSurfacesAPIError(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "API key not valid"},
		})
	})

	_, err := s.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "API key not valid"))
}

func TestAskEmptyCandidates(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	_, err := s.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestAskWithoutKey(t *testing.T) {
	s := NewService("", "gemini-2.5-flash", zerolog.Nop())
	_, err := s.Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestListModelsFiltersToChatModels(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"models": []map[string]interface{}{
				{"name": "models/gemini-2.5-flash", "supportedGenerationMethods": []string{"generateContent"}},
				{"name": "models/embedding-001", "supportedGenerationMethods": []string{"embedContent"}},
				{"name": "models/gemini-2.5-pro", "supportedGenerationMethods": []string{"countTokens", "generateContent"}},
			},
		})
	})

	got, err := s.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "models/gemini-2.5-flash", got[0].Name)
	assert.Equal(t, "models/gemini-2.5-pro", got[1].Name)
}
