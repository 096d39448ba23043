package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	var got chatCompletionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "CandidateVerify", r.Header.Get("X-Title"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(chatCompletionsResponse{
			Choices: []chatChoice{{Message: struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			}{Role: "assistant", Content: `{"ok":true}`}}},
		})
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "google/gemini-2.5-flash", "CandidateVerify", "")

	reply, err := c.Ask(context.Background(), "system says", "user asks")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, reply)

	assert.Equal(t, "google/gemini-2.5-flash", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, message{Role: "system", Content: "system says"}, got.Messages[0])
	assert.Equal(t, message{Role: "user", Content: "user asks"}, got.Messages[1])
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	assert.Equal(t, 2000, got.MaxTokens)
}

func TestAskHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "", "", "")

	_, err := c.Ask(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openrouter http 500")
}

func TestAskNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "", "", "")

	_, err := c.Ask(context.Background(), "s", "u")
	require.EqualError(t, err, "no choices returned by model")
}

func TestAskEmptyKey(t *testing.T) {
	c := New("", "http://localhost:0", "", "", "")

	_, err := c.Ask(context.Background(), "s", "u")
	require.EqualError(t, err, "openrouter api key is empty")
}
