package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", "test-model", 256)
	c.baseURL = srv.URL
	return c
}

func TestCompleteReturnsTextContent(t *testing.T) {
	var gotReq apiRequest
	var gotAPIKey, gotVersion string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(apiResponse{
			Content: []apiContentBlock{
				{Type: "text", Text: "first "},
				{Type: "text", Text: "second"},
			},
		})
	})

	text, err := c.Complete(context.Background(), "be helpful", "write an email")
	require.NoError(t, err)

	assert.Equal(t, "first second", text)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.NotEmpty(t, gotVersion)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 256, gotReq.MaxTokens)
	assert.Equal(t, "be helpful", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestCompleteAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"type":    "rate_limit_error",
				"message": "rate limited",
			},
		})
	})

	_, err := c.Complete(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("key", "", 0)
	assert.Equal(t, defaultModel, c.model)
	assert.Equal(t, defaultMaxTokens, c.maxTokens)
}
