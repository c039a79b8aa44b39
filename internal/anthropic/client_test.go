package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fetchResponse = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-20250514",
	"stop_reason": "end_turn",
	"content": [
		{"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_fetch", "input": {"url": "https://example.com"}},
		{"type": "web_fetch_tool_result", "tool_use_id": "srvtoolu_1", "content": {
			"type": "web_fetch_result",
			"url": "https://example.com",
			"retrieved_at": "2025-09-10T12:00:00Z",
			"content": {
				"type": "document",
				"title": "Example Domain",
				"source": {"type": "text", "media_type": "text/plain", "data": "Example body"}
			}
		}},
		{"type": "text", "text": "# Example"}
	],
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

// sentRequest is the request body as it appears on the wire.
type sentRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
	Tools []Tool `json:"tools"`
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestCreateMessage_SendsHeadersAndBody(t *testing.T) {
	var got sentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, DefaultVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, FeatureWebFetch, r.Header.Get("anthropic-beta"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		writeJSON(w, http.StatusOK, fetchResponse)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("secret"), WithHTTPClient(srv.Client()))
	resp, err := c.CreateMessage(context.Background(), &MessageRequest{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 5000,
		Messages: []Message{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "{"},
		},
		Tools: []Tool{
			{Type: ToolTypeWebSearch, Name: ToolNameWebSearch, MaxUses: 3},
			{Type: ToolTypeWebFetch, Name: ToolNameWebFetch, MaxUses: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", got.Model)
	assert.Equal(t, 5000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleUser, got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "hello", got.Messages[0].Content[0].Text)
	assert.Equal(t, RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "{", got.Messages[1].Content[0].Text)
	assert.Equal(t, []Tool{
		{Type: ToolTypeWebSearch, Name: ToolNameWebSearch, MaxUses: 3},
		{Type: ToolTypeWebFetch, Name: ToolNameWebFetch, MaxUses: 5},
	}, got.Tools)

	assert.Equal(t, "msg_1", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 5, resp.Usage.OutputTokens)
	require.Len(t, resp.Content, 3)
	assert.Equal(t, BlockServerToolUse, resp.Content[0].Type)
	assert.Equal(t, "# Example", resp.Content[2].Text)

	fetch, err := resp.Content[1].WebFetchResult()
	require.NoError(t, err)
	require.NotNil(t, fetch)
	assert.Equal(t, ResultWebFetch, fetch.Type)
	assert.Equal(t, "https://example.com", fetch.URL)
	assert.Equal(t, "Example Domain", fetch.Content.Title)
	assert.Equal(t, "Example body", fetch.Content.Source.Data)

	none, err := resp.Content[2].WebFetchResult()
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreateMessage_ReadsKeyPerRequest(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("x-api-key"))
		writeJSON(w, http.StatusOK, `{"content": []}`)
	}))
	defer srv.Close()

	key := "one"
	c := NewClient(WithBaseURL(srv.URL), WithAPIKeyFunc(func() string { return key }))
	_, err := c.CreateMessage(context.Background(), &MessageRequest{})
	require.NoError(t, err)
	key = "two"
	_, err = c.CreateMessage(context.Background(), &MessageRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, keys)
}

func TestCreateMessage_NonSuccessStatusIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"))
	_, err := c.CreateMessage(context.Background(), &MessageRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	kind, msg := apiErr.Detail()
	assert.Equal(t, "rate_limit_error", kind)
	assert.Equal(t, "slow down", msg)
	assert.Contains(t, apiErr.Error(), "429")
	assert.NotNil(t, errors.Unwrap(apiErr))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCreateMessage_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"content": [oops`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"))
	_, err := c.CreateMessage(context.Background(), &MessageRequest{})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCreateMessage_UnsupportedTool(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"))
	_, err := c.CreateMessage(context.Background(), &MessageRequest{
		Tools: []Tool{{Type: "code_execution_20250522", Name: "code_execution"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code_execution_20250522")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAPIError_PlainBody(t *testing.T) {
	err := &APIError{StatusCode: 502, Body: "bad gateway"}
	kind, _ := err.Detail()
	assert.Empty(t, kind)
	assert.Equal(t, "anthropic api error (status 502)", err.Error())
}
