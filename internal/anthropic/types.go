package anthropic

import (
	"encoding/json"
	"fmt"
)

// Server tool type identifiers understood by the Messages API.
const (
	ToolTypeWebFetch  = "web_fetch_20250910"
	ToolTypeWebSearch = "web_search_20250305"

	ToolNameWebFetch  = "web_fetch"
	ToolNameWebSearch = "web_search"
)

// Content block types seen in responses.
const (
	BlockText               = "text"
	BlockServerToolUse      = "server_tool_use"
	BlockWebFetchToolResult = "web_fetch_tool_result"
	BlockWebSearchResult    = "web_search_tool_result"

	ResultWebFetch      = "web_fetch_result"
	ResultWebFetchError = "web_fetch_tool_error"
	ResultDocument      = "document"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one plain-text conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool is a server-side tool grant. The provider runs it; we only bound it.
type Tool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type MessageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	Tools     []Tool    `json:"tools,omitempty"`
}

type MessageResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ContentBlock is a union of the response block shapes. Content stays raw
// because its shape depends on Type.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// WebFetchResult is the payload of a web_fetch_tool_result block. Type is
// either web_fetch_result or web_fetch_tool_error.
type WebFetchResult struct {
	Type        string         `json:"type"`
	URL         string         `json:"url"`
	RetrievedAt string         `json:"retrieved_at"`
	Content     *DocumentBlock `json:"content,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
}

type DocumentBlock struct {
	Type   string          `json:"type"`
	Title  string          `json:"title,omitempty"`
	Source *DocumentSource `json:"source,omitempty"`
}

type DocumentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// WebFetchResult decodes the block's content. It returns nil, nil for
// blocks that are not web fetch results.
func (b ContentBlock) WebFetchResult() (*WebFetchResult, error) {
	if b.Type != BlockWebFetchToolResult || len(b.Content) == 0 {
		return nil, nil
	}
	var r WebFetchResult
	if err := json.Unmarshal(b.Content, &r); err != nil {
		return nil, fmt.Errorf("decode web fetch result: %w", err)
	}
	return &r, nil
}
