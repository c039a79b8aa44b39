package extract

import (
	"errors"
	"strings"
)

type Mode string

const (
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

var (
	ErrMissingTarget = errors.New("URL or search query is required")
	ErrInvalidMode   = errors.New(`mode must be "markdown" or "json"`)
)

// Request is one extraction job. Exactly one target drives the prompt; when
// both are given the search query wins and URL is only echoed back.
type Request struct {
	URL          string `json:"url"`
	SearchQuery  string `json:"searchQuery"`
	Mode         Mode   `json:"mode"`
	Schema       string `json:"schema"`
	CustomPrompt string `json:"prompt"`
}

// Normalize defaults the mode to JSON and rejects requests without a target
// or with an unknown mode. Field values are kept exactly as sent: a schema or
// prompt reaches the provider and the echo fields byte for byte.
func (r *Request) Normalize() error {
	if r.URL == "" && r.SearchQuery == "" {
		return ErrMissingTarget
	}
	switch Mode(strings.ToLower(string(r.Mode))) {
	case "":
		r.Mode = ModeJSON
	case ModeMarkdown:
		r.Mode = ModeMarkdown
	case ModeJSON:
		r.Mode = ModeJSON
	default:
		return ErrInvalidMode
	}
	return nil
}

// IsSearch reports whether the request targets a search query.
func (r *Request) IsSearch() bool {
	return r.SearchQuery != ""
}

// TargetKind is "search" or "url", for logs and metrics.
func (r *Request) TargetKind() string {
	if r.IsSearch() {
		return "search"
	}
	return "url"
}

// FetchedDocument is one document the provider's fetch tool retrieved.
type FetchedDocument struct {
	Type        string  `json:"type"`
	URL         string  `json:"url"`
	RetrievedAt string  `json:"retrieved_at"`
	Title       *string `json:"title"`
	ContentType string  `json:"content_type"`
	Content     string  `json:"content"`
}

// Result is what the scrape endpoint returns on success.
type Result struct {
	Success      bool              `json:"success"`
	Mode         Mode              `json:"mode"`
	RawContent   []FetchedDocument `json:"raw_content"`
	ClaudeResult string            `json:"claude_result"`
	OriginalURL  string            `json:"original_url"`
	SearchQuery  *string           `json:"search_query"`
	SchemaUsed   *string           `json:"schema_used"`
	CustomPrompt *string           `json:"custom_prompt"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
