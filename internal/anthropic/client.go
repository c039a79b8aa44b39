package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var (
	DefaultBaseURL  = "https://api.anthropic.com"
	DefaultVersion  = "2023-06-01"
	FeatureWebFetch = "web-fetch-2025-09-10"
)

// Client calls the beta Messages API through the official SDK. It keeps no
// per-request state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	betas      []string
	apiKey     func() string

	sdk sdk.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithVersion(version string) Option {
	return func(c *Client) {
		c.version = version
	}
}

func WithBetas(betas ...string) Option {
	return func(c *Client) {
		c.betas = betas
	}
}

// WithAPIKey pins a fixed key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = func() string { return key }
	}
}

// WithAPIKeyFunc resolves the key on every request.
func WithAPIKeyFunc(fn func() string) Option {
	return func(c *Client) {
		c.apiKey = fn
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		version:    DefaultVersion,
		betas:      []string{FeatureWebFetch},
		apiKey:     func() string { return os.Getenv("ANTHROPIC_API_KEY") },
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sdk = sdk.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithHTTPClient(c.httpClient),
		option.WithHeader("anthropic-version", c.version),
		// One call per extraction; a failed call is reported, not repeated.
		option.WithMaxRetries(0),
	)
	return c
}

// CreateMessage performs one non-streaming beta Messages API call. Non-2xx
// responses come back as *APIError.
func (c *Client) CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	params, err := c.newParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := c.sdk.Beta.Messages.New(ctx, params, option.WithAPIKey(c.apiKey()))
	if err != nil {
		var sdkErr *sdk.Error
		if errors.As(err, &sdkErr) {
			return nil, &APIError{StatusCode: sdkErr.StatusCode, Body: sdkErr.RawJSON(), err: err}
		}
		return nil, fmt.Errorf("error making request: %w", err)
	}
	return fromBetaMessage(msg)
}

func (c *Client) newParams(req *MessageRequest) (sdk.BetaMessageNewParams, error) {
	params := sdk.BetaMessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
	}
	for _, beta := range c.betas {
		params.Betas = append(params.Betas, sdk.AnthropicBeta(beta))
	}

	for _, m := range req.Messages {
		role := sdk.BetaMessageParamRoleUser
		if m.Role == RoleAssistant {
			role = sdk.BetaMessageParamRoleAssistant
		}
		params.Messages = append(params.Messages, sdk.BetaMessageParam{
			Role: role,
			Content: []sdk.BetaContentBlockParamUnion{
				{OfText: &sdk.BetaTextBlockParam{Text: m.Content}},
			},
		})
	}

	for _, t := range req.Tools {
		switch t.Type {
		case ToolTypeWebSearch:
			tool := &sdk.BetaWebSearchTool20250305Param{}
			if t.MaxUses > 0 {
				tool.MaxUses = sdk.Int(int64(t.MaxUses))
			}
			params.Tools = append(params.Tools, sdk.BetaToolUnionParam{OfWebSearchTool20250305: tool})
		case ToolTypeWebFetch:
			tool := &sdk.BetaWebFetchTool20250910Param{}
			if t.MaxUses > 0 {
				tool.MaxUses = sdk.Int(int64(t.MaxUses))
			}
			params.Tools = append(params.Tools, sdk.BetaToolUnionParam{OfWebFetchTool20250910: tool})
		default:
			return params, fmt.Errorf("unsupported tool type %q", t.Type)
		}
	}
	return params, nil
}

// fromBetaMessage copies the SDK message into our response types. Tool result
// blocks keep their raw payload so callers decode only what they use.
func fromBetaMessage(msg *sdk.BetaMessage) (*MessageResponse, error) {
	resp := &MessageResponse{
		ID:         msg.ID,
		Type:       string(msg.Type),
		Role:       string(msg.Role),
		Model:      string(msg.Model),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		Content: make([]ContentBlock, 0, len(msg.Content)),
	}
	for i, block := range msg.Content {
		if block.Type == BlockText {
			resp.Content = append(resp.Content, ContentBlock{Type: BlockText, Text: block.Text})
			continue
		}
		var cb ContentBlock
		if err := json.Unmarshal([]byte(block.RawJSON()), &cb); err != nil {
			return nil, fmt.Errorf("error decoding content block %d (%s): %w", i, block.Type, err)
		}
		resp.Content = append(resp.Content, cb)
	}
	return resp, nil
}
