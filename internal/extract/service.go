package extract

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"llm-scraper/internal/anthropic"
	"llm-scraper/internal/logging"
	"llm-scraper/internal/metrics"
)

// MessageCreator is the slice of the provider client the service needs.
type MessageCreator interface {
	CreateMessage(ctx context.Context, req *anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

type Options struct {
	Model     string
	MaxTokens int
	Tools     ToolLimits
	// Timeout bounds the whole provider round trip. Zero means no bound
	// beyond the caller's context.
	Timeout time.Duration
}

// Service runs extractions. It holds no per-request state.
type Service struct {
	client MessageCreator
	opts   Options
}

func NewService(client MessageCreator, opts Options) *Service {
	return &Service{client: client, opts: opts}
}

// Extract validates req, makes exactly one provider call and shapes the
// answer. Failures return no partial result. Provider status errors come
// back wrapping *anthropic.APIError.
func (s *Service) Extract(ctx context.Context, req Request) (*Result, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Str("mode", string(req.Mode)).
		Str("target", req.TargetKind()).
		Logger()

	prompt, tools := BuildPrompt(req, s.opts.Tools)
	prefill := PrefillJSON(req.Mode)
	logger.Debug().
		Str("prompt", prompt).
		Bool("has_schema", req.Schema != "").
		Bool("has_custom_prompt", req.CustomPrompt != "").
		Msg("calling provider")

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.CreateMessage(ctx, &anthropic.MessageRequest{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		Messages:  buildMessages(prompt, prefill),
		Tools:     tools,
	})
	elapsed := time.Since(start)

	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			metrics.UpstreamDuration.WithLabelValues(strconv.Itoa(apiErr.StatusCode)).Observe(elapsed.Seconds())
			logger.Error().
				Int("status", apiErr.StatusCode).
				Str("body", logging.Truncate(apiErr.Body, 500)).
				Msg("provider returned an error")
		} else {
			metrics.UpstreamDuration.WithLabelValues("error").Observe(elapsed.Seconds())
		}
		return nil, fmt.Errorf("create message: %w", err)
	}
	metrics.UpstreamDuration.WithLabelValues("ok").Observe(elapsed.Seconds())

	text, docs := collectResponse(resp.Content, &logger)
	if prefill {
		text = RepairJSONPrefix(text)
	}
	metrics.FetchedDocumentsTotal.Add(float64(len(docs)))

	logger.Info().
		Dur("elapsed", elapsed).
		Int("documents", len(docs)).
		Int("output_tokens", resp.Usage.OutputTokens).
		Str("stop_reason", resp.StopReason).
		Msg("extraction finished")

	originalURL := req.URL
	if originalURL == "" {
		originalURL = req.SearchQuery
	}

	return &Result{
		Success:      true,
		Mode:         req.Mode,
		RawContent:   docs,
		ClaudeResult: text,
		OriginalURL:  originalURL,
		SearchQuery:  optional(req.SearchQuery),
		SchemaUsed:   optional(req.Schema),
		CustomPrompt: optional(req.CustomPrompt),
	}, nil
}
