package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"llm-scraper/internal/anthropic"
	"llm-scraper/internal/extract"
	"llm-scraper/internal/metrics"
)

const genericFailureMessage = "Failed to scrape the website. Please try again later."

// Extractor runs one extraction end to end.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (*extract.Result, error)
}

// POST /api/scrape
func ScrapeHandler(svc Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := zerolog.Ctx(ctx)

		var req extract.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn().Err(err).Msg("invalid scrape request body")
			recordOutcome(req, "invalid_input")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		logger.Info().
			Str("mode", string(req.Mode)).
			Str("url", req.URL).
			Str("search_query", req.SearchQuery).
			Bool("has_schema", req.Schema != "").
			Bool("has_custom_prompt", req.CustomPrompt != "").
			Msg("scrape request")

		result, err := svc.Extract(ctx, req)
		if err != nil {
			status, message, outcome := classifyError(err)
			if outcome == "failure" {
				logger.Error().Err(err).Msg("scrape failed")
			} else {
				logger.Warn().Err(err).Int("status", status).Msg("scrape rejected")
			}
			recordOutcome(req, outcome)
			c.JSON(status, gin.H{"error": message})
			return
		}

		recordOutcome(req, "success")
		c.JSON(http.StatusOK, result)
	}
}

// classifyError maps an extraction error to the status, the caller-facing
// message and the metrics outcome. Internal detail never reaches the message.
func classifyError(err error) (int, string, string) {
	if errors.Is(err, extract.ErrMissingTarget) || errors.Is(err, extract.ErrInvalidMode) {
		return http.StatusBadRequest, err.Error(), "invalid_input"
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, fmt.Sprintf("API error: %d", apiErr.StatusCode), "upstream_error"
	}
	return http.StatusInternalServerError, genericFailureMessage, "failure"
}

func recordOutcome(req extract.Request, outcome string) {
	metrics.ExtractionsTotal.WithLabelValues(modeLabel(req.Mode), targetLabel(req), outcome).Inc()
}

// modeLabel keeps label cardinality bounded whatever the client sends.
func modeLabel(mode extract.Mode) string {
	switch extract.Mode(strings.ToLower(string(mode))) {
	case "", extract.ModeJSON:
		return string(extract.ModeJSON)
	case extract.ModeMarkdown:
		return string(extract.ModeMarkdown)
	default:
		return "invalid"
	}
}

func targetLabel(req extract.Request) string {
	switch {
	case strings.TrimSpace(req.SearchQuery) != "":
		return "search"
	case strings.TrimSpace(req.URL) != "":
		return "url"
	default:
		return "none"
	}
}
