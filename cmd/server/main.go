package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"llm-scraper/internal/anthropic"
	"llm-scraper/internal/api"
	"llm-scraper/internal/config"
	"llm-scraper/internal/extract"
	"llm-scraper/internal/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.json (defaults and environment only when empty)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	logging.Init(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	timeout := time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second
	client := anthropic.NewClient(
		anthropic.WithBaseURL(cfg.Anthropic.BaseURL),
		anthropic.WithVersion(cfg.Anthropic.Version),
		anthropic.WithBetas(cfg.Anthropic.Betas...),
		anthropic.WithAPIKeyFunc(cfg.APIKey),
		// The context deadline is the real bound; this only catches a
		// provider that stops reading mid-body.
		anthropic.WithHTTPClient(&http.Client{Timeout: timeout + 10*time.Second}),
	)
	svc := extract.NewService(client, extract.Options{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Tools: extract.ToolLimits{
			FetchMaxUses:  cfg.Tools.FetchMaxUses,
			SearchMaxUses: cfg.Tools.SearchMaxUses,
		},
		Timeout: timeout,
	})

	if cfg.APIKey() == "" {
		log.Warn().Str("env", cfg.Anthropic.APIKeyEnv).Msg("API key not set; provider calls will fail until it is")
	}

	r := api.SetupRouter(cfg, svc)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("subpath", cfg.Server.Subpath).
		Str("model", cfg.Anthropic.Model).
		Dur("timeout", timeout).
		Msg("Starting server")
	if err := r.Run(addr); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}
