package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-scraper/internal/config"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"anthropic": gin.H{
				"model":              cfg.Anthropic.Model,
				"version":            cfg.Anthropic.Version,
				"max_tokens":         cfg.Anthropic.MaxTokens,
				"api_key_configured": cfg.APIKey() != "",
			},
			"tools":      cfg.Tools,
			"extraction": cfg.Extraction,
		})
	}
}

// GET /
func indexHandler(subpath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{"subpath": subpath})
	}
}
