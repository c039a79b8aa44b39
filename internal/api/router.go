package api

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llm-scraper/internal/config"
	"llm-scraper/internal/web"
)

func SetupRouter(cfg *config.Config, svc Extractor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), Metrics())
	subpath := cfg.Server.Subpath // e.g. "/scraper" or empty, never a trailing '/'

	r.SetHTMLTemplate(web.Templates())
	r.GET(path.Join("/", subpath), indexHandler(subpath))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))
		group.GET("/metrics", gin.WrapH(promhttp.Handler()))

		group.POST("/api/scrape", ScrapeHandler(svc))
	}
	return r
}
