package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"research-summary/internal/config"
	"research-summary/internal/history"
	"research-summary/internal/search"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config, deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		svc := deps.Research
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"search": gin.H{
				"configured": svc != nil && svc.CanSearch(),
				"maxResults": search.MaxResults,
				"enrich":     cfg.SerpAPI.Enrich,
			},
			"summarize": gin.H{
				"configured": svc != nil && svc.CanSummarize(),
				"model":      cfg.Gemini.Model,
			},
			"history": gin.H{
				"enabled":  deps.History != nil,
				"maxLimit": history.MaxListLimit,
			},
			"sharing": cfg.Server.ShareSecret != "",
		})
	}
}
