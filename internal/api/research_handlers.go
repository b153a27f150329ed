package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-summary/internal/research"
	"research-summary/internal/summary"
)

type searchRequest struct {
	Query string `json:"query"`
}

// POST /api/search
func SearchHandler(svc *research.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil || !svc.CanSearch() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SerpAPI key is missing"})
			return
		}
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
			return
		}

		results, err := svc.Search(c.Request.Context(), req.Query)
		if err != nil {
			log.Error("search failed", zap.String("query", req.Query), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch search results"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

// POST /api/summarize
func SummarizeHandler(svc *research.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil || !svc.CanSummarize() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Gemini API key is missing"})
			return
		}
		var req research.SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Validate() != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Search results and query are required"})
			return
		}

		resp, err := svc.Summarize(c.Request.Context(), req)
		if err != nil {
			log.Error("summarize failed", zap.String("query", req.Query), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate summary"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

type parseRequest struct {
	Summary string `json:"summary"`
}

// POST /api/parse
func ParseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req parseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		c.JSON(http.StatusOK, summary.Parse(req.Summary))
	}
}
