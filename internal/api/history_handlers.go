package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-summary/internal/auth"
	"research-summary/internal/history"
	"research-summary/internal/summary"
)

func historyDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
}

// loadRecord writes the error response itself and returns nil when the
// record cannot be served.
func loadRecord(c *gin.Context, store *history.Store, id string, log *zap.Logger) *history.Record {
	rec, err := store.Get(c.Request.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Research not found"})
		return nil
	}
	if err != nil {
		log.Error("failed to load research", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load research"})
		return nil
	}
	return rec
}

// GET /api/research?limit=N
func ListResearchHandler(store *history.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			historyDisabled(c)
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(history.DefaultListLimit)))
		if err != nil {
			limit = history.DefaultListLimit
		}
		recs, err := store.List(c.Request.Context(), limit)
		if err != nil {
			log.Error("failed to list research", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list research"})
			return
		}
		items := make([]gin.H, 0, len(recs))
		for _, r := range recs {
			items = append(items, gin.H{
				"id":        r.ID,
				"query":     r.Query,
				"model":     r.Model,
				"createdAt": r.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"research": items})
	}
}

// GET /api/research/:id
func GetResearchHandler(store *history.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			historyDisabled(c)
			return
		}
		rec := loadRecord(c, store, c.Param("id"), log)
		if rec == nil {
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// GET /api/research/:id/export?format=markdown|text
func ExportResearchHandler(store *history.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			historyDisabled(c)
			return
		}
		format := c.DefaultQuery("format", "markdown")
		if format != "markdown" && format != "text" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be markdown or text"})
			return
		}
		rec := loadRecord(c, store, c.Param("id"), log)
		if rec == nil {
			return
		}
		sources, err := exportSources(rec)
		if err != nil {
			log.Error("failed to decode sources", zap.String("id", rec.ID), zap.Error(err))
		}

		var body, ext, contentType string
		switch format {
		case "markdown":
			body, err = summary.Markdown(rec.Query, rec.Formatted(), sources)
			if err != nil {
				log.Error("markdown export failed", zap.String("id", rec.ID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export research"})
				return
			}
			ext, contentType = "md", "text/markdown; charset=utf-8"
		default:
			body = summary.Text(rec.Query, rec.Formatted(), sources)
			ext, contentType = "txt", "text/plain; charset=utf-8"
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="research-summary-%s.%s"`, shortID(rec.ID), ext))
		c.Data(http.StatusOK, contentType, []byte(body))
	}
}

func exportSources(rec *history.Record) ([]summary.Source, error) {
	results, err := rec.SourceList()
	if err != nil {
		return nil, err
	}
	out := make([]summary.Source, 0, len(results))
	for _, r := range results {
		out = append(out, summary.Source{Title: r.Title, Link: r.Link})
	}
	return out, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// POST /api/research/:id/share
func ShareResearchHandler(store *history.Store, secret string, ttl time.Duration, subpath string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			historyDisabled(c)
			return
		}
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sharing is disabled"})
			return
		}
		rec := loadRecord(c, store, c.Param("id"), log)
		if rec == nil {
			return
		}
		token, err := auth.GenerateShareToken(secret, rec.ID, ttl)
		if err != nil {
			log.Error("failed to sign share token", zap.String("id", rec.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share link"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"url":       joinPath(subpath, "shared", token),
			"expiresAt": time.Now().UTC().Add(ttl),
		})
	}
}
