package api

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-summary/internal/history"
	"research-summary/internal/research"
	"research-summary/internal/search"
	"research-summary/internal/summary"
)

var templateFuncs = template.FuncMap{
	// model output is rendered as trusted markup
	"trusted": func(s string) template.HTML { return template.HTML(s) },
	"inc":     func(i int) int { return i + 1 },
	"date":    func(t time.Time) string { return t.Format("2 Jan 2006 15:04") },
}

type pageSection struct {
	Title   string
	Items   []summary.Item
	Ordered bool
}

type summaryPage struct {
	Subpath   string
	ID        string
	Query     string
	Model     string
	CreatedAt time.Time
	Overview  string
	Sections  []pageSection
	Sources   []search.Result
	Shared    bool
}

func newSummaryPage(rec *history.Record, subpath string, shared bool) summaryPage {
	f := rec.Formatted()
	sources, _ := rec.SourceList()
	return summaryPage{
		Subpath:   subpath,
		ID:        rec.ID,
		Query:     rec.Query,
		Model:     rec.Model,
		CreatedAt: rec.CreatedAt,
		Overview:  f.Overview,
		Sections: []pageSection{
			{Title: summary.Titles[summary.HeaderCoreInsights], Items: f.CoreInsights},
			{Title: summary.Titles[summary.HeaderGaps], Items: f.Gaps},
			{Title: summary.Titles[summary.HeaderViewpoints], Items: f.Viewpoints},
			{Title: summary.Titles[summary.HeaderIdeas], Items: f.Ideas, Ordered: true},
		},
		Sources: sources,
		Shared:  shared,
	}
}

// GET /
func indexHandler(subpath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"subpath": subpath,
			"steps":   research.StepNames,
		})
	}
}

func renderRecordPage(c *gin.Context, store *history.Store, id, subpath string, shared bool, log *zap.Logger) {
	rec, err := store.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			log.Error("failed to load research page", zap.String("id", id), zap.Error(err))
		}
		c.String(http.StatusNotFound, "Research not found")
		return
	}
	c.HTML(http.StatusOK, "summary.html", newSummaryPage(rec, subpath, shared))
}

// GET /research/:id
func ResearchPageHandler(store *history.Store, subpath string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.String(http.StatusServiceUnavailable, "history is disabled")
			return
		}
		renderRecordPage(c, store, c.Param("id"), subpath, false, log)
	}
}

// GET /shared/:token, behind auth.ShareMiddleware
func SharedPageHandler(store *history.Store, subpath string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.String(http.StatusServiceUnavailable, "history is disabled")
			return
		}
		renderRecordPage(c, store, c.GetString("recordId"), subpath, true, log)
	}
}
