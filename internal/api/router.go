package api

import (
	"embed"
	"html/template"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-summary/internal/auth"
	"research-summary/internal/config"
	"research-summary/internal/history"
	"research-summary/internal/logging"
	"research-summary/internal/research"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the services behind the HTTP surface. Research and History may be
// nil; the matching endpoints then report the feature as unavailable.
type Deps struct {
	Research *research.Service
	History  *history.Store
	Logger   *zap.Logger
	Pacing   research.Pacing
}

func (d *Deps) logger() *zap.Logger {
	if d == nil || d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func SetupRouter(cfg *config.Config, deps *Deps) *gin.Engine {
	if deps == nil {
		deps = &Deps{}
	}
	log := deps.logger()

	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(log))
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	subpath := cfg.Server.Subpath // "" or "/something", never a trailing slash
	shareTTL := time.Duration(cfg.Server.ShareTTLHours) * time.Hour

	root := subpath
	if root == "" {
		root = "/"
	}
	r.GET(root, indexHandler(subpath))
	if subpath != "" {
		r.GET(subpath+"/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, subpath)
		})
	}

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg, deps))

		group.POST("/api/search", SearchHandler(deps.Research, log))
		group.POST("/api/summarize", SummarizeHandler(deps.Research, log))
		group.POST("/api/parse", ParseHandler())

		group.GET("/api/research", ListResearchHandler(deps.History, log))
		group.GET("/api/research/:id", GetResearchHandler(deps.History, log))
		group.GET("/api/research/:id/export", ExportResearchHandler(deps.History, log))
		group.POST("/api/research/:id/share", ShareResearchHandler(deps.History, cfg.Server.ShareSecret, shareTTL, subpath, log))

		group.GET("/research/:id", ResearchPageHandler(deps.History, subpath, log))
		group.GET("/shared/:token", auth.ShareMiddleware(cfg.Server.ShareSecret), SharedPageHandler(deps.History, subpath, log))

		group.GET("/ws/research", WSResearchHandler(deps.Research, deps.Pacing, log))
	}
	return r
}

// joinPath builds an absolute URL path under subpath.
func joinPath(subpath string, elems ...string) string {
	return path.Join(append([]string{"/", subpath}, elems...)...)
}
