package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/electionwatch/candidate-dashboard/internal/analytics"
	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/ingestion"
	"github.com/electionwatch/candidate-dashboard/internal/models"
	"github.com/electionwatch/candidate-dashboard/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	noDataMessage      = "No data available for the selected filters."
	noCommentsMessage  = "No comments available for the selected data."
	unavailableMessage = "The post database is unreachable right now. Use Refresh now to try again."
)

// Loader provides normalized snapshots to the handlers
type Loader interface {
	Load(ctx context.Context) (*ingestion.Snapshot, error)
	Refresh(ctx context.Context) (*ingestion.Snapshot, error)
	Status() models.FetchStatus
}

// Server handles HTTP requests
type Server struct {
	config  config.ServerConfig
	loader  Loader
	options analytics.ReportOptions
	engine  *gin.Engine
	server  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, dash config.DashboardConfig, loader Loader) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config: cfg,
		loader: loader,
		options: analytics.ReportOptions{
			WordCloudLimit: dash.WordCloudLimit,
			TopPosts:       dash.TopPosts,
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/dashboard", s.handleDashboard)
	r.POST("/refresh", s.handleRefresh)
	r.GET("/health", s.handleHealth)
	r.GET("/status", s.handleStatus)

	api := r.Group("/api")
	{
		api.GET("/report", s.handleReport)
		api.GET("/posts", s.handlePosts)
	}

	s.engine = r
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger tags every request with an ID and logs its outcome
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)

		c.Next()

		slog.Info("[Server] Request handled",
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus reports the most recent fetch
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.loader.Status())
}

// handleRefresh bypasses the fetch cache and sends the browser back to the
// dashboard with its filters intact
func (s *Server) handleRefresh(c *gin.Context) {
	if _, err := s.loader.Refresh(c.Request.Context()); err != nil {
		slog.Warn("[Server] Refresh failed", slog.String("error", err.Error()))
	}

	query := url.Values{}
	for _, key := range []string{"start", "end", "candidate"} {
		if v := c.PostForm(key); v != "" {
			query.Set(key, v)
		}
	}

	target := "/dashboard"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

// handleDashboard renders the dashboard page. Fetch failures and bad filters
// render the page with a message instead of charts.
func (s *Server) handleDashboard(c *gin.Context) {
	page := dashboardPage{
		Candidates: analytics.Candidates,
		Candidate:  c.DefaultQuery("candidate", analytics.CandidateAll),
		NoData:     noDataMessage,
		NoComments: noCommentsMessage,
	}

	snap, err := s.loader.Load(c.Request.Context())
	if err != nil {
		page.Error = loadErrorMessage(err)
		c.HTML(statusForLoadError(err), "dashboard.html", page)
		return
	}

	page.LastUpdated = snap.FetchedAt.Format("2006-01-02 15:04:05")
	bounds := analytics.DefaultFilter(snap.Posts)
	page.MinDate = formatDate(bounds.Start)
	page.MaxDate = formatDate(bounds.End)

	filter, err := analytics.ParseFilter(snap.Posts, c.Query("start"), c.Query("end"), c.Query("candidate"))
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "dashboard.html", page)
		return
	}

	report := analytics.BuildReport(snap.Posts, filter, s.options)
	page.fill(report)

	c.HTML(http.StatusOK, "dashboard.html", page)
}

// handleReport returns the aggregated report as JSON
func (s *Server) handleReport(c *gin.Context) {
	snap, filter, ok := s.loadFiltered(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, analytics.BuildReport(snap.Posts, filter, s.options))
}

// handlePosts returns the normalized posts passing the filter
func (s *Server) handlePosts(c *gin.Context) {
	snap, filter, ok := s.loadFiltered(c)
	if !ok {
		return
	}

	posts := filter.Apply(snap.Posts)
	c.JSON(http.StatusOK, gin.H{
		"posts":        posts,
		"count":        len(posts),
		"fetched_at":   snap.FetchedAt.UTC().Format(time.RFC3339),
		"dropped_rows": snap.Dropped,
	})
}

func (s *Server) loadFiltered(c *gin.Context) (*ingestion.Snapshot, analytics.Filter, bool) {
	snap, err := s.loader.Load(c.Request.Context())
	if err != nil {
		c.JSON(statusForLoadError(err), gin.H{"error": err.Error()})
		return nil, analytics.Filter{}, false
	}

	filter, err := analytics.ParseFilter(snap.Posts, c.Query("start"), c.Query("end"), c.Query("candidate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, analytics.Filter{}, false
	}

	return snap, filter, true
}

func loadErrorMessage(err error) string {
	if errors.Is(err, storage.ErrUnavailable) {
		return unavailableMessage
	}
	return "Failed to load posts. Use Refresh now to try again."
}

func statusForLoadError(err error) int {
	if errors.Is(err, storage.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
