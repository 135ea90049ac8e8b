package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"perfmon-dashboard/src/analysis"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// largest page size the HTML view will render
const maxPerPage = 1000

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Snapshot *analysis.Snapshot

	engine     *gin.Engine
	httpServer *http.Server
	telemetry  *telemetry

	// WebSocket clients, owned by the hub goroutine
	clients     map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	quit        chan struct{}
	hubDone     chan struct{}
	connections atomic.Int64
	stopped     atomic.Bool
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, snapshot *analysis.Snapshot, logger *logger.Logger) (*DashboardServer, error) {
	if snapshot == nil {
		return nil, errors.New("dashboard server needs a loaded snapshot")
	}

	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := newTelemetry()
	if err != nil {
		return nil, fmt.Errorf("telemetry setup: %w", err)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     logger,
		Snapshot:   snapshot,
		engine:     gin.New(),
		telemetry:  tel,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		hubDone:    make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), tel.middleware())
	s.engine.SetHTMLTemplate(tmpl)

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, If-None-Match, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setupRoutes()
	go s.handleWebsockets()
	return s, nil
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	cached := s.engine.Group("/", s.etag())
	cached.GET("/", s.getIndex)
	cached.GET("/api/metrics", s.getMetrics)
	cached.GET("/api/metric", s.getMetric)
	cached.GET("/api/categories", s.getCategories)

	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for httptest.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks until Stop. After Stop it returns nil without listening.
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting dashboard on http://%s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}

	err := s.httpServer.Shutdown(ctx)

	close(s.quit)
	select {
	case <-s.hubDone:
	case <-ctx.Done():
	}
	return err
}

// -----------------------------------------------------------------------------
// Middlewares
// -----------------------------------------------------------------------------

func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------

// etag tags responses with the source fingerprint. The data never changes
// after startup, so a matching If-None-Match is always a 304.
func (s *DashboardServer) etag() gin.HandlerFunc {
	tag := `"` + s.Snapshot.Stats().Fingerprint + `"`
	return func(c *gin.Context) {
		if tag == `""` {
			c.Next()
			return
		}
		c.Header("ETag", tag)
		if etagMatches(c.GetHeader("If-None-Match"), tag) {
			c.AbortWithStatus(http.StatusNotModified)
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getIndex(c *gin.Context) {
	perPage := parsePositiveInt(c.Query("per_page"), s.Config.Data.PerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := parsePositiveInt(c.Query("page"), 1)

	metrics, totalPages := s.Snapshot.CountersPage(page, perPage)
	stats := s.Snapshot.Stats()

	firstRow := 0
	if page <= totalPages {
		firstRow = (page-1)*perPage + 1
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"csv_name":        stats.Source,
		"stats":           stats,
		"metric_stats":    metrics,
		"page":            page,
		"per_page":        perPage,
		"total_pages":     totalPages,
		"metric_count":    s.Snapshot.CounterCount(),
		"category_stats":  s.Snapshot.OrderedCategories(),
		"pages":           pageWindow(page, totalPages, 5),
		"has_prev":        page > 1,
		"has_next":        page < totalPages,
		"first_row_index": firstRow,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetrics(c *gin.Context) {
	name := strings.TrimSpace(c.Query("category"))
	if name == "" {
		c.JSON(http.StatusOK, s.Snapshot.GetCounterSummaries())
		return
	}

	category, ok := models.ParseCategory(name)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", name)})
		return
	}
	summary, _ := s.Snapshot.CategorySummary(category)
	c.JSON(http.StatusOK, summary.Counters)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetric(c *gin.Context) {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	summary, ok := s.Snapshot.CounterSummary(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("counter %q not found", name)})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot.GetCategorySummaries())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	stats := s.Snapshot.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"source":          stats.Source,
		"fingerprint":     stats.Fingerprint,
		"counters":        stats.Counters,
		"rows":            stats.Rows,
		"rejected_cells":  stats.RejectedCells,
		"first_timestamp": stats.FirstTimestamp,
		"last_timestamp":  stats.LastTimestamp,
		"loaded_at":       stats.LoadedAt,
		"connections":     s.connections.Load(),
	})
}
