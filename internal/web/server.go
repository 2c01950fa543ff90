// Package web serves the portfolio page: the shell layout, the content
// fragment and the raw document.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/portfolio"
	"github.com/Zachkp/portfolio/internal/view"
)

const defaultFetchTimeout = 10 * time.Second

// Options configures the handler.
type Options struct {
	Title        string
	Source       portfolio.Source
	FetchTimeout time.Duration
	// Visits is optional; nil disables page-view tracking and /api/stats.
	Visits *VisitLog
	Logger *slog.Logger
}

type handler struct {
	title        string
	source       portfolio.Source
	fetchTimeout time.Duration
	visits       *VisitLog
	logger       *slog.Logger
}

// pageData feeds the shell template.
type pageData struct {
	Title   string
	Content view.Snapshot
}

// NewHandler builds the gin engine with every route registered.
func NewHandler(opts Options) (*gin.Engine, error) {
	if opts.Source == nil {
		return nil, errors.New("portfolio source is required")
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "My Portfolio"
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	h := &handler{
		title:        opts.Title,
		source:       opts.Source,
		fetchTimeout: opts.FetchTimeout,
		visits:       opts.Visits,
		logger:       opts.Logger,
	}

	r := gin.New()
	r.Use(requestLogger(opts.Logger), gin.Recovery())
	if h.visits != nil {
		r.Use(h.visits.Middleware())
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", staticFiles())

	r.GET("/", h.index)
	r.GET("/sections", h.sections)
	r.GET("/Portfolio.json", h.rawDocument)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/portfolio", h.document)
	if h.visits != nil {
		api.GET("/stats", h.stats)
	}

	return r, nil
}

// index renders the shell with a fresh view in the Loading state. The
// browser then requests /sections exactly once to load it.
func (h *handler) index(c *gin.Context) {
	v := view.New(uuid.NewString())
	c.HTML(http.StatusOK, "index.html", pageData{
		Title:   h.title,
		Content: v.Snapshot(),
	})
}

// sections performs the view's single read and renders the Loaded or Failed
// state. If the client goes away first the view is closed, the read is
// cancelled and nothing is written.
func (h *handler) sections(c *gin.Context) {
	id := c.Query("view")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	v := view.New(id)
	defer v.Close()
	stop := context.AfterFunc(c.Request.Context(), v.Close)
	defer stop()

	// Only teardown or the timeout may cancel the read, so an abandoned
	// request always surfaces as view.ErrClosed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.fetchTimeout)
	defer cancel()

	err := v.Load(ctx, h.source)
	switch {
	case errors.Is(err, view.ErrClosed):
		h.logger.Debug("view closed before load completed", "view", id)
		c.Abort()
		return
	case err != nil:
		h.logger.Warn("portfolio load failed", "view", id, "error", err)
	default:
		h.logger.Debug("portfolio loaded", "view", id)
	}
	c.HTML(http.StatusOK, "content", v.Snapshot())
}

// rawDocument serves the static document bytes as they are stored.
func (h *handler) rawDocument(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.fetchTimeout)
	defer cancel()

	data, err := h.source.Fetch(ctx)
	if err != nil {
		h.logger.Warn("serve portfolio document", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "portfolio document unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// document serves the validated document, or the validation problems.
func (h *handler) document(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.fetchTimeout)
	defer cancel()

	doc, err := portfolio.Load(ctx, h.source)
	if err != nil {
		status, body := errorResponse(err)
		h.logger.Warn("portfolio document rejected", "status", status, "error", err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func errorResponse(err error) (int, gin.H) {
	var verr *portfolio.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, gin.H{"error": "invalid portfolio document", "problems": verr.Problems}
	case errors.Is(err, portfolio.ErrMalformed):
		return http.StatusUnprocessableEntity, gin.H{"error": err.Error()}
	case errors.Is(err, portfolio.ErrFetch):
		return http.StatusBadGateway, gin.H{"error": "portfolio document unavailable"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}

func (h *handler) stats(c *gin.Context) {
	stats, err := h.visits.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("error loading visit stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Server hosts the portfolio HTTP server.
type Server struct {
	addr       string
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a configured server listening on addr.
func NewServer(addr string, opts Options) (*Server, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	engine, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info("portfolio listening", "addr", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
