package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/markdownload"
	"github.com/gin-gonic/gin"
)

// DefaultAddr is the address the server listens on when none is configured.
const DefaultAddr = ":3000"

// MaxRequestBodySize caps the JSON body of a clip request.
const MaxRequestBodySize = 10 << 20

// ShutdownTimeout bounds how long Close waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Server exposes clipping over HTTP:
//
//	GET  /options     effective default options
//	POST /clip        clip {"url", "options"} and return the stored result
//	GET  /result/:id  a stored result as text/markdown
//
// Unmatched paths are served from the public directory when one is set.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *gin.Engine

	clipper markdownload.Clipper
	results markdownload.ResultStore

	addr      string
	env       markdownload.Overrides
	publicDir string
	logger    *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address. Defaults to DefaultAddr.
func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithEnv sets the environment option layer reported by GET /options.
func WithEnv(env markdownload.Overrides) ServerOption {
	return func(s *Server) {
		s.env = env
	}
}

// WithPublicDir serves static files from dir for unmatched paths.
func WithPublicDir(dir string) ServerOption {
	return func(s *Server) {
		s.publicDir = dir
	}
}

// WithLogger sets the logger for request and failure logs.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server clipping pages with clipper and reading stored
// results from results.
func NewServer(clipper markdownload.Clipper, results markdownload.ResultStore, opts ...ServerOption) *Server {
	s := &Server{
		clipper: clipper,
		results: results,
		addr:    DefaultAddr,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.logRequests())
	s.router.GET("/options", s.handleOptions)
	s.router.POST("/clip", s.handleClip)
	s.router.GET("/result/:id", s.handleResult)
	if s.publicDir != "" {
		s.router.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.publicDir))))
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Open starts listening on the configured address and serves in the
// background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the address the server listens on, or nil before Open.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// ServeHTTP dispatches a request through the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type clipRequest struct {
	URL     string                 `json:"url"`
	Options markdownload.Overrides `json:"options"`
}

type clipResponse struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Markdown string                `json:"markdown"`
	Images   []*markdownload.Asset `json:"images,omitempty"`
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, markdownload.ResolveOptions(s.env, nil))
}

func (s *Server) handleClip(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodySize)

	var req clipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, markdownload.Errorf(markdownload.EINVALID, "invalid request body: %v", err))
		return
	}
	if req.URL == "" {
		s.writeError(c, markdownload.Errorf(markdownload.EINVALID, "url required"))
		return
	}

	res, err := s.clipper.Clip(c.Request.Context(), req.URL, req.Options)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, clipResponse{
		ID:       res.ID,
		Title:    res.Title,
		Markdown: res.Markdown,
		Images:   res.Assets,
	})
}

func (s *Server) handleResult(c *gin.Context) {
	res, err := s.results.FindResultByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(res.Markdown))
}

// writeError writes err as a JSON body with the status matching its code.
// Internal errors are logged and reported with their message.
func (s *Server) writeError(c *gin.Context, err error) {
	code := markdownload.ErrorCode(err)
	status := errorStatus(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}

	msg := markdownload.ErrorMessage(err)
	if code == markdownload.EINTERNAL && msg == "Internal error." {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func errorStatus(code string) int {
	switch code {
	case markdownload.EINVALID:
		return http.StatusBadRequest
	case markdownload.ENOTFOUND:
		return http.StatusNotFound
	case markdownload.EEXTRACT:
		return http.StatusUnprocessableEntity
	case markdownload.EFETCH, markdownload.ERENDER:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
