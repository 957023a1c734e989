package ui

import (
	"bytes"
	"log"
	"net/http"

	"hpoannotate/internal/metrics"
	"hpoannotate/ui/middleware"
	"hpoannotate/ui/services"
	"hpoannotate/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// Server represents the web server for the annotation tool
type Server struct {
	router  *gin.Engine
	service *services.AnnotationService
	render  *services.RenderService
	metrics *metrics.Recorder
}

// NewServer creates a new web server instance. recorder may be nil, in which
// case /metrics is not served.
func NewServer(service *services.AnnotationService, recorder *metrics.Recorder) (*Server, error) {
	render, err := newRenderService()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		render:  render,
		metrics: recorder,
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Logger(), gin.Recovery())

	staticFS, err := staticFileSystem()
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", staticFS)
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// Everything below works on the browser session
	annotate := s.router.Group("/", middleware.EnsureSession(s.service))
	annotate.GET("/", s.handleIndex)
	annotate.POST("/annotator", s.handleAnnotator)
	annotate.POST("/action", s.handleAction)
	annotate.POST("/reset", s.handleReset)
	annotate.GET("/download", s.handleDownload)
	annotate.GET("/api/state", s.handleState)
	annotate.GET("/api/export", s.handleExport)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting HPO annotation UI on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	entry := middleware.SessionFrom(c)
	if value, ok := c.GetQuery("show_all"); ok {
		s.service.SetShowAll(entry, parseToggle(value))
	}
	s.renderPage(c, http.StatusOK, s.service.Page(c.Request.Context(), entry))
}

func (s *Server) handleAnnotator(c *gin.Context) {
	entry := middleware.SessionFrom(c)
	s.service.SetAnnotator(c.Request.Context(), entry, c.PostForm("annotator"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleAction(c *gin.Context) {
	entry := middleware.SessionFrom(c)
	err := s.service.Act(c.Request.Context(), entry, c.PostForm("action"), c.PostForm("choice"))
	if err != nil {
		log.Printf("[Action] %s failed: %v", c.PostForm("action"), err)
		page := s.service.Page(c.Request.Context(), entry)
		page.Messages = append(page.Messages, services.Message{Level: "error", Text: err.Error()})
		s.renderPage(c, services.ErrorStatus(err), page)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleReset(c *gin.Context) {
	s.service.Reset(c.Writer, middleware.SessionFrom(c))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleDownload(c *gin.Context) {
	artifact, err := s.service.Download(middleware.SessionFrom(c))
	if err != nil {
		c.JSON(services.ErrorStatus(err), newErrorResponse(err))
		return
	}
	c.Header("Content-Disposition", services.ContentDisposition(artifact))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Payload)
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.State(c.Request.Context(), middleware.SessionFrom(c)))
}

func (s *Server) handleExport(c *gin.Context) {
	artifact, err := s.service.Export(c.Request.Context(), middleware.SessionFrom(c), c.Query("format"))
	if err != nil {
		c.JSON(services.ErrorStatus(err), newErrorResponse(err))
		return
	}
	c.Header("Content-Disposition", services.ContentDisposition(artifact))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Payload)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"dataset": s.service.DatasetStatus(),
	})
}

// renderPage renders the form with the given status
func (s *Server) renderPage(c *gin.Context, status int, page *services.PageView) {
	var buf bytes.Buffer
	if err := s.render.Render(&buf, fragments.IndexPage, page); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
