package ui

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"hpoannotate/internal/metrics"
	"hpoannotate/ui/middleware"
	"hpoannotate/ui/services"
	"hpoannotate/ui/templates/fragments"
)

// App represents the lightweight UI application built on chi
type App struct {
	router  *chi.Mux
	service *services.AnnotationService
	render  *services.RenderService
	metrics *metrics.Recorder
	config  Config
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates a new UI application
func NewApp(config Config, service *services.AnnotationService, recorder *metrics.Recorder) (*App, error) {
	render, err := newRenderService()
	if err != nil {
		return nil, err
	}

	app := &App{
		router:  chi.NewRouter(),
		service: service,
		render:  render,
		metrics: recorder,
		config:  config,
	}

	if err := app.setupMiddleware(); err != nil {
		return nil, err
	}
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(chimiddleware.Logger)
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(chimiddleware.Compress(5))

	// Serve static files
	staticFS, err := staticFileSystem()
	if err != nil {
		return err
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticFS)))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	if a.metrics != nil {
		a.router.Handle("/metrics", a.metrics.Handler())
	}

	a.router.Group(func(r chi.Router) {
		r.Use(middleware.Session(a.service))

		// Main page
		r.Get("/", a.handleIndex)
		r.Post("/annotator", a.handleAnnotator)
		r.Post("/action", a.handleAction)
		r.Post("/reset", a.handleReset)
		r.Get("/download", a.handleDownload)

		// API endpoints
		r.Get("/api/state", a.handleState)
		r.Get("/api/export", a.handleExport)
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	port := a.config.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting HPO annotation UI server on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	entry := middleware.SessionFromContext(r.Context())
	if r.URL.Query().Has("show_all") {
		a.service.SetShowAll(entry, parseToggle(r.URL.Query().Get("show_all")))
	}
	a.renderPage(w, http.StatusOK, a.service.Page(r.Context(), entry))
}

func (a *App) handleAnnotator(w http.ResponseWriter, r *http.Request) {
	entry := middleware.SessionFromContext(r.Context())
	a.service.SetAnnotator(r.Context(), entry, r.PostFormValue("annotator"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleAction(w http.ResponseWriter, r *http.Request) {
	entry := middleware.SessionFromContext(r.Context())
	action := r.PostFormValue("action")
	if err := a.service.Act(r.Context(), entry, action, r.PostFormValue("choice")); err != nil {
		log.Printf("[Action] %s failed: %v", action, err)
		page := a.service.Page(r.Context(), entry)
		page.Messages = append(page.Messages, services.Message{Level: "error", Text: err.Error()})
		a.renderPage(w, services.ErrorStatus(err), page)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	a.service.Reset(w, middleware.SessionFromContext(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	artifact, err := a.service.Download(middleware.SessionFromContext(r.Context()))
	if err != nil {
		writeJSON(w, services.ErrorStatus(err), newErrorResponse(err))
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", services.ContentDisposition(artifact))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Payload)
}

func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.State(r.Context(), middleware.SessionFromContext(r.Context())))
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	artifact, err := a.service.Export(r.Context(), middleware.SessionFromContext(r.Context()), r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, services.ErrorStatus(err), newErrorResponse(err))
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", services.ContentDisposition(artifact))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Payload)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"dataset": a.service.DatasetStatus(),
	})
}

// Template helpers
func (a *App) renderPage(w http.ResponseWriter, status int, page *services.PageView) {
	var buf bytes.Buffer
	if err := a.render.Render(&buf, fragments.IndexPage, page); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
