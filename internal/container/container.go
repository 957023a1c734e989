package container

import (
	"context"
	"fmt"
	"os"

	"hpoannotate/adapters/excel"
	"hpoannotate/domain/annotation"
	"hpoannotate/internal"
	"hpoannotate/internal/config"
	"hpoannotate/internal/dataset"
	"hpoannotate/internal/export"
	"hpoannotate/internal/metrics"
	"hpoannotate/internal/session"
	"hpoannotate/ports"
	"hpoannotate/ui/services"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Metrics *metrics.Recorder
	Reader  ports.DatasetReader
	Archive ports.ArtifactArchive

	// Annotation components
	Dataset  *dataset.Cache
	Sessions *session.Store
	Exporter *export.Exporter
	Service  *services.AnnotationService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	internal.DefaultLogger = logger

	c := &Container{
		Config: cfg,
		Logger: logger.With("container"),
	}

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewRecorder()
	}

	c.initDataset()
	c.initSessions()
	c.initExport()

	c.initService()

	c.Logger.Info("Container initialized: dataset=%s variant=%s policy=%s export=%s",
		cfg.Data.DatasetFile, cfg.Annotation.Variant, cfg.Annotation.UnsetPolicy, cfg.Export.Format)
	return c, nil
}

// initDataset sets up the reader and the shared records cache
func (c *Container) initDataset() {
	c.Reader = excel.NewDataReader(c.Config.Data.DatasetFile)
	c.Dataset = dataset.NewCache(c.Reader, dataset.WithLoadObserver(c.Metrics.DatasetLoad))
}

// initSessions creates the session registry with judgment metrics attached
func (c *Container) initSessions() {
	opts := c.Config.SessionOptions()
	recorder := c.Metrics
	opts.OnSubmit = func(variant annotation.Variant, j annotation.Judgment) {
		recorder.Judgment(string(variant), j.IsCorrect.String())
	}
	c.Sessions = session.NewStore(opts, c.Config.Session.TTL, session.WithSizeObserver(recorder.SetActiveSessions))
}

// initExport creates the exporter and, when EXPORT_DIR is set, its archive
func (c *Container) initExport() {
	var options []export.Option
	if dir := c.Config.Export.Dir; dir != "" {
		c.Archive = export.NewLocalFileStorage(dir)
		options = append(options, export.WithArchive(c.Archive))
		c.Logger.Info("Exports will also be written to %s", dir)
	}
	c.Exporter = export.NewExporter(options...)
}

// initService builds the UI service, reading custom guidelines when configured
func (c *Container) initService() {
	var guidelines []byte
	if path := c.Config.Data.GuidelinesFile; path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			c.Logger.Warn("Failed to read guidelines %s, using built-in guidelines: %v", path, err)
		} else {
			guidelines = content
		}
	}

	c.Service = services.NewAnnotationService(c.Sessions, c.Dataset, c.Exporter, c.Metrics, services.Config{
		ExportFormat: c.Config.Export.Format,
		ShowSpan:     c.Config.Annotation.ShowSpan,
		Guidelines:   guidelines,
		CookieTTL:    c.Config.Session.TTL,
	})
}

// Shutdown releases resources. Sessions are in memory and are simply dropped.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Info("Shutting down with %d live sessions", c.Sessions.Len())
	return nil
}
