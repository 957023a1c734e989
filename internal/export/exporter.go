package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hpoannotate/adapters/excel"
	"hpoannotate/domain/annotation"
	"hpoannotate/domain/core"
	"hpoannotate/internal"
	"hpoannotate/internal/errors"
	"hpoannotate/ports"
)

// FilePrefix starts every export filename
const FilePrefix = "hpo_annotations"

// Artifact is a serialized snapshot of an annotation table
type Artifact struct {
	ID          core.ArtifactID
	Filename    string
	Format      string
	ContentType string
	Payload     []byte
	Rows        int
	Completed   int
	CreatedAt   time.Time
	ArchivePath string
}

// Exporter turns judgments into downloadable artifacts
type Exporter struct {
	writers map[string]ports.TableWriter
	archive ports.ArtifactArchive
	clock   core.Clock
	logger  *internal.Logger
}

// Option configures an Exporter
type Option func(*Exporter)

// WithArchive also stores every artifact in archive
func WithArchive(archive ports.ArtifactArchive) Option {
	return func(e *Exporter) { e.archive = archive }
}

// WithClock sets the clock used for filenames
func WithClock(clock core.Clock) Option {
	return func(e *Exporter) { e.clock = clock }
}

// WithWriter registers an additional format
func WithWriter(w ports.TableWriter) Option {
	return func(e *Exporter) { e.writers[w.Format()] = w }
}

// NewExporter creates an exporter supporting CSV and XLSX
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		writers: map[string]ports.TableWriter{},
		clock:   core.SystemClock{},
		logger:  internal.DefaultLogger.With("export"),
	}
	for _, w := range []ports.TableWriter{excel.CSVWriter{}, excel.XLSXWriter{}} {
		e.writers[w.Format()] = w
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Formats lists the registered format keys
func (e *Exporter) Formats() []string {
	out := make([]string, 0, len(e.writers))
	for _, key := range []string{"csv", "xlsx"} {
		if _, ok := e.writers[key]; ok {
			out = append(out, key)
		}
	}
	for key := range e.writers {
		if key != "csv" && key != "xlsx" {
			out = append(out, key)
		}
	}
	return out
}

// Export serializes rows in index order. It never changes rows.
func (e *Exporter) Export(ctx context.Context, annotator string, rows []annotation.Judgment, format string) (*Artifact, error) {
	writer, ok := e.writers[strings.ToLower(format)]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, rows); err != nil {
		return nil, errors.ExportFailed(err)
	}

	createdAt := e.clock.Now()
	completed := 0
	for _, row := range rows {
		if row.IsCorrect.IsSet() {
			completed++
		}
	}

	artifact := &Artifact{
		ID:          core.NewArtifactID(),
		Filename:    Filename(annotator, createdAt, writer.Extension()),
		Format:      writer.Format(),
		ContentType: writer.ContentType(),
		Payload:     buf.Bytes(),
		Rows:        len(rows),
		Completed:   completed,
		CreatedAt:   createdAt,
	}

	if e.archive != nil {
		path, err := e.archive.Store(ctx, artifact.Filename, artifact.Payload)
		if err != nil {
			// the download still works without the server-side copy
			e.logger.Warn("Failed to archive %s: %v", artifact.Filename, err)
		} else {
			artifact.ArchivePath = path
		}
	}

	e.logger.Info("Exported %d rows (%d completed) as %s", artifact.Rows, artifact.Completed, artifact.Filename)
	return artifact, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeAnnotator makes an annotator name safe for filenames and headers
func SanitizeAnnotator(name string) string {
	cleaned := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_"), "._")
	if cleaned == "" {
		return "anonymous"
	}
	return cleaned
}

// Filename builds hpo_annotations_<annotator>_<YYYYMMDD_HHMMSS><ext>
func Filename(annotator string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s", FilePrefix, SanitizeAnnotator(annotator), at.Format(annotation.FileStampLayout), ext)
}
