package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"hpoannotate/domain/annotation"
	"hpoannotate/domain/core"
	"hpoannotate/internal"
	"hpoannotate/internal/dataset"
	"hpoannotate/internal/errors"
	"hpoannotate/internal/export"
	"hpoannotate/internal/metrics"
	"hpoannotate/internal/session"
	"hpoannotate/internal/summary"
)

// SessionCookie carries the session id between requests
const SessionCookie = "hpo_session"

// User-facing messages
const (
	MsgLoaded         = "Data loaded successfully! Ready for annotation."
	MsgNeedAnnotator  = "Please enter your name in the sidebar to begin annotation."
	MsgReadyDownload  = "Annotations ready for download!"
	MsgLoadErrorTitle = "Error loading file"
)

// Actions accepted by Act
const (
	ActionPrevious = "previous"
	ActionNext     = "next"
	ActionSave     = "save"
	ActionYes      = "yes"
	ActionNo       = "no"
)

// Config holds presentation settings for the service
type Config struct {
	ExportFormat string
	ShowSpan     bool
	Guidelines   []byte
	CookieTTL    time.Duration
}

// AnnotationService implements the annotation form independent of the router
type AnnotationService struct {
	store    *session.Store
	cache    *dataset.Cache
	exporter *export.Exporter
	metrics  *metrics.Recorder

	format     string
	showSpan   bool
	cookieTTL  time.Duration
	guidelines template.HTML
	logger     *internal.Logger
}

// NewAnnotationService wires the session store, dataset cache and exporter.
// recorder may be nil.
func NewAnnotationService(store *session.Store, cache *dataset.Cache, exporter *export.Exporter, recorder *metrics.Recorder, cfg Config) *AnnotationService {
	format := strings.ToLower(cfg.ExportFormat)
	if format == "" {
		format = "csv"
	}
	return &AnnotationService{
		store:      store,
		cache:      cache,
		exporter:   exporter,
		metrics:    recorder,
		format:     format,
		showSpan:   cfg.ShowSpan,
		cookieTTL:  cfg.CookieTTL,
		guidelines: RenderGuidelines(cfg.Guidelines),
		logger:     internal.DefaultLogger.With("ui"),
	}
}

// Message is a rendered notice box
type Message struct {
	Level string
	Text  string
}

// DownloadLink describes the artifact produced by the last save
type DownloadLink struct {
	Filename  string
	Label     string
	Rows      int
	Completed int
	CreatedAt string
}

// PageView is everything the form template needs
type PageView struct {
	Title      string
	View       annotation.View
	Messages   []Message
	ShowAll    bool
	ShowSpan   bool
	Guidelines template.HTML
	Download   *DownloadLink
	Summary    *summary.Summary
	Formats    []string
}

// ProgressPercent is the progress bar width
func (p *PageView) ProgressPercent() string {
	return fmt.Sprintf("%.1f", p.View.Progress*100)
}

// Active reports whether the annotation controls are shown
func (p *PageView) Active() bool {
	return p.View.State == annotation.StateActive
}

// IsRadio reports whether the radio variant is in use
func (p *PageView) IsRadio() bool {
	return p.View.Variant == annotation.VariantRadio
}

// ChoiceYes and ChoiceNo drive the radio checked state
func (p *PageView) ChoiceYes() bool { return p.View.Choice == annotation.VerdictCorrect }
func (p *PageView) ChoiceNo() bool  { return p.View.Choice == annotation.VerdictIncorrect }

// StateResponse is the JSON body of the state endpoint
type StateResponse struct {
	annotation.View
	Messages []Message      `json:"messages"`
	Dataset  dataset.Status `json:"dataset"`
	Download *DownloadLink  `json:"download,omitempty"`
}

// ResolveSession returns the session named by the request cookie, creating a
// new one when the cookie is missing or stale. The cookie is reissued on w
// every time so its lifetime follows the server's idle timeout.
func (s *AnnotationService) ResolveSession(w http.ResponseWriter, r *http.Request) *session.Entry {
	var raw string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		raw = cookie.Value
	}

	entry, created := s.store.Resolve(raw)
	if created {
		s.logger.Debug("New session %s", entry.Session.ID())
	}
	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    entry.Session.ID().String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookieTTL > 0 {
		cookie.MaxAge = int(s.cookieTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	return entry
}

// ensureLoaded attempts the one-time dataset load for the session
func (s *AnnotationService) ensureLoaded(ctx context.Context, entry *session.Entry) {
	loadedNow, err := entry.Session.Load(ctx, s.cache.Loader())
	if loadedNow {
		entry.AddFlash(session.FlashSuccess, MsgLoaded)
		return
	}
	if err != nil {
		s.logger.Debug("Session %s has no data: %v", entry.Session.ID(), err)
	}
}

// Page prepares the form for rendering. Rendering never changes the table.
func (s *AnnotationService) Page(ctx context.Context, entry *session.Entry) *PageView {
	s.ensureLoaded(ctx, entry)

	showAll := entry.ShowAll()
	view := entry.Session.View(showAll)

	page := &PageView{
		Title:      "HPO Sentence Annotation Tool",
		View:       view,
		Messages:   s.messages(entry, view),
		ShowAll:    showAll,
		ShowSpan:   s.showSpan,
		Guidelines: s.guidelines,
		Download:   downloadLink(entry.LastExport()),
		Formats:    s.exporter.Formats(),
	}
	if showAll && view.Loaded {
		stats := summary.Compute(view.Rows)
		page.Summary = &stats
	}
	return page
}

// messages combines one-shot flashes with the persistent state warnings
func (s *AnnotationService) messages(entry *session.Entry, view annotation.View) []Message {
	var out []Message
	if view.LoadError != "" {
		out = append(out, Message{Level: session.FlashError, Text: MsgLoadErrorTitle + ": " + view.LoadError})
	}
	for _, f := range entry.TakeFlashes() {
		out = append(out, Message{Level: f.Level, Text: f.Text})
	}
	if view.Annotator == "" {
		out = append(out, Message{Level: session.FlashWarning, Text: MsgNeedAnnotator})
	}
	return out
}

// State returns the JSON view of the session, including every row
func (s *AnnotationService) State(ctx context.Context, entry *session.Entry) StateResponse {
	s.ensureLoaded(ctx, entry)
	view := entry.Session.View(true)
	return StateResponse{
		View:     view,
		Messages: s.messages(entry, view),
		Dataset:  s.cache.Status(),
		Download: downloadLink(entry.LastExport()),
	}
}

// SetAnnotator records the name used for future judgments
func (s *AnnotationService) SetAnnotator(ctx context.Context, entry *session.Entry, name string) {
	entry.Session.SetAnnotator(name)
	s.ensureLoaded(ctx, entry)
	s.logger.Debug("Session %s annotator set to %q", entry.Session.ID(), entry.Session.Annotator())
}

// SetShowAll toggles the full-table view
func (s *AnnotationService) SetShowAll(entry *session.Entry, showAll bool) {
	entry.SetShowAll(showAll)
}

// Act applies one form action. choice is the radio value ("1", "0" or "").
func (s *AnnotationService) Act(ctx context.Context, entry *session.Entry, action, choice string) error {
	s.ensureLoaded(ctx, entry)

	verdict, err := annotation.ParseVerdict(choice)
	if err != nil {
		return errors.InvalidInput(err.Error())
	}

	sess := entry.Session
	action = strings.ToLower(strings.TrimSpace(action))

	switch action {
	case ActionPrevious:
		moved, err := sess.Previous(verdict)
		if err != nil {
			return actionError(action, err)
		}
		if moved {
			s.metrics.Navigation(action)
		}
	case ActionNext:
		moved, err := sess.Next(verdict)
		if err != nil {
			return actionError(action, err)
		}
		if moved {
			s.metrics.Navigation(action)
		}
	case ActionYes, ActionNo:
		if err := sess.Judge(annotation.VerdictFromBool(action == ActionYes)); err != nil {
			return actionError(action, err)
		}
	case ActionSave:
		rows, err := sess.PrepareSave(verdict)
		if err != nil {
			return actionError(action, err)
		}
		artifact, err := s.exporter.Export(ctx, sess.Annotator(), rows, s.format)
		if err != nil {
			return err
		}
		s.metrics.Export(artifact.Format)
		entry.SetLastExport(artifact)
		entry.AddFlash(session.FlashSuccess, MsgReadyDownload)
	default:
		return errors.UnsupportedAction(action, core.ErrUnsupportedAction)
	}
	return nil
}

// Download returns the artifact produced by the last save
func (s *AnnotationService) Download(entry *session.Entry) (*export.Artifact, error) {
	artifact := entry.LastExport()
	if artifact == nil {
		return nil, errors.NotFound("export")
	}
	return artifact, nil
}

// Export serializes the table as it stands. It never writes a row.
func (s *AnnotationService) Export(ctx context.Context, entry *session.Entry, format string) (*export.Artifact, error) {
	s.ensureLoaded(ctx, entry)

	rows, err := entry.Session.Judgments()
	if err != nil {
		return nil, actionError("export", err)
	}
	if format == "" {
		format = s.format
	}
	artifact, err := s.exporter.Export(ctx, entry.Session.Annotator(), rows, format)
	if err != nil {
		return nil, err
	}
	s.metrics.Export(artifact.Format)
	return artifact, nil
}

// Reset drops the session. The next request starts a fresh one.
func (s *AnnotationService) Reset(w http.ResponseWriter, entry *session.Entry) {
	s.store.Delete(entry.Session.ID())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// DatasetStatus reports the shared dataset cache
func (s *AnnotationService) DatasetStatus() dataset.Status {
	return s.cache.Status()
}

// ContentDisposition builds the attachment header for an artifact
func ContentDisposition(a *export.Artifact) string {
	return fmt.Sprintf(`attachment; filename="%s"`, a.Filename)
}

// ErrorStatus maps a service error to an HTTP status
func ErrorStatus(err error) int {
	return errors.HTTPStatus(err)
}

func actionError(action string, err error) error {
	switch {
	case stderrors.Is(err, core.ErrUnsupportedAction):
		return errors.UnsupportedAction(action, err)
	case core.IsNotActiveError(err):
		return errors.SessionNotActive(err)
	default:
		return errors.Wrapf(err, "action %s failed", action)
	}
}

func downloadLink(a *export.Artifact) *DownloadLink {
	if a == nil {
		return nil
	}
	return &DownloadLink{
		Filename:  a.Filename,
		Label:     "Download " + strings.ToUpper(a.Format) + " file",
		Rows:      a.Rows,
		Completed: a.Completed,
		CreatedAt: a.CreatedAt.Format(annotation.TimestampLayout),
	}
}
