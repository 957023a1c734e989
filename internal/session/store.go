package session

import (
	"sync"
	"time"

	"hpoannotate/domain/annotation"
	"hpoannotate/domain/core"
	"hpoannotate/internal"
	"hpoannotate/internal/export"
)

// Flash levels, rendered as message boxes
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a message shown once on the next render
type Flash struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Entry is the per-browser state kept between requests
type Entry struct {
	Session *annotation.Session

	mu         sync.Mutex
	lastSeen   time.Time
	showAll    bool
	lastExport *export.Artifact
	flashes    []Flash
}

// ShowAll reports whether the full table is rendered below the form
func (e *Entry) ShowAll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.showAll
}

// SetShowAll toggles the full-table view
func (e *Entry) SetShowAll(v bool) {
	e.mu.Lock()
	e.showAll = v
	e.mu.Unlock()
}

// LastExport returns the most recent artifact prepared for download
func (e *Entry) LastExport() *export.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastExport
}

// SetLastExport replaces the artifact offered for download
func (e *Entry) SetLastExport(a *export.Artifact) {
	e.mu.Lock()
	e.lastExport = a
	e.mu.Unlock()
}

// AddFlash queues a message for the next render
func (e *Entry) AddFlash(level, text string) {
	e.mu.Lock()
	e.flashes = append(e.flashes, Flash{Level: level, Text: text})
	e.mu.Unlock()
}

// TakeFlashes returns and clears the queued messages
func (e *Entry) TakeFlashes() []Flash {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.flashes
	e.flashes = nil
	return out
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastSeen)
}

// Store is an in-memory registry of sessions. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	entries  map[core.SessionID]*Entry
	opts     annotation.Options
	ttl      time.Duration
	clock    core.Clock
	logger   *internal.Logger
	onChange func(active int)
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock sets the clock used for expiry
func WithClock(clock core.Clock) StoreOption {
	return func(s *Store) { s.clock = clock }
}

// WithSizeObserver is called with the session count after it changes
func WithSizeObserver(fn func(active int)) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

// NewStore creates a store whose sessions use opts. A non-positive ttl
// disables expiry.
func NewStore(opts annotation.Options, ttl time.Duration, options ...StoreOption) *Store {
	s := &Store{
		entries: make(map[core.SessionID]*Entry),
		opts:    opts,
		ttl:     ttl,
		clock:   core.SystemClock{},
		logger:  internal.DefaultLogger.With("session"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Create starts a new idle session
func (s *Store) Create() *Entry {
	now := s.clock.Now()
	if s.ttl > 0 {
		s.CleanupExpired(s.ttl)
	}

	id := core.NewSessionID()
	entry := &Entry{
		Session:  annotation.NewSession(id, s.opts),
		lastSeen: now,
	}

	s.mu.Lock()
	s.entries[id] = entry
	count := len(s.entries)
	s.mu.Unlock()

	s.logger.Debug("Created session %s", id)
	s.notify(count)
	return entry
}

// Get returns a live session and marks it as used
func (s *Store) Get(id core.SessionID) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrSessionNotFound
	}

	now := s.clock.Now()
	if s.ttl > 0 && entry.idleSince(now) > s.ttl {
		s.Delete(id)
		return nil, core.ErrSessionNotFound
	}
	entry.touch(now)
	return entry, nil
}

// Resolve returns the session named by raw, or a new one when raw is empty,
// malformed, unknown or expired. created reports which case applied.
func (s *Store) Resolve(raw string) (entry *Entry, created bool) {
	if id, err := core.ParseSessionID(raw); err == nil {
		if entry, err := s.Get(id); err == nil {
			return entry, false
		}
	}
	return s.Create(), true
}

// Delete removes a session
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	count := len(s.entries)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("Removed session %s", id)
		s.notify(count)
	}
}

// CleanupExpired drops sessions idle for longer than olderThan
func (s *Store) CleanupExpired(olderThan time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for id, entry := range s.entries {
		if entry.idleSince(now) > olderThan {
			delete(s.entries, id)
			removed++
		}
	}
	count := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("Expired %d idle sessions", removed)
		s.notify(count)
	}
	return removed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) notify(count int) {
	if s.onChange != nil {
		s.onChange(count)
	}
}
