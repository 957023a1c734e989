package annotation

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"hpoannotate/domain/core"
)

// Variant selects how judgments are entered
type Variant string

const (
	// VariantRadio shows a yes/no choice that is written on Previous, Next or Save
	VariantRadio Variant = "radio"
	// VariantButtons writes a judgment as soon as Yes or No is pressed
	VariantButtons Variant = "buttons"
)

// ParseVariant validates a configured variant name
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantRadio, "":
		return VariantRadio, nil
	case VariantButtons:
		return VariantButtons, nil
	default:
		return "", fmt.Errorf("unknown annotation variant %q (want radio or buttons)", s)
	}
}

// UnsetPolicy decides what the radio variant records for a row the annotator
// navigates away from without choosing.
type UnsetPolicy string

const (
	// PolicyDefaultYes shows Yes pre-selected and records it on navigation
	PolicyDefaultYes UnsetPolicy = "default_yes"
	// PolicyLeaveUnset shows no selection and records nothing without a choice
	PolicyLeaveUnset UnsetPolicy = "leave_unset"
)

// ParseUnsetPolicy validates a configured policy name
func ParseUnsetPolicy(s string) (UnsetPolicy, error) {
	switch UnsetPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyDefaultYes, "":
		return PolicyDefaultYes, nil
	case PolicyLeaveUnset:
		return PolicyLeaveUnset, nil
	default:
		return "", fmt.Errorf("unknown unset policy %q (want default_yes or leave_unset)", s)
	}
}

// State is the coarse interaction state of a session
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

// Loader produces the dataset records for a session
type Loader func(ctx context.Context) ([]Record, error)

// Options configures a session
type Options struct {
	Variant Variant
	Policy  UnsetPolicy
	Clock   core.Clock

	// OnSubmit, when set, is called with every row written to the table
	OnSubmit func(variant Variant, j Judgment)
}

// Session owns one annotator's cursor and judgment table.
// All methods are safe for concurrent use; mutations are serialized.
type Session struct {
	mu sync.Mutex

	id   core.SessionID
	opts Options

	annotator string
	records   []Record
	table     *Table
	cursor    Cursor

	loaded        bool
	seeded        bool
	loadAttempted bool
	loadErr       error
}

// NewSession creates an idle session with no data
func NewSession(id core.SessionID, opts Options) *Session {
	if opts.Variant == "" {
		opts.Variant = VariantRadio
	}
	if opts.Policy == "" {
		opts.Policy = PolicyDefaultYes
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	return &Session{
		id:     id,
		opts:   opts,
		table:  NewTable(nil, ""),
		cursor: NewCursor(0),
	}
}

// ID returns the session identifier
func (s *Session) ID() core.SessionID {
	return s.id
}

// Variant returns the configured input variant
func (s *Session) Variant() Variant {
	return s.opts.Variant
}

// Load fetches the records on first call. Later calls return the outcome of
// the first attempt without invoking load again. A cancelled or timed out
// load is not remembered, so the next request tries again.
func (s *Session) Load(ctx context.Context, load Loader) (loadedNow bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadAttempted {
		return false, s.loadErr
	}

	records, err := load(ctx)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		s.loadAttempted = true
		s.loadErr = err
		return false, err
	}

	s.loadAttempted = true
	s.loaded = true
	s.records = records
	s.table = NewTable(records, "")
	s.cursor = NewCursor(len(records))
	s.seedLocked()
	return true, nil
}

// seedLocked builds the judgment table the first time the session has both
// records and an annotator. No row can be submitted before that, so every
// row starts with the first annotator's name.
func (s *Session) seedLocked() {
	if s.seeded || !s.loaded || s.annotator == "" {
		return
	}
	s.table = NewTable(s.records, s.annotator)
	s.seeded = true
}

// SetAnnotator changes the name used for future submissions.
// Once the table exists, rows keep their annotator until resubmitted.
func (s *Session) SetAnnotator(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotator = strings.TrimSpace(name)
	s.seedLocked()
}

// Annotator returns the current annotator name
func (s *Session) Annotator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.annotator
}

// State reports whether both data and an annotator name are present
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.loaded && s.annotator != "" {
		return StateActive
	}
	return StateIdle
}

func (s *Session) requireActive() error {
	if !s.loaded {
		return core.ErrNoData
	}
	if s.annotator == "" {
		return core.ErrNoAnnotator
	}
	return nil
}

// choiceLocked is the verdict the radio control shows for the current row
func (s *Session) choiceLocked() Verdict {
	if s.cursor.Len() == 0 {
		return VerdictUnset
	}
	row := s.table.rows[s.cursor.Index()]
	if row.IsCorrect.IsSet() {
		return row.IsCorrect
	}
	if s.opts.Variant == VariantRadio && s.opts.Policy == PolicyDefaultYes {
		return VerdictCorrect
	}
	return VerdictUnset
}

// writePendingLocked records the radio choice for the current row. An unset
// choice falls back to what the control displays; nothing is written when
// that is unset too.
func (s *Session) writePendingLocked(choice Verdict) error {
	if s.cursor.Len() == 0 {
		return nil
	}
	if !choice.IsSet() {
		choice = s.choiceLocked()
	}
	if !choice.IsSet() {
		return nil
	}
	return s.submitLocked(choice)
}

func (s *Session) submitLocked(verdict Verdict) error {
	i := s.cursor.Index()
	if err := s.table.Submit(i, verdict, s.annotator, s.opts.Clock.Now()); err != nil {
		return err
	}
	if s.opts.OnSubmit != nil {
		s.opts.OnSubmit(s.opts.Variant, s.table.rows[i])
	}
	return nil
}

// Judge records a verdict for the current row and advances when possible.
// Only the buttons variant accepts it.
func (s *Session) Judge(verdict Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Variant != VariantButtons {
		return core.ErrUnsupportedAction
	}
	if err := s.requireActive(); err != nil {
		return err
	}
	if s.cursor.Len() == 0 {
		return nil
	}
	if err := s.submitLocked(verdict); err != nil {
		return err
	}
	s.cursor.Next()
	return nil
}

// Previous moves back one row. The radio variant first writes the choice.
// At the first row nothing happens.
func (s *Session) Previous(choice Verdict) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return false, err
	}
	if !s.cursor.CanPrevious() {
		return false, nil
	}
	if s.opts.Variant == VariantRadio {
		if err := s.writePendingLocked(choice); err != nil {
			return false, err
		}
	}
	return s.cursor.Previous(), nil
}

// Next moves forward one row. The radio variant first writes the choice.
// At the last row nothing happens.
func (s *Session) Next(choice Verdict) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return false, err
	}
	if !s.cursor.CanNext() {
		return false, nil
	}
	if s.opts.Variant == VariantRadio {
		if err := s.writePendingLocked(choice); err != nil {
			return false, err
		}
	}
	return s.cursor.Next(), nil
}

// PrepareSave returns the table for export. The radio variant writes the
// pending choice for the current row first.
func (s *Session) PrepareSave(choice Verdict) ([]Judgment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return nil, err
	}
	if s.opts.Variant == VariantRadio {
		if err := s.writePendingLocked(choice); err != nil {
			return nil, err
		}
	}
	return s.table.Snapshot(), nil
}

// Judgments returns a copy of the table without writing anything
func (s *Session) Judgments() ([]Judgment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, core.ErrNoData
	}
	return s.table.Snapshot(), nil
}

// View is a consistent snapshot of everything the form renders
type View struct {
	SessionID   core.SessionID `json:"session_id"`
	State       State          `json:"state"`
	Variant     Variant        `json:"variant"`
	Policy      UnsetPolicy    `json:"unset_policy"`
	Annotator   string         `json:"annotator"`
	Loaded      bool           `json:"loaded"`
	LoadError   string         `json:"load_error,omitempty"`
	Index       int            `json:"index"`
	Position    int            `json:"position"`
	Total       int            `json:"total"`
	Progress    float64        `json:"progress"`
	Completed   int            `json:"completed"`
	CanPrevious bool           `json:"can_previous"`
	CanNext     bool           `json:"can_next"`
	Current     *Judgment      `json:"current,omitempty"`
	Choice      Verdict        `json:"choice"`
	Rows        []Judgment     `json:"rows,omitempty"`
}

// View captures the session for rendering. Rows are included on request.
func (s *Session) View(includeRows bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID: s.id,
		State:     s.stateLocked(),
		Variant:   s.opts.Variant,
		Policy:    s.opts.Policy,
		Annotator: s.annotator,
		Loaded:    s.loaded,
		Index:     s.cursor.Index(),
		Position:  s.cursor.Position(),
		Total:     s.cursor.Len(),
		Progress:  s.cursor.Progress(),
		Completed: s.table.Completed(),
		Choice:    s.choiceLocked(),
	}
	if s.loadErr != nil {
		v.LoadError = s.loadErr.Error()
	}
	if v.State == StateActive {
		v.CanPrevious = s.cursor.CanPrevious()
		v.CanNext = s.cursor.CanNext()
		if s.cursor.Len() > 0 {
			current := s.table.rows[s.cursor.Index()]
			v.Current = &current
		}
	}
	if includeRows {
		v.Rows = s.table.Snapshot()
	}
	return v
}
