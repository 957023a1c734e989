package annotation

import (
	"fmt"
	"time"
)

// Table holds one judgment per record, index-aligned with the dataset
type Table struct {
	rows []Judgment
}

// NewTable builds a table with every row unset and attributed to annotator
func NewTable(records []Record, annotator string) *Table {
	rows := make([]Judgment, len(records))
	for i, rec := range records {
		rows[i] = Judgment{
			Annotator: annotator,
			Record:    rec,
		}
	}
	return &Table{rows: rows}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of the judgment at index i
func (t *Table) Row(i int) (Judgment, error) {
	if i < 0 || i >= len(t.rows) {
		return Judgment{}, fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	return t.rows[i], nil
}

// Submit records a verdict for row i. Only the verdict, the timestamp and the
// annotator change; the echoed record fields are left alone.
func (t *Table) Submit(i int, verdict Verdict, annotator string, at time.Time) error {
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	if !verdict.IsSet() {
		return fmt.Errorf("cannot submit an unset verdict")
	}

	row := &t.rows[i]
	row.IsCorrect = verdict
	row.Annotator = annotator
	row.Timestamp = at.Truncate(time.Second)
	return nil
}

// Completed counts rows whose verdict is set
func (t *Table) Completed() int {
	n := 0
	for _, row := range t.rows {
		if row.IsCorrect.IsSet() {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of all rows in index order
func (t *Table) Snapshot() []Judgment {
	out := make([]Judgment, len(t.rows))
	copy(out, t.rows)
	return out
}
