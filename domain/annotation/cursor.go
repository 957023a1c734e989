package annotation

// Cursor is the index of the record on screen, bounded to [0, max(n-1, 0)]
type Cursor struct {
	index int
	n     int
}

// NewCursor creates a cursor at 0 over n records
func NewCursor(n int) Cursor {
	if n < 0 {
		n = 0
	}
	return Cursor{n: n}
}

// Index returns the current position
func (c Cursor) Index() int {
	return c.index
}

// Len returns the number of records the cursor ranges over
func (c Cursor) Len() int {
	return c.n
}

// CanPrevious reports whether Previous would move
func (c Cursor) CanPrevious() bool {
	return c.n > 0 && c.index > 0
}

// CanNext reports whether Next would move
func (c Cursor) CanNext() bool {
	return c.n > 0 && c.index < c.n-1
}

// Previous moves back one record; it is a no-op at the first record
func (c *Cursor) Previous() bool {
	if !c.CanPrevious() {
		return false
	}
	c.index--
	return true
}

// Next moves forward one record; it is a no-op at the last record
func (c *Cursor) Next() bool {
	if !c.CanNext() {
		return false
	}
	c.index++
	return true
}

// Progress returns index/n, or 0 for an empty dataset
func (c Cursor) Progress() float64 {
	if c.n == 0 {
		return 0
	}
	return float64(c.index) / float64(c.n)
}

// Position returns the 1-based position shown to the user, 0 when empty
func (c Cursor) Position() int {
	if c.n == 0 {
		return 0
	}
	return c.index + 1
}
