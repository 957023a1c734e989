package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorBounds(t *testing.T) {
	c := NewCursor(3)
	assert.False(t, c.CanPrevious())
	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.Index())

	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, 3, c.Position())
}

func TestCursorProgress(t *testing.T) {
	tests := []struct {
		n        int
		steps    int
		progress float64
		position int
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 1},
		{4, 0, 0, 1},
		{4, 2, 0.5, 3},
		{4, 9, 0.75, 4},
	}

	for _, test := range tests {
		c := NewCursor(test.n)
		for i := 0; i < test.steps; i++ {
			c.Next()
		}
		assert.InDelta(t, test.progress, c.Progress(), 1e-9, "n=%d steps=%d", test.n, test.steps)
		assert.Equal(t, test.position, c.Position(), "n=%d steps=%d", test.n, test.steps)
	}
}

func TestEmptyCursor(t *testing.T) {
	c := NewCursor(-2)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.CanNext())
	assert.False(t, c.CanPrevious())
	assert.False(t, c.Next())
	assert.Equal(t, 0, c.Index())
}
