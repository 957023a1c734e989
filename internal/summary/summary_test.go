package summary

import (
	"testing"
	"time"

	"hpoannotate/domain/annotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func judged(id string, v annotation.Verdict, at time.Time) annotation.Judgment {
	return annotation.Judgment{
		Annotator: "alice",
		Record:    annotation.Record{HPOID: id, HPOLabel: "label " + id},
		IsCorrect: v,
		Timestamp: at,
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.Completed)
	assert.Zero(t, s.PositiveRate)
	assert.Zero(t, s.MedianGapSec)
	assert.Empty(t, s.Labels)
}

func TestCompute(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	rows := []annotation.Judgment{
		judged("HP:1", annotation.VerdictCorrect, start),
		judged("HP:2", annotation.VerdictIncorrect, start.Add(10*time.Second)),
		judged("HP:1", annotation.VerdictCorrect, start.Add(40*time.Second)),
		judged("HP:3", annotation.VerdictUnset, time.Time{}),
	}

	s := Compute(rows)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Completed)
	assert.Equal(t, 2, s.Positives)
	assert.Equal(t, 1, s.Negatives)
	assert.InDelta(t, 2.0/3.0, s.PositiveRate, 1e-9)
	assert.Less(t, s.RateLow, s.PositiveRate)
	assert.Greater(t, s.RateHigh, s.PositiveRate)

	// gaps are 10s and 30s
	assert.InDelta(t, 20.0, s.MedianGapSec, 1e-9)
	assert.InDelta(t, 20.0, s.MeanGapSec, 1e-9)

	require.Len(t, s.Labels, 3)
	assert.Equal(t, LabelCounts{HPOID: "HP:1", HPOLabel: "label HP:1", Total: 2, Positives: 2}, s.Labels[0])
	assert.Equal(t, 1, s.Labels[2].Total)
	assert.Equal(t, 0, s.Labels[2].Positives+s.Labels[2].Negatives)
}

func TestWilsonInterval(t *testing.T) {
	tests := []struct {
		name      string
		k, n      int
		low, high float64
	}{
		{"half", 5, 10, 0.2366, 0.7634},
		{"all", 10, 10, 0.7225, 1.0},
		{"none", 0, 10, 0.0, 0.2775},
		{"empty", 0, 0, 0, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			low, high := WilsonInterval(test.k, test.n, Confidence)
			assert.InDelta(t, test.low, low, 1e-3)
			assert.InDelta(t, test.high, high, 1e-3)
		})
	}
}
