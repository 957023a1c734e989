package summary

import (
	"math"
	"sort"

	"hpoannotate/domain/annotation"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Confidence is the level of the interval reported around the positive rate
const Confidence = 0.95

// Summary describes the state of an annotation table
type Summary struct {
	Total        int           `json:"total"`
	Completed    int           `json:"completed"`
	Positives    int           `json:"positives"`
	Negatives    int           `json:"negatives"`
	PositiveRate float64       `json:"positive_rate"`
	RateLow      float64       `json:"rate_low"`
	RateHigh     float64       `json:"rate_high"`
	MedianGapSec float64       `json:"median_gap_seconds"`
	MeanGapSec   float64       `json:"mean_gap_seconds"`
	Labels       []LabelCounts `json:"labels,omitempty"`
}

// LabelCounts holds verdict counts for one HPO term
type LabelCounts struct {
	HPOID     string `json:"hpo_id"`
	HPOLabel  string `json:"hpo_label"`
	Total     int    `json:"total"`
	Positives int    `json:"positives"`
	Negatives int    `json:"negatives"`
}

// Compute summarizes rows. Unset rows count toward Total only.
func Compute(rows []annotation.Judgment) Summary {
	s := Summary{Total: len(rows)}

	byID := map[string]*LabelCounts{}
	var order []string
	var stamps []float64

	for _, row := range rows {
		counts, ok := byID[row.HPOID]
		if !ok {
			counts = &LabelCounts{HPOID: row.HPOID, HPOLabel: row.HPOLabel}
			byID[row.HPOID] = counts
			order = append(order, row.HPOID)
		}
		counts.Total++

		switch row.IsCorrect {
		case annotation.VerdictCorrect:
			s.Positives++
			counts.Positives++
		case annotation.VerdictIncorrect:
			s.Negatives++
			counts.Negatives++
		default:
			continue
		}
		s.Completed++
		if !row.Timestamp.IsZero() {
			stamps = append(stamps, float64(row.Timestamp.Unix()))
		}
	}

	for _, id := range order {
		s.Labels = append(s.Labels, *byID[id])
	}

	if s.Completed > 0 {
		s.PositiveRate = float64(s.Positives) / float64(s.Completed)
		s.RateLow, s.RateHigh = WilsonInterval(s.Positives, s.Completed, Confidence)
	}

	if gaps := gapsBetween(stamps); len(gaps) > 0 {
		s.MedianGapSec, _ = stats.Median(gaps)
		s.MeanGapSec, _ = stats.Mean(gaps)
	}

	return s
}

// WilsonInterval returns the Wilson score interval for k successes in n trials
func WilsonInterval(k, n int, confidence float64) (low, high float64) {
	if n <= 0 {
		return 0, 0
	}

	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	nf := float64(n)
	p := float64(k) / nf
	z2 := z * z

	denom := 1 + z2/nf
	center := (p + z2/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf)) / denom

	return math.Max(0, center-half), math.Min(1, center+half)
}

// gapsBetween returns the seconds between consecutive judgments
func gapsBetween(stamps []float64) []float64 {
	if len(stamps) < 2 {
		return nil
	}
	sorted := append([]float64(nil), stamps...)
	sort.Float64s(sorted)

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i]-sorted[i-1])
	}
	return gaps
}
