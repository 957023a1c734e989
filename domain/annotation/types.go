package annotation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Time layouts used for judgment timestamps and export filenames
const (
	TimestampLayout = "2006-01-02 15:04:05"
	FileStampLayout = "20060102_150405"
)

// Required dataset columns, in canonical order
const (
	ColumnHPOLabel = "hpo_label"
	ColumnHPOID    = "hpo_id"
	ColumnSentence = "sentence"
	ColumnSpan     = "span"
)

// RequiredColumns lists the columns every dataset must carry
var RequiredColumns = []string{ColumnHPOLabel, ColumnHPOID, ColumnSentence, ColumnSpan}

// ExportColumns lists the columns of an exported annotation table
var ExportColumns = []string{"annotator", ColumnHPOLabel, ColumnHPOID, ColumnSentence, ColumnSpan, "is_correct", "timestamp"}

// Record is one (term, sentence, span) unit presented for review.
// Records are never mutated after load.
type Record struct {
	HPOLabel string `json:"hpo_label"`
	HPOID    string `json:"hpo_id"`
	Sentence string `json:"sentence"`
	Span     string `json:"span"`
}

// Verdict is the tri-state is_correct value of a judgment
type Verdict int8

const (
	VerdictUnset Verdict = iota
	VerdictIncorrect
	VerdictCorrect
)

// VerdictFromBool converts a yes/no answer to a verdict
func VerdictFromBool(correct bool) Verdict {
	if correct {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// ParseVerdict parses the exported text form ("", "0", "1").
// "true"/"false" and "1.0"/"0.0" are accepted for tables edited in spreadsheets.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return VerdictUnset, nil
	case "1", "1.0", "true":
		return VerdictCorrect, nil
	case "0", "0.0", "false":
		return VerdictIncorrect, nil
	default:
		return VerdictUnset, fmt.Errorf("invalid is_correct value %q", s)
	}
}

// IsSet reports whether a judgment has been recorded
func (v Verdict) IsSet() bool {
	return v != VerdictUnset
}

// String returns the exported text form
func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "1"
	case VerdictIncorrect:
		return "0"
	default:
		return ""
	}
}

// MarshalJSON encodes unset as null and set verdicts as 1/0
func (v Verdict) MarshalJSON() ([]byte, error) {
	if !v.IsSet() {
		return []byte("null"), nil
	}
	return []byte(v.String()), nil
}

// Judgment is the mutable annotation outcome for the record at the same index.
// The embedded Record is a snapshot taken when the table is built.
type Judgment struct {
	Annotator string `json:"annotator"`
	Record
	IsCorrect Verdict   `json:"is_correct"`
	Timestamp time.Time `json:"-"`
}

// TimestampString returns the formatted timestamp, or "" when unset
func (j Judgment) TimestampString() string {
	if j.Timestamp.IsZero() {
		return ""
	}
	return j.Timestamp.Format(TimestampLayout)
}

// MarshalJSON adds the formatted timestamp, null when unset
func (j Judgment) MarshalJSON() ([]byte, error) {
	type plain Judgment
	var ts *string
	if formatted := j.TimestampString(); formatted != "" {
		ts = &formatted
	}
	return json.Marshal(struct {
		plain
		Timestamp *string `json:"timestamp"`
	}{plain(j), ts})
}

// Fields returns the judgment as an export row in ExportColumns order
func (j Judgment) Fields() []string {
	return []string{
		j.Annotator,
		j.HPOLabel,
		j.HPOID,
		j.Sentence,
		j.Span,
		j.IsCorrect.String(),
		j.TimestampString(),
	}
}

// JudgmentFromFields is the inverse of Fields
func JudgmentFromFields(fields []string) (Judgment, error) {
	if len(fields) != len(ExportColumns) {
		return Judgment{}, fmt.Errorf("expected %d fields, got %d", len(ExportColumns), len(fields))
	}

	verdict, err := ParseVerdict(fields[5])
	if err != nil {
		return Judgment{}, err
	}

	var ts time.Time
	if fields[6] != "" {
		ts, err = time.ParseInLocation(TimestampLayout, fields[6], time.Local)
		if err != nil {
			return Judgment{}, fmt.Errorf("invalid timestamp %q: %w", fields[6], err)
		}
	}

	return Judgment{
		Annotator: fields[0],
		Record: Record{
			HPOLabel: fields[1],
			HPOID:    fields[2],
			Sentence: fields[3],
			Span:     fields[4],
		},
		IsCorrect: verdict,
		Timestamp: ts,
	}, nil
}
