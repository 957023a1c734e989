package excel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"hpoannotate/domain/annotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trickyJudgments() []annotation.Judgment {
	return []annotation.Judgment{
		{
			Annotator: "alice",
			Record: annotation.Record{
				HPOLabel: "Seizure",
				HPOID:    "HP:0001250",
				Sentence: "He said \"no seizures\", then\nhad one.",
				Span:     "seizures\", then",
			},
			IsCorrect: annotation.VerdictCorrect,
			Timestamp: time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local),
		},
		{
			Annotator: "alice",
			Record:    annotation.Record{HPOLabel: "Ataxia", HPOID: "HP:0001251", Sentence: "a,b,c", Span: ""},
			IsCorrect: annotation.VerdictIncorrect,
			Timestamp: time.Date(2024, 3, 1, 9, 31, 0, 0, time.Local),
		},
		{
			Annotator: "alice",
			Record:    annotation.Record{HPOLabel: "Fever", HPOID: "HP:0001945", Sentence: "", Span: "x"},
		},
	}
}

func assertSameJudgments(t *testing.T, expected, actual []annotation.Judgment) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Fields(), actual[i].Fields(), "row %d", i)
		assert.True(t, expected[i].Timestamp.Equal(actual[i].Timestamp), "row %d", i)
	}
}

func TestCSVWriterQuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, trickyJudgments()[2:]))

	assert.Equal(t,
		`"annotator","hpo_label","hpo_id","sentence","span","is_correct","timestamp"`+"\n"+
			`"alice","Fever","HP:0001945","","x","",""`+"\n",
		buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	rows := trickyJudgments()
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, rows))

	parsed, err := ParseCSV(&buf)
	require.NoError(t, err)
	assertSameJudgments(t, rows, parsed)
}

func TestXLSXRoundTrip(t *testing.T) {
	rows := trickyJudgments()
	var buf bytes.Buffer
	require.NoError(t, XLSXWriter{}.Write(&buf, rows))

	parsed, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assertSameJudgments(t, rows, parsed)
}

func TestEmptyTableRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, nil))

	parsed, err := ParseCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestParseCSVRejectsForeignHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("\"a\",\"b\"\n\"1\",\"2\"\n"))
	assert.Error(t, err)
}
