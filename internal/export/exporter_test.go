package export

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hpoannotate/adapters/excel"
	"hpoannotate/domain/annotation"
	"hpoannotate/domain/core"
	"hpoannotate/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportTime = time.Date(2024, 3, 1, 9, 45, 12, 0, time.Local)

func aliceTable(t *testing.T) *annotation.Table {
	t.Helper()
	table := annotation.NewTable([]annotation.Record{
		{HPOLabel: "Seizure", HPOID: "HP:0001250", Sentence: "She had a seizure.", Span: "seizure"},
		{HPOLabel: "Ataxia", HPOID: "HP:0001251", Sentence: "Gait was unsteady, \"ataxic\".", Span: "ataxic"},
		{HPOLabel: "Fever", HPOID: "HP:0001945", Sentence: "No fever.", Span: "fever"},
	}, "alice")
	require.NoError(t, table.Submit(0, annotation.VerdictCorrect, "alice", exportTime.Add(-2*time.Minute)))
	require.NoError(t, table.Submit(1, annotation.VerdictIncorrect, "alice", exportTime.Add(-time.Minute)))
	return table
}

type failingArchive struct{}

func (failingArchive) Store(ctx context.Context, filename string, payload []byte) (string, error) {
	return "", stderrors.New("disk full")
}

func TestFilename(t *testing.T) {
	tests := []struct {
		annotator string
		ext       string
		expected  string
	}{
		{"alice", ".csv", "hpo_annotations_alice_20240301_094512.csv"},
		{"Dr. Jane Doe", ".xlsx", "hpo_annotations_Dr._Jane_Doe_20240301_094512.xlsx"},
		{"../../etc/passwd", ".csv", "hpo_annotations_etc_passwd_20240301_094512.csv"},
		{"   ", ".csv", "hpo_annotations_anonymous_20240301_094512.csv"},
	}

	for _, test := range tests {
		t.Run(test.annotator, func(t *testing.T) {
			assert.Equal(t, test.expected, Filename(test.annotator, exportTime, test.ext))
		})
	}
}

func TestExportCSV(t *testing.T) {
	table := aliceTable(t)
	before := table.Snapshot()

	exporter := NewExporter(WithClock(core.FixedClock{T: exportTime}))
	artifact, err := exporter.Export(context.Background(), "alice", table.Snapshot(), "csv")
	require.NoError(t, err)

	assert.Equal(t, "hpo_annotations_alice_20240301_094512.csv", artifact.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", artifact.ContentType)
	assert.Equal(t, 3, artifact.Rows)
	assert.Equal(t, 2, artifact.Completed)
	assert.NotEmpty(t, artifact.ID.String())
	assert.Empty(t, artifact.ArchivePath)

	parsed, err := excel.ParseCSV(bytes.NewReader(artifact.Payload))
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, annotation.VerdictCorrect, parsed[0].IsCorrect)
	assert.Equal(t, annotation.VerdictIncorrect, parsed[1].IsCorrect)
	assert.Equal(t, annotation.VerdictUnset, parsed[2].IsCorrect)
	assert.True(t, parsed[2].Timestamp.IsZero())
	assert.Equal(t, "2024-03-01 09:43:12", parsed[0].TimestampString())

	assert.Equal(t, before, table.Snapshot(), "export must not change the table")
}

func TestExportXLSX(t *testing.T) {
	exporter := NewExporter(WithClock(core.FixedClock{T: exportTime}))
	artifact, err := exporter.Export(context.Background(), "alice", aliceTable(t).Snapshot(), "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "hpo_annotations_alice_20240301_094512.xlsx", artifact.Filename)

	parsed, err := excel.ParseXLSX(bytes.NewReader(artifact.Payload))
	require.NoError(t, err)
	assert.Len(t, parsed, 3)
}

func TestExportEmptyTable(t *testing.T) {
	exporter := NewExporter(WithClock(core.FixedClock{T: exportTime}))
	artifact, err := exporter.Export(context.Background(), "alice", nil, "csv")
	require.NoError(t, err)
	assert.Equal(t, 0, artifact.Rows)

	parsed, err := excel.ParseCSV(bytes.NewReader(artifact.Payload))
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := NewExporter().Export(context.Background(), "alice", nil, "json")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestExportArchives(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(
		WithClock(core.FixedClock{T: exportTime}),
		WithArchive(NewLocalFileStorage(dir)),
	)

	first, err := exporter.Export(context.Background(), "alice", aliceTable(t).Snapshot(), "csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, first.Filename), first.ArchivePath)

	content, err := os.ReadFile(first.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, first.Payload, content)

	second, err := exporter.Export(context.Background(), "alice", aliceTable(t).Snapshot(), "csv")
	require.NoError(t, err)
	assert.NotEqual(t, first.ArchivePath, second.ArchivePath, "same-second exports must not overwrite")

	_, err = os.Stat(second.ArchivePath)
	assert.NoError(t, err)
}

func TestExportSurvivesArchiveFailure(t *testing.T) {
	exporter := NewExporter(WithArchive(failingArchive{}))
	artifact, err := exporter.Export(context.Background(), "alice", aliceTable(t).Snapshot(), "csv")
	require.NoError(t, err)
	assert.NotEmpty(t, artifact.Payload)
	assert.Empty(t, artifact.ArchivePath)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "xlsx"}, NewExporter().Formats())
}
