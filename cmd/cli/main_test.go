package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportCSV = `"annotator","hpo_label","hpo_id","sentence","span","is_correct","timestamp"
"alice","Seizure","HP:0001250","She had a seizure, twice.","seizure","1","2024-03-01 09:30:00"
"alice","Ataxia","HP:0001251","Gait was ""unsteady"".","ataxic","0","2024-03-01 09:30:20"
"alice","Fever","HP:0001945","No fever.","fever","",""
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentences.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		`"hpo_label","hpo_id","sentence","span"`+"\n"+
			`"Seizure","HP:0001250","She had a seizure.","seizure"`+"\n"), 0o644))

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 records")
	assert.Contains(t, out, "first: Seizure (HP:0001250)")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hpo_annotations_alice.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o644))

	out, err := execute(t, "summary", path, "--labels")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed: 2/3 annotations")
	assert.Contains(t, out, "Yes: 1  No: 1")
	assert.Contains(t, out, "Median time between judgments: 20s")
	assert.Contains(t, out, "Fever (HP:0001945): 0 yes, 0 no, 1 total")
}

func TestConvertToXLSXAndBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o644))

	outDir := filepath.Join(dir, "out")
	out, err := execute(t, "convert", path, "--format", "xlsx", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "(3 rows)")

	matches, err := filepath.Glob(filepath.Join(outDir, "hpo_annotations_alice_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	out, err = execute(t, "summary", matches[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Completed: 2/3 annotations")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "hpoannotate dev\n", out)
}
