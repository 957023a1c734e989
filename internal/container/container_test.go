package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hpoannotate/internal/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sentences.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		`"hpo_label","hpo_id","sentence","span"`+"\n"+
			`"Seizure","HP:0001250","She had a seizure.","seizure"`+"\n"), 0o644))

	cfg := config.Default()
	cfg.Data.DatasetFile = path
	return cfg
}

func TestNewWiresComponents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Dir = filepath.Join(t.TempDir(), "exports")

	c, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, c.Service)
	require.NotNil(t, c.Metrics)
	require.NotNil(t, c.Archive)

	records, err := c.Dataset.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	count, err := testutil.GatherAndCount(c.Metrics.Registry(), "hpo_annotate_dataset_loads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	c.Sessions.Create()
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestNewWithoutMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	cfg.Data.GuidelinesFile = filepath.Join(t.TempDir(), "missing.md")

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, c.Metrics)
	assert.Nil(t, c.Archive)

	entry := c.Sessions.Create()
	assert.NotNil(t, entry.Session)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
