package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndTextfile(t *testing.T) {
	before := testutil.ToFloat64(RowsPersisted.WithLabelValues("unit_test"))
	RowsPersisted.WithLabelValues("unit_test").Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(RowsPersisted.WithLabelValues("unit_test")))

	ObservePhase("unit_test", time.Now().Add(-time.Second))

	path := filepath.Join(t.TempDir(), "hotspotter.prom")
	require.NoError(t, WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hotspotter_rows_persisted_total{table="unit_test"}`)
	assert.Contains(t, string(data), "hotspotter_phase_duration_seconds_bucket")
}

func TestWriteFileBadPath(t *testing.T) {
	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}
