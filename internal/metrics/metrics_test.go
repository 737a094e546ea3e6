package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inscompare/internal/errors"
	"inscompare/internal/files"
	"inscompare/internal/reconcile"
	"inscompare/pkg/contracts/domain"
)

func sampleReconciliation() *domain.Reconciliation {
	cache := domain.NewInstrumentCache(map[string]any{
		"CFFEX.IF2312":    map[string]any{"expired": false, "class": "FUTURE"},
		"CFFEX.IF2403":    map[string]any{"expired": false, "class": "FUTURE"},
		"SHFE.au2506C640": map[string]any{"expired": false, "class": "FUTURE_OPTION"},
		"KQ.i@CFFEX.IF":   map[string]any{"expired": false, "class": "FUTURE_INDEX"},
		"SHFE.cu2001":     map[string]any{"expired": true, "class": "FUTURE"},
		"note":            "not an instrument",
	})
	return reconcile.Reconcile(domain.NewCodeSet("IF2312"), cache, []string{"FUTURE", "OPTION", "FUTURE_OPTION"})
}

func TestRecorder_ObserveReconciliation(t *testing.T) {
	r := NewRecorder()
	r.ObserveReconciliation(sampleReconciliation())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.CSVCodes))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.JSONEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FilterEntries.WithLabelValues(OutcomeExpired)))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.FilterEntries.WithLabelValues(OutcomeNotExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FilterEntries.WithLabelValues(OutcomeInvalidClass)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.FilterEntries.WithLabelValues(OutcomePassed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FilterEntries.WithLabelValues(OutcomeNonObject)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.FilteredIDs))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Surplus.WithLabelValues("CFFEX")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Surplus.WithLabelValues("SHFE")))
}

func TestRecorder_SurplusResetBetweenRuns(t *testing.T) {
	r := NewRecorder()
	r.ObserveReconciliation(sampleReconciliation())

	empty := reconcile.Reconcile(domain.NewCodeSet(), domain.NewInstrumentCache(nil), []string{"FUTURE"})
	r.ObserveReconciliation(empty)

	assert.Equal(t, 0, testutil.CollectAndCount(r.Surplus))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveReconciliation(sampleReconciliation())
	r.ObserveStep("load_csv", 250*time.Millisecond)
	r.MarkSuccess(time.Unix(1770190178, 0))

	path := filepath.Join(t.TempDir(), "textfile", "inscompare.prom")
	stager := files.NewManager(nil)
	require.NoError(t, r.WriteTextfile(stager, path))
	require.NoError(t, stager.Commit())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# TYPE inscompare_csv_codes gauge")
	assert.Contains(t, text, `inscompare_filter_entries{outcome="passed_filter"} 3`)
	assert.Contains(t, text, `inscompare_step_duration_seconds{step="load_csv"} 0.25`)
	assert.Contains(t, text, `inscompare_surplus_instruments{exchange="SHFE"} 1`)
	assert.True(t, strings.Contains(text, "inscompare_last_success_timestamp_seconds 1.770190178e+09"))
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	r := NewRecorder()

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := r.WriteTextfile(files.NewManager(nil), filepath.Join(blocker, "inscompare.prom"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestRecorder_Registry(t *testing.T) {
	r := NewRecorder()

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	// vectors without children are not gathered
	assert.Len(t, families, 4)
}
