package exporter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "inscompare/internal/errors"
	"inscompare/internal/files"
	"inscompare/internal/reconcile"
	"inscompare/pkg/contracts/domain"
)

var defaultClasses = []string{"FUTURE", "OPTION", "FUTURE_OPTION"}

// sampleReconciliation builds a small but complete result:
// CSV {IF2312, HO2301-C-2325}, surplus {IF, IF2403, au2506C640}
func sampleReconciliation() *domain.Reconciliation {
	cache := domain.NewInstrumentCache(map[string]any{
		"CFFEX.IF2312":        map[string]any{"expired": false, "class": "FUTURE"},
		"CFFEX.IF2403":        map[string]any{"expired": false, "class": "FUTURE"},
		"CFFEX.IF":            map[string]any{"expired": false, "class": "FUTURE"},
		"CFFEX.HO2301-C-2325": map[string]any{"expired": false, "class": "OPTION"},
		"SHFE.au2506C640":     map[string]any{"expired": false, "class": "FUTURE_OPTION"},
		"KQ.i@CFFEX.IF":       map[string]any{"expired": false, "class": "FUTURE_INDEX"},
		"SHFE.cu2001":         map[string]any{"expired": true, "class": "FUTURE"},
	})
	codes := domain.NewCodeSet("IF2312", "HO2301-C-2325")
	return reconcile.Reconcile(codes, cache, defaultClasses)
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, sampleReconciliation()))

	want := strings.Join([]string{
		"# " + ReportTitle,
		"# Filter: !expired && (class == FUTURE || class == OPTION || class == FUTURE_OPTION)",
		"# Filtered JSON keys: 5",
		"# Filtered instrument ids (deduplicated): 5",
		"# CSV instruments: 2",
		"# Surplus instruments: 3",
		"#",
		"IF",
		"IF2403",
		"au2506C640",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestFormatReport_SingleSurplus(t *testing.T) {
	cache := domain.NewInstrumentCache(map[string]any{
		"CFFEX.IF2312": map[string]any{"expired": false, "class": "FUTURE"},
		"CFFEX.IF2403": map[string]any{"expired": false, "class": "FUTURE"},
	})
	rec := reconcile.Reconcile(domain.NewCodeSet("IF2312"), cache, defaultClasses)

	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, rec))

	var body []string
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "#") {
			body = append(body, line)
		}
	}
	assert.Equal(t, []string{"IF2403"}, body)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestFormatReport_WriteError(t *testing.T) {
	err := FormatReport(failingWriter{}, sampleReconciliation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "extra_instruments.txt")

	stager := files.NewManager(nil)
	require.NoError(t, WriteReport(stager, path, sampleReconciliation()))
	assert.NoFileExists(t, path, "report must stay staged until commit")
	require.NoError(t, stager.Commit())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	var ids []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			ids = append(ids, line)
		}
	}
	assert.Equal(t, []string{"IF", "IF2403", "au2506C640"}, ids)
}

func TestWriteReport_Errors(t *testing.T) {
	t.Run("path is a directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "taken")
		require.NoError(t, os.Mkdir(target, 0755))

		stager := files.NewManager(nil)
		require.NoError(t, WriteReport(stager, target, sampleReconciliation()))
		err := stager.Commit()
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "staged file must be removed")
	})

	t.Run("parent is a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		err := WriteReport(files.NewManager(nil), filepath.Join(blocker, "out.txt"), sampleReconciliation())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleReconciliation())

	assert.Equal(t, 2, s.CSVCodes)
	assert.Equal(t, 7, s.JSONEntries)
	assert.Equal(t, 5, s.FilteredKeys)
	assert.Equal(t, 5, s.FilteredIDs)
	assert.Equal(t, 3, s.SurplusCount)
	assert.Equal(t, []GroupCount{{"CFFEX", 2}, {"SHFE", 1}}, s.ByExchange)
	assert.Equal(t, []GroupCount{{"FUTURE", 2}, {"FUTURE_OPTION", 1}}, s.ByClass)
}

func TestSummarize_CountsPerKey(t *testing.T) {
	cache := domain.NewInstrumentCache(map[string]any{
		"CFFEX.IF":      map[string]any{"expired": false, "class": "FUTURE"},
		"KQ.i@CFFEX.IF": map[string]any{"expired": false, "class": "FUTURE"},
		"IF":            map[string]any{"expired": false, "class": "FUTURE"},
	})
	rec := reconcile.Reconcile(domain.NewCodeSet(), cache, defaultClasses)

	s := Summarize(rec)
	assert.Equal(t, 1, s.SurplusCount)
	assert.Equal(t, []GroupCount{{"CFFEX", 1}, {"KQ", 1}, {domain.UnknownExchange, 1}}, s.ByExchange)
	assert.Equal(t, []GroupCount{{"FUTURE", 3}}, s.ByClass)
}

func TestSummary_Print(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summarize(sampleReconciliation()).Print(&buf))

	out := buf.String()
	assert.Contains(t, out, "CSV instruments: 2\n")
	assert.Contains(t, out, "  expired: 1\n")
	assert.Contains(t, out, "  passed filter: 5\n")
	assert.Contains(t, out, "Surplus instruments: 3\n")
	assert.Contains(t, out, "By exchange:\n  CFFEX: 2\n  SHFE: 1\n")
	assert.Contains(t, out, "By product class:\n  FUTURE: 2\n  FUTURE_OPTION: 1\n")
	assert.NotContains(t, out, "non-object")
}

func TestSummary_PrintNoSurplus(t *testing.T) {
	rec := reconcile.Reconcile(domain.NewCodeSet(), domain.NewInstrumentCache(nil), defaultClasses)

	var buf bytes.Buffer
	require.NoError(t, Summarize(rec).Print(&buf))
	assert.Contains(t, buf.String(), "Surplus instruments: 0\n")
	assert.NotContains(t, buf.String(), "By exchange")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra_instruments.xlsx")
	stager := files.NewManager(nil)
	require.NoError(t, WriteWorkbook(stager, path, sampleReconciliation()))
	require.NoError(t, stager.Commit())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SurplusSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(SurplusSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Instrument", "Key", "Exchange", "Class"},
		{"IF", "CFFEX.IF", "CFFEX", "FUTURE"},
		{"IF2403", "CFFEX.IF2403", "CFFEX", "FUTURE"},
		{"au2506C640", "SHFE.au2506C640", "SHFE", "FUTURE_OPTION"},
	}, rows)

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.NotEmpty(t, summary)
	assert.Equal(t, []string{"Filter", "!expired && (class == FUTURE || class == OPTION || class == FUTURE_OPTION)"}, summary[0])
	assert.Equal(t, []string{"Surplus instruments", "3"}, summary[11])
}

func TestWriteWorkbook_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := WriteWorkbook(files.NewManager(nil), filepath.Join(blocker, "x.xlsx"), sampleReconciliation())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
