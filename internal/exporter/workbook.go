package exporter

import (
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "inscompare/internal/errors"
	"inscompare/internal/reconcile"
	"inscompare/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SurplusSheet = "Surplus"
	SummarySheet = "Summary"
)

// WriteWorkbook writes the surplus list and its summary to an XLSX file
// staged for path
func WriteWorkbook(stager FileStager, path string, rec *domain.Reconciliation) error {
	slog.Info("Writing surplus workbook",
		slog.String("path", path),
		slog.Int("surplus", rec.Surplus.Len()))

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with Sheet1; rename it instead of adding a sheet
	if err := f.SetSheetName("Sheet1", SurplusSheet); err != nil {
		return apperrors.NewStorageError("failed to prepare workbook", err)
	}
	if err := writeSurplusSheet(f, rec); err != nil {
		return apperrors.NewStorageError("failed to write surplus sheet", err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return apperrors.NewStorageError("failed to prepare workbook", err)
	}
	if err := writeSummarySheet(f, Summarize(rec)); err != nil {
		return apperrors.NewStorageError("failed to write summary sheet", err)
	}

	file, err := stager.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(file); err != nil {
		file.Close()
		return apperrors.NewStorageError("failed to save workbook", err).
			WithContext("path", path)
	}
	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("failed to close workbook file", err).
			WithContext("path", path)
	}
	return nil
}

// writeSurplusSheet writes one row per surplus cache key, ordered by id then key
func writeSurplusSheet(f *excelize.File, rec *domain.Reconciliation) error {
	if err := f.SetSheetRow(SurplusSheet, "A1", &[]interface{}{"Instrument", "Key", "Exchange", "Class"}); err != nil {
		return err
	}

	byID := make(map[string][]string)
	for _, key := range rec.SurplusKeys() {
		id := rec.Filtered[key]
		byID[id] = append(byID[id], key)
	}

	row := 2
	for _, id := range rec.Surplus.Sorted() {
		for _, key := range byID[id] {
			class := domain.UnknownClass
			if entry, ok := rec.Cache.Entry(key); ok {
				if c, ok := entry.Class(); ok {
					class = c
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{id, key, reconcile.ExchangeOf(key), class}
			if err := f.SetSheetRow(SurplusSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

// writeSummarySheet writes the counters followed by the grouped tables
func writeSummarySheet(f *excelize.File, s Summary) error {
	rows := [][]interface{}{
		{"Filter", s.FilterPattern},
		{"CSV instruments", s.CSVCodes},
		{"JSON entries", s.JSONEntries},
		{"Total", s.Stats.Total},
		{"Expired", s.Stats.Expired},
		{"Not expired", s.Stats.NotExpired},
		{"Invalid class", s.Stats.InvalidClass},
		{"Passed filter", s.Stats.PassedFilter},
		{"Non-object entries", s.Stats.NonObject},
		{"Filtered keys", s.FilteredKeys},
		{"Filtered instrument ids", s.FilteredIDs},
		{"Surplus instruments", s.SurplusCount},
		{},
		{"Exchange", "Surplus keys"},
	}
	for _, g := range s.ByExchange {
		rows = append(rows, []interface{}{g.Name, g.Count})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Class", "Surplus keys"})
	for _, g := range s.ByClass {
		rows = append(rows, []interface{}{g.Name, g.Count})
	}

	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 28)
}
