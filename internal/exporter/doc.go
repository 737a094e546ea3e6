// Package exporter renders a reconciliation result.
//
// This package contains three outputs:
//
// WriteReport: the line-oriented surplus report. Comment lines start with '#'
// and carry the filter condition and counts; every other line is one surplus
// instrument id, sorted ascending.
//
// Summarize / Summary.Print: console summary with surplus counts grouped by
// exchange and by product class.
//
// WriteWorkbook: optional XLSX export with a Surplus sheet (one row per
// surplus cache key) and a Summary sheet.
//
// Both files are created through a FileStager, so they only appear at their
// destinations when the caller commits the run's outputs.
//
// Example usage:
//
//	rec := reconcile.Reconcile(codes, cache, cfg.Filter.Classes)
//	outputs := files.NewManager(logger)
//	defer outputs.Discard()
//	if err := exporter.WriteReport(outputs, "extra_instruments.txt", rec); err != nil {
//		return err
//	}
//	exporter.Summarize(rec).Print(os.Stdout)
//	return outputs.Commit()
package exporter
