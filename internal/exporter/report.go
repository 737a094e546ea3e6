package exporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "inscompare/internal/errors"
	"inscompare/pkg/contracts/domain"
)

// ReportTitle is the first comment line of the surplus report
const ReportTitle = "Instruments present in the filtered JSON cache but missing from the CSV"

// FileStager hands out the file that will become path once every output of
// the run has been written
type FileStager interface {
	Create(path string) (*os.File, error)
}

// WriteReport writes the surplus report: '#' comment lines with the filter
// condition and counts, then one surplus id per line in ascending order.
func WriteReport(stager FileStager, path string, rec *domain.Reconciliation) error {
	slog.Info("Writing surplus report",
		slog.String("path", path),
		slog.Int("surplus", rec.Surplus.Len()))

	file, err := stager.Create(path)
	if err != nil {
		return err
	}

	if err := FormatReport(file, rec); err != nil {
		file.Close()
		return apperrors.NewStorageError("failed to write report file", err).
			WithContext("path", path)
	}

	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("failed to close report file", err).
			WithContext("path", path)
	}
	return nil
}

// FormatReport renders the report body to w
func FormatReport(w io.Writer, rec *domain.Reconciliation) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n", ReportTitle)
	fmt.Fprintf(bw, "# Filter: %s\n", rec.FilterCondition)
	fmt.Fprintf(bw, "# Filtered JSON keys: %d\n", len(rec.Filtered))
	fmt.Fprintf(bw, "# Filtered instrument ids (deduplicated): %d\n", rec.FilteredIDs().Len())
	fmt.Fprintf(bw, "# CSV instruments: %d\n", rec.Codes.Len())
	fmt.Fprintf(bw, "# Surplus instruments: %d\n", rec.Surplus.Len())
	fmt.Fprintln(bw, "#")

	for _, id := range rec.Surplus.Sorted() {
		fmt.Fprintln(bw, id)
	}

	// bufio.Writer keeps the first write error and returns it here
	return bw.Flush()
}
