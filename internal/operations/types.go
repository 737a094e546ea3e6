package operations

import (
	"io"
	"log/slog"

	"inscompare/internal/exporter"
	"inscompare/internal/infrastructure"
	"inscompare/internal/loader"
)

// Step IDs
const (
	StageIDLoadCSV  = "load_csv"
	StageIDLoadJSON = "load_json"
	StageIDFilter   = "filter"
	StageIDDiff     = "diff"
	StageIDReport   = "report"
)

// Step names
const (
	StageNameLoadCSV  = "CSV Loading"
	StageNameLoadJSON = "JSON Cache Loading"
	StageNameFilter   = "Filter and Normalize"
	StageNameDiff     = "Set Difference"
	StageNameReport   = "Report"
)

// StageOptions carries what the comparison steps need from the outside
type StageOptions struct {
	CSVFile  string
	JSONFile string
	CSV      loader.CSVOptions

	// Classes accepted by the filter
	Classes []string

	ReportFile string
	// XLSXFile is optional; empty skips the workbook
	XLSXFile string

	// Summary receives the console summary; nil discards it
	Summary io.Writer

	// Files stages the report outputs; the caller commits them
	Files exporter.FileStager

	Logger *slog.Logger
}

func (o *StageOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return infrastructure.GetLogger()
	}
	return o.Logger
}
