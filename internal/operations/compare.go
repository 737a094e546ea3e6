package operations

import (
	"context"
	"io"
	"log/slog"
	"time"

	"inscompare/internal/config"
	"inscompare/internal/files"
	"inscompare/internal/infrastructure"
	"inscompare/internal/loader"
	"inscompare/internal/metrics"
)

// OptionsFromConfig maps a validated configuration onto step options
func OptionsFromConfig(cfg *config.Config, summary io.Writer, logger *slog.Logger) *StageOptions {
	return &StageOptions{
		CSVFile:  cfg.Inputs.CSVFile,
		JSONFile: cfg.Inputs.JSONFile,
		CSV: loader.CSVOptions{
			CodeColumn: cfg.Inputs.CodeColumn,
			Delimiter:  cfg.DelimiterRune(),
			Encoding:   cfg.Inputs.Encoding,
			Logger:     logger,
		},
		Classes:    cfg.Filter.Classes,
		ReportFile: cfg.Output.ReportFile,
		XLSXFile:   cfg.Output.XLSXFile,
		Summary:    summary,
		Logger:     logger,
	}
}

// Compare runs the full comparison described by cfg. The summary is printed
// to summary. Output files are staged and moved into place only once every
// one of them has been written; a failed run leaves none of them behind.
// The metrics textfile is rewritten after a successful run only, so a stale
// last-success timestamp signals failures.
func Compare(ctx context.Context, id string, cfg *config.Config, summary io.Writer, logger *slog.Logger) (*OperationState, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	recorder := metrics.NewRecorder()
	state := NewOperationState(id)

	outputs := files.NewManager(logger)
	defer outputs.Discard()

	opts := OptionsFromConfig(cfg, summary, logger)
	opts.Files = outputs

	runner := NewRunner(logger, recorder)
	if err := runner.Run(ctx, state, NewComparisonSteps(opts)...); err != nil {
		return state, err
	}

	if path := cfg.Metrics.TextfilePath; path != "" {
		recorder.ObserveReconciliation(state.Result)
		recorder.MarkSuccess(time.Now())
		if err := recorder.WriteTextfile(outputs, path); err != nil {
			state.Fail(err)
			return state, err
		}
	}

	logger.InfoContext(ctx, "Committing output files",
		slog.Any("paths", outputs.Pending()))
	if err := outputs.Commit(); err != nil {
		state.Fail(err)
		return state, err
	}
	return state, nil
}
