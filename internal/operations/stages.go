package operations

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "inscompare/internal/errors"
	"inscompare/internal/exporter"
	"inscompare/internal/loader"
	"inscompare/internal/reconcile"
	"inscompare/pkg/contracts/domain"
)

// LoadCSVStage reads the instrument codes from the CSV export
type LoadCSVStage struct {
	BaseStage
	options *StageOptions
}

// NewLoadCSVStage creates the CSV loading step
func NewLoadCSVStage(options *StageOptions) *LoadCSVStage {
	return &LoadCSVStage{
		BaseStage: NewBaseStage(StageIDLoadCSV, StageNameLoadCSV),
		options:   options,
	}
}

// Execute loads the code set into state.Codes
func (s *LoadCSVStage) Execute(ctx context.Context, state *OperationState) error {
	opts := s.options.CSV
	if opts.Logger == nil {
		opts.Logger = s.options.logger()
	}
	codes, err := loader.LoadCodes(s.options.CSVFile, opts)
	if err != nil {
		return err
	}
	state.Codes = codes
	return nil
}

// LoadJSONStage reads the JSON instrument cache
type LoadJSONStage struct {
	BaseStage
	options *StageOptions
}

// NewLoadJSONStage creates the JSON loading step
func NewLoadJSONStage(options *StageOptions) *LoadJSONStage {
	return &LoadJSONStage{
		BaseStage: NewBaseStage(StageIDLoadJSON, StageNameLoadJSON),
		options:   options,
	}
}

// Execute loads the cache into state.Cache
func (s *LoadJSONStage) Execute(ctx context.Context, state *OperationState) error {
	cache, err := loader.LoadCache(s.options.JSONFile, s.options.logger())
	if err != nil {
		return err
	}
	state.Cache = cache
	return nil
}

// FilterStage keeps live entries of the accepted classes
type FilterStage struct {
	BaseStage
	options *StageOptions
}

// NewFilterStage creates the filter step
func NewFilterStage(options *StageOptions) *FilterStage {
	return &FilterStage{
		BaseStage: NewBaseStage(StageIDFilter, StageNameFilter),
		options:   options,
	}
}

// Execute fills state.Filtered and state.Stats
func (s *FilterStage) Execute(ctx context.Context, state *OperationState) error {
	if state.Cache == nil {
		return apperrors.NewAppValidationError("filter requires a loaded cache")
	}
	state.Filtered, state.Stats = reconcile.Filter(state.Cache, reconcile.NewClassSet(s.options.Classes...))

	s.options.logger().InfoContext(ctx, "Filtered instrument cache",
		slog.Int("total", state.Stats.Total),
		slog.Int("expired", state.Stats.Expired),
		slog.Int("invalid_class", state.Stats.InvalidClass),
		slog.Int("passed_filter", state.Stats.PassedFilter),
		slog.Int("non_object", state.Stats.NonObject))
	return nil
}

// DiffStage subtracts the CSV codes from the filtered ids
type DiffStage struct {
	BaseStage
	options *StageOptions
}

// NewDiffStage creates the set difference step
func NewDiffStage(options *StageOptions) *DiffStage {
	return &DiffStage{
		BaseStage: NewBaseStage(StageIDDiff, StageNameDiff),
		options:   options,
	}
}

// Execute assembles state.Result
func (s *DiffStage) Execute(ctx context.Context, state *OperationState) error {
	if state.Codes == nil || state.Filtered == nil {
		return apperrors.NewAppValidationError("diff requires the code set and the filtered cache")
	}
	state.Result = &domain.Reconciliation{
		Codes:           state.Codes,
		Cache:           state.Cache,
		Filtered:        state.Filtered,
		Stats:           state.Stats,
		Surplus:         reconcile.Surplus(state.Filtered, state.Codes),
		FilterCondition: reconcile.FilterCondition(s.options.Classes),
	}

	s.options.logger().InfoContext(ctx, "Computed surplus instruments",
		slog.Int("filtered_ids", state.Result.FilteredIDs().Len()),
		slog.Int("surplus", state.Result.Surplus.Len()))
	return nil
}

// ReportStage prints the summary and writes the report files
type ReportStage struct {
	BaseStage
	options *StageOptions
}

// NewReportStage creates the report step
func NewReportStage(options *StageOptions) *ReportStage {
	return &ReportStage{
		BaseStage: NewBaseStage(StageIDReport, StageNameReport),
		options:   options,
	}
}

// Execute prints the summary, then stages the text report and the
// optional workbook
func (s *ReportStage) Execute(ctx context.Context, state *OperationState) error {
	if state.Result == nil {
		return apperrors.NewAppValidationError("report requires a computed result")
	}
	logger := s.options.logger()

	if s.options.Summary != nil {
		if err := exporter.Summarize(state.Result).Print(s.options.Summary); err != nil {
			return fmt.Errorf("failed to print summary: %w", err)
		}
	}

	if s.options.Files == nil {
		return apperrors.NewAppValidationError("report requires a file stager")
	}

	if err := exporter.WriteReport(s.options.Files, s.options.ReportFile, state.Result); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Staged surplus report",
		slog.String("path", s.options.ReportFile),
		slog.Int("surplus", state.Result.Surplus.Len()))

	if s.options.XLSXFile != "" {
		if err := exporter.WriteWorkbook(s.options.Files, s.options.XLSXFile, state.Result); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Staged surplus workbook",
			slog.String("path", s.options.XLSXFile))
	}
	return nil
}

// NewComparisonSteps returns the five comparison steps in execution order
func NewComparisonSteps(options *StageOptions) []Step {
	return []Step{
		NewLoadCSVStage(options),
		NewLoadJSONStage(options),
		NewFilterStage(options),
		NewDiffStage(options),
		NewReportStage(options),
	}
}
