package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"inscompare/internal/config"
	"inscompare/internal/infrastructure"
	"inscompare/internal/operations"
	"inscompare/pkg/contracts"
)

// flagValues holds the raw command-line values; only flags the user set
// override the loaded configuration.
type flagValues struct {
	configFile  string
	csvFile     string
	jsonFile    string
	reportFile  string
	xlsxFile    string
	codeColumn  string
	encoding    string
	delimiter   string
	classes     []string
	metricsFile string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	flags := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Find instruments in the JSON cache that are missing from the CTP CSV export",
		Long: `inscompare reconciles two instrument inventories.

It reads the instrument codes from a CTP query CSV, keeps the live FUTURE,
OPTION and FUTURE_OPTION entries of a JSON instrument cache, normalizes
their keys to bare instrument ids and reports every id the CSV does not
contain.

Example:
  inscompare --csv instruments.csv --json latest_ins_cache.json --out extra_instruments.txt`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, flags)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stdout)

	f := rootCmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "YAML config file (default: inscompare.yaml or configs/inscompare.yaml)")
	f.StringVar(&flags.csvFile, "csv", config.DefaultCSVFile, "CTP instrument CSV export")
	f.StringVar(&flags.jsonFile, "json", config.DefaultJSONFile, "JSON instrument cache")
	f.StringVar(&flags.reportFile, "out", config.DefaultReportFile, "surplus report destination")
	f.StringVar(&flags.xlsxFile, "xlsx", "", "optional surplus workbook destination")
	f.StringVar(&flags.codeColumn, "column", config.DefaultCodeColumn, "CSV header of the instrument code column")
	f.StringVar(&flags.encoding, "encoding", config.EncodingUTF8, "CSV encoding: utf-8 or gbk")
	f.StringVar(&flags.delimiter, "delimiter", ",", "CSV field delimiter")
	f.StringArrayVar(&flags.classes, "class", nil, "accepted product class, repeatable (default FUTURE, OPTION, FUTURE_OPTION)")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	f.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}

func runCompare(cmd *cobra.Command, flags *flagValues) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(cmd.Context())
	runID := infrastructure.GetRunID(ctx)

	logger.InfoContext(ctx, "Starting instrument comparison",
		slog.String("version", contracts.Version),
		slog.String("config", cfg.String()))

	_, err = operations.Compare(ctx, runID, cfg, cmd.OutOrStdout(), logger)
	return err
}

// applyFlags copies every explicitly set flag onto cfg
func applyFlags(cmd *cobra.Command, flags *flagValues, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("csv") {
		cfg.Inputs.CSVFile = flags.csvFile
	}
	if changed("json") {
		cfg.Inputs.JSONFile = flags.jsonFile
	}
	if changed("out") {
		cfg.Output.ReportFile = flags.reportFile
	}
	if changed("xlsx") {
		cfg.Output.XLSXFile = flags.xlsxFile
	}
	if changed("column") {
		cfg.Inputs.CodeColumn = flags.codeColumn
	}
	if changed("encoding") {
		cfg.Inputs.Encoding = flags.encoding
	}
	if changed("delimiter") {
		cfg.Inputs.Delimiter = flags.delimiter
	}
	if changed("class") {
		cfg.Filter.Classes = flags.classes
	}
	if changed("metrics-file") {
		cfg.Metrics.TextfilePath = flags.metricsFile
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
}
