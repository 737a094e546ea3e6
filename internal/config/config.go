package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "inscompare/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Inputs  InputsConfig  `yaml:"inputs"`
	Output  OutputConfig  `yaml:"output"`
	Filter  FilterConfig  `yaml:"filter"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// InputsConfig locates and describes the two datasets being compared
type InputsConfig struct {
	CSVFile    string `yaml:"csv_file" split_words:"true" validate:"required"`
	JSONFile   string `yaml:"json_file" split_words:"true" validate:"required"`
	CodeColumn string `yaml:"code_column" split_words:"true" validate:"required"`
	Delimiter  string `yaml:"delimiter" validate:"required,len=1"`
	Encoding   string `yaml:"encoding" validate:"oneof=utf-8 gbk"`
}

// OutputConfig contains report destinations
type OutputConfig struct {
	ReportFile string `yaml:"report_file" split_words:"true" validate:"required"`
	XLSXFile   string `yaml:"xlsx_file" split_words:"true"`
}

// FilterConfig contains the product classes accepted by the filter
type FilterConfig struct {
	Classes []string `yaml:"classes" validate:"min=1,dive,required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" split_words:"true"`
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file and INSCOMPARE_* environment variables, in increasing precedence.
// An empty configFile means the default locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, apperrors.NewConfigError("failed to load config file", err).
					WithContext("path", configFile)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes logging values
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Inputs.Encoding = normalizeEncoding(c.Inputs.Encoding)

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// DelimiterRune returns the CSV delimiter as a rune
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Inputs.Delimiter)
	return r
}

// normalizeEncoding maps common spellings onto the supported encodings
func normalizeEncoding(enc string) string {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8
	case "gbk", "gb2312", "cp936", "gb18030":
		return EncodingGBK
	default:
		return enc
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"inscompare.yaml",
		"configs/inscompare.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			CSVFile:    DefaultCSVFile,
			JSONFile:   DefaultJSONFile,
			CodeColumn: DefaultCodeColumn,
			Delimiter:  ",",
			Encoding:   EncodingUTF8,
		},
		Output: OutputConfig{
			ReportFile: DefaultReportFile,
		},
		Filter: FilterConfig{
			Classes: []string{"FUTURE", "OPTION", "FUTURE_OPTION"},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
	}
}

// String renders the effective configuration for debug logging
func (c *Config) String() string {
	return fmt.Sprintf("csv=%s json=%s column=%q encoding=%s out=%s xlsx=%s classes=%v",
		c.Inputs.CSVFile, c.Inputs.JSONFile, c.Inputs.CodeColumn, c.Inputs.Encoding,
		c.Output.ReportFile, c.Output.XLSXFile, c.Filter.Classes)
}
