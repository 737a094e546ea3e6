// Package config provides configuration management for inscompare.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Default values (Default)
//  2. YAML file (--config, or inscompare.yaml / configs/inscompare.yaml)
//  3. .env file in the working directory
//  4. Environment variables
//  5. Command line flags (applied by cmd/inscompare)
//
// # Environment Variables
//
// All environment variables follow the pattern INSCOMPARE_<SECTION>_<FIELD>:
//
//	INSCOMPARE_INPUTS_CSV_FILE=instruments_20260204_152938.csv
//	INSCOMPARE_INPUTS_ENCODING=gbk
//	INSCOMPARE_OUTPUT_REPORT_FILE=extra_instruments.txt
//	INSCOMPARE_FILTER_CLASSES=FUTURE,OPTION,FUTURE_OPTION
//	INSCOMPARE_LOGGING_LEVEL=debug
//	INSCOMPARE_METRICS_TEXTFILE_PATH=/var/lib/node_exporter/inscompare.prom
//
// # Validation
//
// Validate must be called once all layers are applied. It checks required
// paths, the supported encodings and log levels, and that the delimiter is a
// single character.
package config
