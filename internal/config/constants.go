package config

// Application constants
const (
	// Application Info
	AppName = "inscompare"

	// EnvPrefix namespaces environment variables, e.g. INSCOMPARE_INPUTS_CSV_FILE
	EnvPrefix = "INSCOMPARE"

	// Default file names, relative to the working directory
	DefaultCSVFile    = "instruments.csv"
	DefaultJSONFile   = "latest_ins_cache.json"
	DefaultReportFile = "extra_instruments.txt"
	DefaultLogFile    = "logs/inscompare.log"

	// DefaultCodeColumn is the instrument-code header written by the CTP
	// instrument query tool
	DefaultCodeColumn = "合约代码"

	// Supported CSV encodings
	EncodingUTF8 = "utf-8"
	EncodingGBK  = "gbk"
)
