package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"inscompare/internal/config"
	apperrors "inscompare/internal/errors"
	"inscompare/pkg/contracts/domain"
)

// maxLineBytes bounds a single line in the recovery parser
const maxLineBytes = 1 << 20

// maxFieldChars is the conventional csv field size limit; a longer field
// means the quoting went wrong and the structured read cannot be trusted.
const maxFieldChars = 131072

var errFieldTooLarge = stderrors.New("field larger than field limit")

// CSVOptions controls how the instrument CSV is read
type CSVOptions struct {
	// CodeColumn is the exact header of the instrument-code column
	CodeColumn string
	// Delimiter separates fields; zero means ','
	Delimiter rune
	// Encoding is config.EncodingUTF8 or config.EncodingGBK
	Encoding string
	// Logger receives parse diagnostics; nil means slog.Default()
	Logger *slog.Logger
}

func (o CSVOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o CSVOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// LoadCodes reads the instrument codes from the CSV file at path.
func LoadCodes(path string, opts CSVOptions) (domain.CodeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open CSV file %s", path), err)
	}
	defer f.Close()

	codes, err := ParseCodes(f, opts)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}

	opts.logger().Info("Loaded CSV instrument codes",
		slog.String("path", path),
		slog.Int("count", codes.Len()))
	return codes, nil
}

// ParseCodes reads instrument codes from r. The first record is the header.
// When the strict CSV reader rejects the input, a line-based parser that takes
// the first field of every non-blank line after the header is used instead.
func ParseCodes(r io.Reader, opts CSVOptions) (domain.CodeSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read CSV input", err)
	}

	text, err := decode(raw, opts.Encoding)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to decode CSV as %s", opts.Encoding), err)
	}

	codes, err := parseStrict(text, opts)
	if err == nil {
		return codes, nil
	}

	var parseErr *csv.ParseError
	if !stderrors.As(err, &parseErr) {
		return nil, apperrors.NewParsingError("failed to read CSV", err)
	}

	opts.logger().Warn("Malformed CSV, retrying with line-based parser",
		slog.Int("line", parseErr.Line),
		slog.Int("column", parseErr.Column),
		slog.String("error", parseErr.Err.Error()))

	codes, err = parseLines(text, opts)
	if err != nil {
		return nil, apperrors.NewParsingError("line-based CSV recovery failed", err).
			WithContext("strict_error", parseErr.Error())
	}

	opts.logger().Info("Recovered CSV with line-based parser", slog.Int("count", codes.Len()))
	return codes, nil
}

// parseStrict reads the file with encoding/csv, looking up the code column by
// its exact header name. Short rows simply lack the field. Stray quotes inside
// a field are kept literally, so only an oversized field is reported as a
// *csv.ParseError.
func parseStrict(text string, opts CSVOptions) (domain.CodeSet, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = opts.delimiter()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	codes := make(domain.CodeSet)

	header, err := reader.Read()
	if err == io.EOF {
		return codes, nil
	}
	if err != nil {
		return nil, err
	}
	if err := checkFieldSizes(reader, header); err != nil {
		return nil, err
	}

	column := -1
	for i, name := range header {
		if name == opts.CodeColumn {
			column = i
			break
		}
	}
	if column < 0 {
		opts.logger().Warn("CSV header has no instrument code column",
			slog.String("column", opts.CodeColumn),
			slog.Int("header_fields", len(header)))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := checkFieldSizes(reader, record); err != nil {
			return nil, err
		}
		if column < 0 || column >= len(record) {
			continue
		}
		if code := cleanCode(record[column]); code != "" {
			codes.Add(code)
		}
	}

	return codes, nil
}

// checkFieldSizes rejects a record holding a field over maxFieldChars
func checkFieldSizes(reader *csv.Reader, record []string) error {
	for i, field := range record {
		if len(field) > maxFieldChars && utf8.RuneCountInString(field) > maxFieldChars {
			line, col := reader.FieldPos(i)
			return &csv.ParseError{StartLine: line, Line: line, Column: col, Err: errFieldTooLarge}
		}
	}
	return nil
}

// parseLines skips the header line and takes the first delimited field of
// every remaining non-blank line.
func parseLines(text string, opts CSVOptions) (domain.CodeSet, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	sep := string(opts.delimiter())
	codes := make(domain.CodeSet)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		field, _, _ := strings.Cut(line, sep)
		if code := cleanCode(field); code != "" {
			codes.Add(code)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// cleanCode strips NUL characters and surrounding whitespace
func cleanCode(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode converts raw bytes to text. Invalid UTF-8 sequences are dropped.
func decode(raw []byte, encoding string) (string, error) {
	switch encoding {
	case config.EncodingGBK:
		out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(bytes.TrimPrefix(out, utf8BOM)), nil
	case "", config.EncodingUTF8:
		return strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), ""), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}
