package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	apperrors "inscompare/internal/errors"
	"inscompare/pkg/contracts/domain"
)

// LoadCache reads the JSON instrument cache at path. The whole document is
// decoded in memory; any decode failure is fatal.
func LoadCache(path string, logger *slog.Logger) (*domain.InstrumentCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open JSON file %s", path), err)
	}
	defer f.Close()

	cache, err := ParseCache(f)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}

	logger.Info("Loaded JSON instrument cache",
		slog.String("path", path),
		slog.Int("entries", cache.Len()))
	return cache, nil
}

// ParseCache decodes a JSON document whose top-level value must be an object.
func ParseCache(r io.Reader) (*domain.InstrumentCache, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read JSON input", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewParsingError("invalid JSON", err)
	}

	entries, ok := doc.(map[string]any)
	if !ok {
		return nil, apperrors.NewParsingError(fmt.Sprintf("JSON top-level value is %s, want object", kindOf(doc)), nil)
	}

	return domain.NewInstrumentCache(entries), nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
