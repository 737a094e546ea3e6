package loader

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"inscompare/internal/config"
	apperrors "inscompare/internal/errors"
)

const ctpHeader = "合约代码,合约名称,交易所,产品代码,产品类型\n"

func testOptions() CSVOptions {
	return CSVOptions{
		CodeColumn: config.DefaultCodeColumn,
		Encoding:   config.EncodingUTF8,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestParseCodes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain rows",
			input: ctpHeader + "IF2312,沪深300股指2312,CFFEX,IF,1\nIF2403,沪深300股指2403,CFFEX,IF,1\n",
			want:  []string{"IF2312", "IF2403"},
		},
		{
			name:  "duplicates collapse",
			input: ctpHeader + "au2506,黄金2506,SHFE,au,1\nau2506,黄金2506,SHFE,au,1\n",
			want:  []string{"au2506"},
		},
		{
			name:  "whitespace and NUL stripped",
			input: ctpHeader + "  m2509\x00 ,豆粕,DCE,m,1\n\x00 \x00,empty,DCE,m,1\n",
			want:  []string{"m2509"},
		},
		{
			name:  "quoted names with commas",
			input: ctpHeader + "SP a2603&a2605,\"豆一,跨期\",DCE,a,3\n",
			want:  []string{"SP a2603&a2605"},
		},
		{
			name:  "short rows are skipped",
			input: "产品代码,合约代码\nIF\nIF,IF2312\n",
			want:  []string{"IF2312"},
		},
		{
			name:  "code column not first",
			input: "交易所,合约代码\nCFFEX,IF2312\nCFFEX,\n",
			want:  []string{"IF2312"},
		},
		{
			name:  "byte order mark before header",
			input: "\xEF\xBB\xBF" + ctpHeader + "IF2312,沪深300股指2312,CFFEX,IF,1\n",
			want:  []string{"IF2312"},
		},
		{
			name:  "crlf line endings",
			input: "合约代码,合约名称\r\nIF2312,x\r\nIF2403,y\r\n",
			want:  []string{"IF2312", "IF2403"},
		},
		{
			name:  "header only",
			input: ctpHeader,
			want:  []string{},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
		{
			name:  "missing code column yields nothing",
			input: "code,name\nIF2312,x\n",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, err := ParseCodes(strings.NewReader(tt.input), testOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes.Sorted())
		})
	}
}

func TestParseCodes_StrayQuotesKeepColumn(t *testing.T) {
	input := "交易所,合约代码,合约名称\n" +
		"CFFEX,IF2312,沪深\"300\n" +
		"CFFEX,IF2403,x\n" +
		"SHFE,au2506,\"黄金\"2506\n"

	var logs bytes.Buffer
	opts := testOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	codes, err := ParseCodes(strings.NewReader(input), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"IF2312", "IF2403", "au2506"}, codes.Sorted())
	assert.NotContains(t, logs.String(), "line-based parser")
}

func TestParseCodes_FallbackOnOversizedField(t *testing.T) {
	input := ctpHeader +
		"IF2312,\"" + strings.Repeat("沪", maxFieldChars+1) + "\",CFFEX,IF,1\n" +
		"\n" +
		"IF2403,沪深300,CFFEX,IF,1\n" +
		"  \x00IO2403-C-3500 ,期权,CFFEX,IO,2\n"

	var logs bytes.Buffer
	opts := testOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	codes, err := ParseCodes(strings.NewReader(input), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"IF2312", "IF2403", "IO2403-C-3500"}, codes.Sorted())
	assert.Contains(t, logs.String(), "line-based parser")
	assert.Contains(t, logs.String(), errFieldTooLarge.Error())
}

func TestParseCodes_FieldAtLimitIsAccepted(t *testing.T) {
	input := ctpHeader + "IF2312," + strings.Repeat("沪", maxFieldChars) + ",CFFEX,IF,1\n"

	var logs bytes.Buffer
	opts := testOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	codes, err := ParseCodes(strings.NewReader(input), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"IF2312"}, codes.Sorted())
	assert.NotContains(t, logs.String(), "line-based parser")
}

func TestParseCodes_FallbackFailure(t *testing.T) {
	// one line over both the field limit and the recovery line limit
	input := ctpHeader +
		"IF2403,沪深300,CFFEX,IF,1\n" +
		strings.Repeat("x", maxLineBytes+10) + "\n"

	_, err := ParseCodes(strings.NewReader(input), testOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestParseCodes_Delimiter(t *testing.T) {
	opts := testOptions()
	opts.Delimiter = ';'

	codes, err := ParseCodes(strings.NewReader("合约代码;合约名称\nIF2312;沪深,300\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"IF2312"}, codes.Sorted())
}

func TestParseCodes_GBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(ctpHeader + "cu2507,沪铜2507,SHFE,cu,1\n")
	require.NoError(t, err)

	opts := testOptions()
	opts.Encoding = config.EncodingGBK
	codes, err := ParseCodes(strings.NewReader(encoded), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"cu2507"}, codes.Sorted())

	// read as UTF-8 the header no longer matches
	opts.Encoding = config.EncodingUTF8
	codes, err = ParseCodes(strings.NewReader(encoded), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, codes.Len())
}

func TestParseCodes_InvalidUTF8Dropped(t *testing.T) {
	input := ctpHeader + "IF23\xff12,x,CFFEX,IF,1\n"

	codes, err := ParseCodes(strings.NewReader(input), testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"IF2312"}, codes.Sorted())
}

func TestParseCodes_UnsupportedEncoding(t *testing.T) {
	opts := testOptions()
	opts.Encoding = "latin1"

	_, err := ParseCodes(strings.NewReader(ctpHeader), opts)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestLoadCodes(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, "instruments.csv")
		require.NoError(t, os.WriteFile(path, []byte(ctpHeader+"IF2312,x,CFFEX,IF,1\n"), 0644))

		codes, err := LoadCodes(path, testOptions())
		require.NoError(t, err)
		assert.True(t, codes.Contains("IF2312"))
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.csv")

		_, err := LoadCodes(path, testOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		assert.Contains(t, err.Error(), "missing.csv")
	})

	t.Run("path attached to parse errors", func(t *testing.T) {
		path := filepath.Join(dir, "broken.csv")
		content := ctpHeader + "IF2403,x\n" + strings.Repeat("z", maxLineBytes+1)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := LoadCodes(path, testOptions())
		require.Error(t, err)
		v, ok := apperrors.ContextValue(err, "path")
		require.True(t, ok)
		assert.Equal(t, path, v)
	})
}
