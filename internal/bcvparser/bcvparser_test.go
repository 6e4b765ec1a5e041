package bcvparser

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const preamble = "\"Relevé de compte\"\n" +
	"\"Les informations ci-dessous sont fournies sans garantie\",,,,,\n" +
	"\"Date d'exécution\",\"Description\",\"Débit\",\"Crédit\",\"Date valeur\",\"Solde\"\n"

func testRules(t *testing.T) *categorizer.Table {
	t.Helper()
	table, err := categorizer.Load(strings.NewReader("coffee,Expenses:Food\nsalaire,Income:Salary\n"))
	require.NoError(t, err)
	return table
}

func newTestAdapter(opts Options) (*Adapter, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return NewAdapter(logger, NewMockXLSXExtractor("", nil), opts), logger
}

func TestParse(t *testing.T) {
	doc := preamble +
		"31.12.2023,\"Coffee Corner\",12.5,,31.12.2023,1000.00\r\n" +
		"1.1.2024,\"SALAIRE ACME SA\",,4200,02.01.2024,\n" +
		"05.01.2024,\"Transfer, savings\",100,50,05.01.2024,\n"

	adapter, _ := newTestAdapter(Options{})
	entries, err := adapter.Parse(strings.NewReader(doc), testRules(t))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "Coffee Corner", entries[0].Description)
	assert.Equal(t, []models.Line{
		models.NewLine(models.AccountBCV, entries[0].Lines[0].Amount.Decimal),
		models.NewBalancingLine("Expenses:Food"),
	}, entries[0].Lines)
	assert.Equal(t, "-12.50", entries[0].Lines[0].Amount.Decimal.StringFixed(2))

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), entries[1].Date)
	assert.Equal(t, "4200.00", entries[1].Lines[0].Amount.Decimal.StringFixed(2))
	assert.Equal(t, "Income:Salary", entries[1].Lines[1].Account)

	// Debit wins when both columns are filled.
	assert.Equal(t, "-100.00", entries[2].Lines[0].Amount.Decimal.StringFixed(2))
	assert.Equal(t, categorizer.UnknownAccount, entries[2].Lines[1].Account)
}

func TestParse_Rendering(t *testing.T) {
	doc := preamble + "31.12.2023,Coffee,12.50,,31.12.2023,\n"

	adapter, _ := newTestAdapter(Options{})
	entries, err := adapter.Parse(strings.NewReader(doc), testRules(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, models.RenderEntries(&buf, entries, "CHF"))
	assert.Equal(t, "2023-12-31 * \"Coffee\"\n Assets:Banks:BCV -12.50 CHF\n Expenses:Food\n\n", buf.String())
}

func TestParse_OnlyPreamble(t *testing.T) {
	adapter, _ := newTestAdapter(Options{})
	entries, err := adapter.Parse(strings.NewReader(preamble), testRules(t))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParse_MarkerMustStartTheLine(t *testing.T) {
	doc := "\"Relevé\"\n Date d'exécution,x,x,x,x,x\n31.12.2023,Coffee,12.50,,31.12.2023,\n"

	adapter, _ := newTestAdapter(Options{})
	_, err := adapter.Parse(strings.NewReader(doc), testRules(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrMalformedInput))
}

func TestParse_CustomMarker(t *testing.T) {
	doc := "disclaimer\nDATE,DESC,DEBIT,CREDIT,VALUE,BALANCE\n31.12.2023,Coffee,12.50,,31.12.2023,\n"

	adapter, _ := newTestAdapter(Options{HeaderMarker: "DATE,", Account: "Assets:BCV:Checking"})
	entries, err := adapter.Parse(strings.NewReader(doc), testRules(t))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Assets:BCV:Checking", entries[0].Lines[0].Account)
}

func TestParse_MalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		location string
		field    string
	}{
		{"bad execution date", "2023-12-31,Coffee,12.50,,31.12.2023,\n", "row 1", "execution date"},
		{"bad debit", "31.12.2023,Coffee,12.50,,31.12.2023,\n31.12.2023,Tea,abc,,31.12.2023,\n", "row 2", "debit"},
		{"bad credit", "31.12.2023,Coffee,,x,31.12.2023,\n", "row 1", "credit"},
		{"bad value date", "31.12.2023,Coffee,12.50,,tomorrow,\n", "row 1", "value date"},
		{"bad balance", "31.12.2023,Coffee,12.50,,31.12.2023,n/a\n", "row 1", "balance"},
		{"neither debit nor credit", "31.12.2023,Fee reversal,,,31.12.2023,10\n", "row 1", "debit/credit"},
		{"wrong field count", "31.12.2023,Coffee,12.50\n", "line 1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, _ := newTestAdapter(Options{})
			_, err := adapter.Parse(strings.NewReader(preamble+tt.body), testRules(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, parsererror.ErrMalformedInput))

			var malformed *parsererror.MalformedInputError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "bcv", malformed.Parser)
			assert.Equal(t, tt.location, malformed.Location)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestParse_MissingMarker(t *testing.T) {
	adapter, _ := newTestAdapter(Options{})
	_, err := adapter.Parse(strings.NewReader("31.12.2023,Coffee,12.50,,31.12.2023,\n"), testRules(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrMalformedInput))
	assert.Contains(t, err.Error(), "not found")
}

func TestParse_SkipEmptyRows(t *testing.T) {
	doc := preamble +
		"31.12.2023,Fee reversal,,,31.12.2023,10\n" +
		"31.12.2023,Coffee,3,,31.12.2023,7\n"

	adapter, logger := newTestAdapter(Options{SkipEmptyRows: true})
	entries, err := adapter.Parse(strings.NewReader(doc), testRules(t))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Coffee", entries[0].Description)
	assert.True(t, logger.HasEntry("WARN", "Skipping BCV row without amount"))
}

func TestStripPreamble(t *testing.T) {
	body, found := StripPreamble("a\r\n\"Date d'exécution\",x\r\nrow1\r\nrow2", DefaultHeaderMarker)
	require.True(t, found)
	assert.Equal(t, "row1\nrow2", body)

	_, found = StripPreamble("a\nb\n", DefaultHeaderMarker)
	assert.False(t, found)
}

func TestConvertFile(t *testing.T) {
	extractor := NewMockXLSXExtractor(preamble+"31.12.2023,Coffee,12.50,,31.12.2023,\n", nil)
	adapter := NewAdapter(logging.NewMockLogger(), extractor, Options{})

	entries, err := adapter.ConvertFile(context.Background(), "statement.xlsx", testRules(t))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{"statement.xlsx"}, extractor.Calls)
}

func TestConvertFile_ExtractorError(t *testing.T) {
	toolErr := &parsererror.ExternalToolError{Tool: "ssconvert", Err: errors.New("exit status 1")}
	adapter := NewAdapter(logging.NewMockLogger(), NewMockXLSXExtractor("", toolErr), Options{})

	_, err := adapter.ConvertFile(context.Background(), "statement.xlsx", testRules(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrMalformedInput))
}

func TestValidateFormat(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "statement.xlsx")
	text := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(xlsx, []byte("PK\x03\x04rest-of-zip"), 0600))
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0600))

	ctx := context.Background()
	valid := NewAdapter(logging.NewMockLogger(), NewMockXLSXExtractor(preamble, nil), Options{})
	ok, err := valid.ValidateFormat(ctx, xlsx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = valid.ValidateFormat(ctx, text)
	require.NoError(t, err)
	assert.False(t, ok)

	noMarker := NewAdapter(logging.NewMockLogger(), NewMockXLSXExtractor("a,b\n", nil), Options{})
	ok, err = noMarker.ValidateFormat(ctx, xlsx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = valid.ValidateFormat(ctx, filepath.Join(dir, "absent.xlsx"))
	assert.Error(t, err)
}

func TestValidateFormat_CancelledContext(t *testing.T) {
	xlsx := filepath.Join(t.TempDir(), "statement.xlsx")
	require.NoError(t, os.WriteFile(xlsx, []byte("PK\x03\x04rest-of-zip"), 0600))

	extractor := NewMockXLSXExtractor(preamble, nil)
	adapter := NewAdapter(logging.NewMockLogger(), extractor, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := adapter.ValidateFormat(ctx, xlsx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Equal(t, []string{xlsx}, extractor.Calls)
}

func TestSSConvertExtractor_Defaults(t *testing.T) {
	extractor := NewSSConvertExtractor("", 0, nil)
	assert.Equal(t, DefaultSSConvertBinary, extractor.Binary)
}
