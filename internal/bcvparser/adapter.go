package bcvparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parser"
)

// xlsxMagic opens every XLSX file (a zip archive).
var xlsxMagic = []byte("PK\x03\x04")

// Options configures the BCV parser.
type Options struct {
	Account       string
	HeaderMarker  string
	SkipEmptyRows bool
}

// Adapter is the BCV implementation of parser.FullParser.
type Adapter struct {
	parser.BaseParser
	extractor     XLSXExtractor
	account       string
	headerMarker  string
	skipEmptyRows bool
}

var _ parser.FullParser = (*Adapter)(nil)

// NewAdapter creates a BCV parser. A nil extractor means ssconvert from PATH.
func NewAdapter(logger logging.Logger, extractor XLSXExtractor, opts Options) *Adapter {
	base := parser.NewBaseParser(string(parser.BCV), logger)
	if extractor == nil {
		extractor = NewSSConvertExtractor("", 0, base.GetLogger())
	}
	if opts.Account == "" {
		opts.Account = models.AccountBCV
	}
	if opts.HeaderMarker == "" {
		opts.HeaderMarker = DefaultHeaderMarker
	}
	return &Adapter{
		BaseParser:    base,
		extractor:     extractor,
		account:       opts.Account,
		headerMarker:  opts.HeaderMarker,
		skipEmptyRows: opts.SkipEmptyRows,
	}
}

// Account returns the asset account the parser posts to.
func (a *Adapter) Account() string {
	return a.account
}

// ConvertFile renders the workbook to CSV and parses it.
func (a *Adapter) ConvertFile(ctx context.Context, filePath string, classifier categorizer.Classifier) ([]models.Entry, error) {
	a.GetLogger().Info("Parsing BCV statement",
		logging.Field{Key: logging.FieldFile, Value: filePath})

	csvData, err := a.extractor.ExtractCSV(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("error converting %s to CSV: %w", filePath, err)
	}
	return a.Parse(bytes.NewReader(csvData), classifier)
}

// ValidateFormat checks that the file is an XLSX workbook whose CSV
// rendering contains the column header line.
func (a *Adapter) ValidateFormat(ctx context.Context, filePath string) (bool, error) {
	a.GetLogger().Debug("Validating BCV format",
		logging.Field{Key: logging.FieldFile, Value: filePath})

	head := make([]byte, len(xlsxMagic))
	file, err := os.Open(filePath) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	n, _ := file.Read(head)
	if closeErr := file.Close(); closeErr != nil {
		a.GetLogger().WithError(closeErr).Warn("Failed to close file")
	}
	if n < len(xlsxMagic) || !bytes.Equal(head, xlsxMagic) {
		a.GetLogger().Info("File is not an XLSX workbook",
			logging.Field{Key: logging.FieldFile, Value: filePath})
		return false, nil
	}

	csvData, err := a.extractor.ExtractCSV(ctx, filePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		a.GetLogger().WithError(err).Info("BCV validation failed")
		return false, nil
	}
	_, found := StripPreamble(string(csvData), a.headerMarker)
	if !found {
		a.GetLogger().Info("Column header not found in BCV statement",
			logging.Field{Key: logging.FieldFile, Value: filePath},
			logging.Field{Key: "marker", Value: strings.TrimPrefix(a.headerMarker, "\"")})
	}
	return found, nil
}
