// Package factory builds statement parsers from configuration.
package factory

import (
	"fmt"

	"fjacquet/beancount-import/internal/bcvparser"
	"fjacquet/beancount-import/internal/cembraparser"
	"fjacquet/beancount-import/internal/config"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/parser"
	"fjacquet/beancount-import/internal/revolutparser"
)

// Extractors holds the document converters used by the file based parsers.
type Extractors struct {
	XLSX bcvparser.XLSXExtractor
	PDF  cembraparser.PDFExtractor
}

// NewExtractors builds the converters selected by cfg.
func NewExtractors(cfg *config.Config, logger logging.Logger) Extractors {
	var pdf cembraparser.PDFExtractor
	switch cfg.Parsers.Cembra.Extractor {
	case config.ExtractorNative:
		pdf = cembraparser.NewNativeExtractor(cfg.Parsers.Cembra.FirstPage, logger)
	default:
		pdf = cembraparser.NewPdfToHTMLExtractor(cfg.Tools.PdfToHTML, cfg.Parsers.Cembra.FirstPage, cfg.ToolTimeout(), logger)
	}
	return Extractors{
		XLSX: bcvparser.NewSSConvertExtractor(cfg.Tools.SSConvert, cfg.ToolTimeout(), logger),
		PDF:  pdf,
	}
}

// GetParser returns a new parser for parserType. An empty account selects the
// account configured for that format.
func GetParser(parserType parser.Type, cfg *config.Config, ext Extractors, account string, logger logging.Logger) (parser.FullParser, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	switch parserType {
	case parser.BCV:
		if account == "" {
			account = cfg.Accounts.BCV
		}
		return bcvparser.NewAdapter(logger, ext.XLSX, bcvparser.Options{
			Account:       account,
			HeaderMarker:  cfg.Parsers.BCV.HeaderMarker,
			SkipEmptyRows: cfg.Parsers.BCV.SkipEmptyRows,
		}), nil
	case parser.Revolut:
		if account == "" {
			account = cfg.Accounts.Revolut
		}
		return revolutparser.NewAdapter(logger, account), nil
	case parser.Cembra:
		if account == "" {
			account = cfg.Accounts.CreditCard
		}
		return cembraparser.NewAdapter(logger, ext.PDF, cembraparser.Options{Account: account}), nil
	default:
		return nil, fmt.Errorf("unknown parser type: %s", parserType)
	}
}
