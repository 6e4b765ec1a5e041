package cembraparser

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parser"

	"golang.org/x/net/html/charset"
	"gopkg.in/xmlpath.v2"
)

var (
	pdfMagic  = []byte("%PDF-")
	pagesPath = xmlpath.MustCompile("/pdf2xml/page")
	textPath  = xmlpath.MustCompile("/pdf2xml/page/text")
)

// Options configures the Cembra parser.
type Options struct {
	// Account is the credit card liability account balancing every entry.
	Account string
}

// Adapter is the Cembra implementation of parser.FullParser.
type Adapter struct {
	parser.BaseParser
	extractor PDFExtractor
	account   string
}

var _ parser.FullParser = (*Adapter)(nil)

// NewAdapter creates a Cembra parser. A nil extractor means pdftohtml from PATH.
func NewAdapter(logger logging.Logger, extractor PDFExtractor, opts Options) *Adapter {
	base := parser.NewBaseParser(string(parser.Cembra), logger)
	if extractor == nil {
		extractor = NewPdfToHTMLExtractor("", 0, 0, base.GetLogger())
	}
	if opts.Account == "" {
		opts.Account = models.AccountCreditCard
	}
	return &Adapter{
		BaseParser: base,
		extractor:  extractor,
		account:    opts.Account,
	}
}

// Account returns the credit card account entries are balanced against.
func (a *Adapter) Account() string {
	return a.account
}

// ConvertFile renders the PDF as pdf2xml and parses it.
func (a *Adapter) ConvertFile(ctx context.Context, filePath string, classifier categorizer.Classifier) ([]models.Entry, error) {
	a.GetLogger().Info("Parsing Cembra statement",
		logging.Field{Key: logging.FieldFile, Value: filePath})

	doc, err := a.extractor.ExtractXML(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("error converting %s to XML: %w", filePath, err)
	}
	return a.Parse(bytes.NewReader(doc), classifier)
}

// ValidateFormat checks that the file is a PDF whose rendering has at least
// one page of text fragments.
func (a *Adapter) ValidateFormat(ctx context.Context, filePath string) (bool, error) {
	a.GetLogger().Debug("Validating Cembra format",
		logging.Field{Key: logging.FieldFile, Value: filePath})

	file, err := os.Open(filePath) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	head := make([]byte, len(pdfMagic))
	n, _ := file.Read(head)
	if closeErr := file.Close(); closeErr != nil {
		a.GetLogger().WithError(closeErr).Warn("Failed to close file")
	}
	if n < len(pdfMagic) || !bytes.Equal(head, pdfMagic) {
		a.GetLogger().Info("File is not a PDF",
			logging.Field{Key: logging.FieldFile, Value: filePath})
		return false, nil
	}

	doc, err := a.extractor.ExtractXML(ctx, filePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		a.GetLogger().WithError(err).Info("Cembra validation failed")
		return false, nil
	}
	return a.hasPages(doc), nil
}

// hasPages reports whether doc is a pdf2xml document with at least one page.
func (a *Adapter) hasPages(doc []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.CharsetReader = charset.NewReaderLabel
	root, err := xmlpath.ParseDecoder(dec)
	if err != nil {
		a.GetLogger().WithError(err).Info("Rendered statement is not XML")
		return false
	}
	if !pagesPath.Exists(root) {
		a.GetLogger().Info("Rendered statement has no pages")
		return false
	}

	fragments := 0
	for iter := textPath.Iter(root); iter.Next(); {
		fragments++
	}
	a.GetLogger().Debug("Rendered statement looks like pdf2xml",
		logging.Field{Key: "fragments", Value: fragments})
	return true
}
