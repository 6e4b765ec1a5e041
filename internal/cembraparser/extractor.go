package cembraparser

import (
	"context"
	"strconv"
	"time"

	"fjacquet/beancount-import/internal/common"
	"fjacquet/beancount-import/internal/logging"
)

// DefaultPdfToHTMLBinary is looked up on PATH when no binary is configured.
const DefaultPdfToHTMLBinary = "pdftohtml"

// DefaultFirstPage skips the statement summary page.
const DefaultFirstPage = 2

// PDFExtractor renders a PDF statement as a pdf2xml document: a root
// element with one child per page, each holding positioned text fragments.
// This interface allows for dependency injection and makes the parser
// testable without poppler installed.
type PDFExtractor interface {
	ExtractXML(ctx context.Context, pdfPath string) ([]byte, error)
}

// PdfToHTMLExtractor implements PDFExtractor with poppler's pdftohtml.
type PdfToHTMLExtractor struct {
	Binary    string
	FirstPage int
	runner    common.ToolRunner
}

// NewPdfToHTMLExtractor creates a PdfToHTMLExtractor. Zero values select
// the defaults.
func NewPdfToHTMLExtractor(binary string, firstPage int, timeout time.Duration, logger logging.Logger) *PdfToHTMLExtractor {
	if binary == "" {
		binary = DefaultPdfToHTMLBinary
	}
	if firstPage <= 0 {
		firstPage = DefaultFirstPage
	}
	return &PdfToHTMLExtractor{
		Binary:    binary,
		FirstPage: firstPage,
		runner:    common.ToolRunner{Timeout: timeout, Logger: logger},
	}
}

// Args returns the pdftohtml arguments for pdfPath.
func (e *PdfToHTMLExtractor) Args(pdfPath string) []string {
	return []string{pdfPath, "-xml", "-f", strconv.Itoa(e.FirstPage), "-stdout"}
}

// ExtractXML runs `pdftohtml <pdf> -xml -f <first page> -stdout`.
func (e *PdfToHTMLExtractor) ExtractXML(ctx context.Context, pdfPath string) ([]byte, error) {
	return e.runner.Run(ctx, e.Binary, e.Args(pdfPath)...)
}

// MockPDFExtractor implements PDFExtractor for testing purposes.
type MockPDFExtractor struct {
	MockXML string
	MockErr error
}

// NewMockPDFExtractor creates a new MockPDFExtractor with the given mock data.
func NewMockPDFExtractor(mockXML string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{
		MockXML: mockXML,
		MockErr: mockErr,
	}
}

// ExtractXML returns the predefined mock document or error. Like the real
// extractors it fails once ctx is done.
func (e *MockPDFExtractor) ExtractXML(ctx context.Context, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.MockErr != nil {
		return nil, e.MockErr
	}
	return []byte(e.MockXML), nil
}
