package bcvparser

import (
	"context"
	"time"

	"fjacquet/beancount-import/internal/common"
	"fjacquet/beancount-import/internal/logging"
)

// DefaultSSConvertBinary is looked up on PATH when no binary is configured.
const DefaultSSConvertBinary = "ssconvert"

// XLSXExtractor turns an XLSX statement into CSV text.
// This interface allows for dependency injection and makes the parser testable
// without Gnumeric installed.
type XLSXExtractor interface {
	ExtractCSV(ctx context.Context, xlsxPath string) ([]byte, error)
}

// SSConvertExtractor implements XLSXExtractor with Gnumeric's ssconvert,
// writing CSV to its stdout.
type SSConvertExtractor struct {
	Binary string
	runner common.ToolRunner
}

// NewSSConvertExtractor creates an SSConvertExtractor. An empty binary
// means DefaultSSConvertBinary.
func NewSSConvertExtractor(binary string, timeout time.Duration, logger logging.Logger) *SSConvertExtractor {
	if binary == "" {
		binary = DefaultSSConvertBinary
	}
	return &SSConvertExtractor{
		Binary: binary,
		runner: common.ToolRunner{Timeout: timeout, Logger: logger},
	}
}

// ExtractCSV runs `ssconvert <xlsx> -T Gnumeric_stf:stf_csv fd://1`.
func (e *SSConvertExtractor) ExtractCSV(ctx context.Context, xlsxPath string) ([]byte, error) {
	return e.runner.Run(ctx, e.Binary, xlsxPath, "-T", "Gnumeric_stf:stf_csv", "fd://1")
}

// MockXLSXExtractor implements XLSXExtractor for testing purposes.
type MockXLSXExtractor struct {
	MockCSV string
	MockErr error
	Calls   []string
}

// NewMockXLSXExtractor creates a new MockXLSXExtractor with the given mock data.
func NewMockXLSXExtractor(mockCSV string, mockErr error) *MockXLSXExtractor {
	return &MockXLSXExtractor{
		MockCSV: mockCSV,
		MockErr: mockErr,
	}
}

// ExtractCSV returns the predefined mock CSV or error. Like the real
// extractors it fails once ctx is done.
func (e *MockXLSXExtractor) ExtractCSV(ctx context.Context, xlsxPath string) ([]byte, error) {
	e.Calls = append(e.Calls, xlsxPath)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.MockErr != nil {
		return nil, e.MockErr
	}
	return []byte(e.MockCSV), nil
}
