package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
)

// Type identifies one of the supported statement formats.
type Type string

const (
	BCV     Type = "bcv"
	Revolut Type = "revolut"
	Cembra  Type = "cembra"
)

// Types lists the supported formats in a stable order.
func Types() []Type {
	return []Type{BCV, Revolut, Cembra}
}

// ParseType resolves a format name, ignoring case.
func ParseType(name string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Types() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown parser type: %s", name)
}

// Parser converts extracted statement text into ledger entries.
type Parser interface {
	// Parse reads the already-extracted statement text from r and returns
	// one entry per retained record, in source order. The classifier fills
	// the balancing leg. Any required field that fails to parse aborts the
	// whole source with an error matching parsererror.ErrMalformedInput.
	Parse(r io.Reader, classifier categorizer.Classifier) ([]models.Entry, error)
}

// Validator checks whether a file looks like the parser's raw format.
// Validation may run the external extractor, so it honours ctx; a cancelled
// context is reported as an error rather than as a rejected file.
type Validator interface {
	ValidateFormat(ctx context.Context, filePath string) (bool, error)
}

// FileConverter runs the format's extraction step on a raw statement file
// and parses the result.
type FileConverter interface {
	ConvertFile(ctx context.Context, filePath string, classifier categorizer.Classifier) ([]models.Entry, error)
}

// LoggerConfigurable is implemented by parsers whose logger can be replaced.
type LoggerConfigurable interface {
	SetLogger(logger logging.Logger)
}

// FullParser is the full surface every statement parser provides.
type FullParser interface {
	Parser
	Validator
	FileConverter
	LoggerConfigurable
}
