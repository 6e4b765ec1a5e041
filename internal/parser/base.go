// Package parser provides the base parser functionality and common interfaces.
package parser

import (
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/parsererror"
)

// BaseParser provides common functionality for all parser implementations.
// Parsers embed it to share logger handling:
//
//	type MyParser struct {
//		parser.BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	name   string
	logger logging.Logger
}

// NewBaseParser creates a BaseParser for the named format. If logger is nil,
// a default logger is used.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{
		name:   name,
		logger: logger,
	}
}

// SetLogger implements the LoggerConfigurable interface.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Name returns the format name the parser was created for.
func (b *BaseParser) Name() string {
	return b.name
}

// Malformed builds a MalformedInputError attributed to this parser.
func (b *BaseParser) Malformed(location, field, value string, err error) error {
	return &parsererror.MalformedInputError{
		Parser:   b.name,
		Location: location,
		Field:    field,
		Value:    value,
		Err:      err,
	}
}
