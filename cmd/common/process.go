// Package common contains shared functionality for command handlers
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parser"
	"fjacquet/beancount-import/internal/parsererror"
)

// ErrInvalidFormat is returned when validation rejects the input file.
var ErrInvalidFormat = errors.New("file is not in a valid format")

// LedgerWriter renders entries as ledger text.
type LedgerWriter interface {
	WriteLedger(w io.Writer, entries []models.Entry) error
}

// Options describes a single conversion run.
type Options struct {
	Input    string
	Output   string
	Validate bool
}

// ProcessFile converts opts.Input with p and writes the ledger to opts.Output,
// or to stdout when Output is empty. Nothing is written unless the whole
// statement parsed.
func ProcessFile(ctx context.Context, p parser.FullParser, classifier categorizer.Classifier, lw LedgerWriter, opts Options, stdout io.Writer, log logging.Logger) error {
	p.SetLogger(log)

	if opts.Validate {
		log.Info("Validating format...", logging.Field{Key: logging.FieldInputFile, Value: opts.Input})
		valid, err := p.ValidateFormat(ctx, opts.Input)
		if err != nil {
			return fmt.Errorf("error validating file: %w", err)
		}
		if !valid {
			return fmt.Errorf("%w: %w", &parsererror.ValidationError{FilePath: opts.Input, Reason: "format check failed"}, ErrInvalidFormat)
		}
		log.Debug("Validation successful")
	}

	entries, err := p.ConvertFile(ctx, opts.Input, classifier)
	if err != nil {
		return fmt.Errorf("error converting %s: %w", opts.Input, err)
	}

	var buf bytes.Buffer
	if err := lw.WriteLedger(&buf, entries); err != nil {
		return fmt.Errorf("error rendering ledger: %w", err)
	}

	if err := WriteOutput(opts.Output, buf.Bytes(), stdout); err != nil {
		return err
	}

	log.Info("Conversion completed successfully",
		logging.Field{Key: logging.FieldInputFile, Value: opts.Input},
		logging.Field{Key: logging.FieldOutputFile, Value: opts.Output},
		logging.Field{Key: logging.FieldCount, Value: len(entries)})
	return nil
}

// WriteOutput writes data to path, creating parent directories, or to stdout
// when path is empty.
func WriteOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating output directory %s: %w", dir, err)
		}
	}
	// #nosec G306 -- ledger files are meant to be shared with other tools
	if err := os.WriteFile(path, data, models.PermissionLedgerFile); err != nil {
		return fmt.Errorf("error writing output file %s: %w", path, err)
	}
	return nil
}
