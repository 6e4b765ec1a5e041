package revolutparser

import (
	"context"
	"fmt"
	"os"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parser"
)

// Adapter is the Revolut implementation of parser.FullParser.
type Adapter struct {
	parser.BaseParser
	account string
}

var _ parser.FullParser = (*Adapter)(nil)

// NewAdapter creates a Revolut parser posting to account. An empty account
// falls back to models.AccountRevolut.
func NewAdapter(logger logging.Logger, account string) *Adapter {
	if account == "" {
		account = models.AccountRevolut
	}
	return &Adapter{
		BaseParser: parser.NewBaseParser(string(parser.Revolut), logger),
		account:    account,
	}
}

// Account returns the asset account the parser posts to.
func (a *Adapter) Account() string {
	return a.account
}

// ConvertFile reads a Revolut CSV export directly; no extraction tool is needed.
func (a *Adapter) ConvertFile(_ context.Context, filePath string, classifier categorizer.Classifier) ([]models.Entry, error) {
	a.GetLogger().Info("Parsing Revolut CSV file",
		logging.Field{Key: logging.FieldFile, Value: filePath})

	file, err := os.Open(filePath) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error opening Revolut CSV: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			a.GetLogger().WithError(closeErr).Warn("Failed to close file")
		}
	}()

	return a.Parse(file, classifier)
}
