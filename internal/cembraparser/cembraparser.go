// Package cembraparser converts Cembra credit card statements into ledger
// entries. The PDF statement is first rendered as positioned text fragments
// (pdftohtml -xml); transactions are then recovered from runs of four
// consecutive fragments.
package cembraparser

import (
	"errors"
	"fmt"
	"io"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
)

// Parse implements parser.Parser. r carries the pdf2xml document.
func (a *Adapter) Parse(r io.Reader, classifier categorizer.Classifier) ([]models.Entry, error) {
	pages, err := DecodePages(r)
	if err != nil {
		var shape *ShapeError
		if errors.As(err, &shape) {
			return nil, a.Malformed(shape.Location(), "", "", shape.Err)
		}
		return nil, a.Malformed("", "", "", err)
	}

	var entries []models.Entry
	for _, page := range pages {
		groups := Reconstruct(page)
		a.GetLogger().Debug("Reconstructed transactions from page",
			logging.Field{Key: logging.FieldPage, Value: page.Number},
			logging.Field{Key: "fragments", Value: len(page.Fragments)},
			logging.Field{Key: logging.FieldCount, Value: len(groups)})

		for _, g := range groups {
			entry, err := models.NewEntryBuilder().
				WithDate(g.TransactionDate).
				WithDescription(g.Merchant).
				WithPosting(classifier.Classify(g.Merchant), g.Amount).
				WithBalancing(a.account).
				Build()
			if err != nil {
				return nil, fmt.Errorf("building entry for %q: %w", g.Merchant, err)
			}
			entries = append(entries, entry)
		}
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	a.GetLogger().Debug("Parsed Cembra statement",
		logging.Field{Key: logging.FieldParser, Value: a.Name()},
		logging.Field{Key: "pages", Value: len(pages)},
		logging.Field{Key: logging.FieldCount, Value: len(entries)})
	return entries, nil
}
