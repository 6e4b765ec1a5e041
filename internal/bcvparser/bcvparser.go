// Package bcvparser converts BCV account statements into ledger entries.
// BCV exports XLSX workbooks; their CSV rendering starts with a disclaimer
// preamble that ends at the column header line.
package bcvparser

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/common"
	"fjacquet/beancount-import/internal/dateutils"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parsererror"

	"github.com/shopspring/decimal"
)

// DefaultHeaderMarker starts the column header line, opening quote included.
const DefaultHeaderMarker = "\"Date d'exécution"

const fieldsPerRecord = 6

// ErrNoAmount is reported for a row with neither debit nor credit.
var ErrNoAmount = errors.New("row has neither debit nor credit")

// BCVCSVRow is one statement record, mapped by position.
type BCVCSVRow struct {
	ExecutionDate string `csv:"execution_date"`
	Description   string `csv:"description"`
	Debit         string `csv:"debit"`
	Credit        string `csv:"credit"`
	ValueDate     string `csv:"value_date"`
	Balance       string `csv:"balance"`
}

// Transaction is a parsed BCV row.
type Transaction struct {
	ExecutionDate time.Time
	Description   string
	Debit         decimal.NullDecimal
	Credit        decimal.NullDecimal
	ValueDate     time.Time
	Balance       decimal.NullDecimal
}

// StripPreamble drops every line up to and including the first one that
// starts with marker, and returns the remaining lines joined by "\n".
func StripPreamble(doc, marker string) (string, bool) {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSuffix(line, "\r"), marker) {
			rest := lines[i+1:]
			for j := range rest {
				rest[j] = strings.TrimSuffix(rest[j], "\r")
			}
			return strings.Join(rest, "\n"), true
		}
	}
	return "", false
}

// Parse implements parser.Parser. r carries the CSV rendering of the workbook.
func (a *Adapter) Parse(r io.Reader, classifier categorizer.Classifier) ([]models.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading BCV CSV: %w", err)
	}

	body, found := StripPreamble(string(data), a.headerMarker)
	if !found {
		return nil, a.Malformed("header", "", "",
			fmt.Errorf("column header starting with %s not found", a.headerMarker))
	}

	rows, err := common.ReadCSVWithoutHeaders[BCVCSVRow](strings.NewReader(body), fieldsPerRecord)
	if err != nil {
		return nil, a.Malformed(common.ErrorLocation(err), "", "", err)
	}

	entries := make([]models.Entry, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		loc := parsererror.Row(i + 1)
		tx, err := a.convertRow(row, loc)
		if err != nil {
			return nil, err
		}

		builder := models.NewEntryBuilder().
			WithDate(tx.ExecutionDate).
			WithDescription(tx.Description)
		switch {
		case tx.Debit.Valid:
			builder.WithPosting(a.account, tx.Debit.Decimal.Neg())
		case tx.Credit.Valid:
			builder.WithPosting(a.account, tx.Credit.Decimal)
		case a.skipEmptyRows:
			skipped++
			a.GetLogger().Warn("Skipping BCV row without amount",
				logging.Field{Key: logging.FieldRow, Value: i + 1},
				logging.Field{Key: "description", Value: tx.Description})
			continue
		default:
			return nil, a.Malformed(loc, "debit/credit", "", ErrNoAmount)
		}

		entry, err := builder.WithBalancing(classifier.Classify(tx.Description)).Build()
		if err != nil {
			return nil, fmt.Errorf("building entry for %q: %w", tx.Description, err)
		}
		entries = append(entries, entry)
	}

	a.GetLogger().Debug("Parsed BCV statement",
		logging.Field{Key: logging.FieldParser, Value: a.Name()},
		logging.Field{Key: logging.FieldCount, Value: len(entries)},
		logging.Field{Key: logging.FieldSkipped, Value: skipped})
	return entries, nil
}

func (a *Adapter) convertRow(row BCVCSVRow, loc string) (Transaction, error) {
	executionDate, err := dateutils.ParseSwissDate(strings.TrimSpace(row.ExecutionDate))
	if err != nil {
		return Transaction{}, a.Malformed(loc, "execution date", row.ExecutionDate, err)
	}
	debit, err := models.ParseOptionalAmount(row.Debit)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "debit", row.Debit, err)
	}
	credit, err := models.ParseOptionalAmount(row.Credit)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "credit", row.Credit, err)
	}
	valueDate, err := dateutils.ParseSwissDate(strings.TrimSpace(row.ValueDate))
	if err != nil {
		return Transaction{}, a.Malformed(loc, "value date", row.ValueDate, err)
	}
	balance, err := models.ParseOptionalAmount(row.Balance)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "balance", row.Balance, err)
	}

	return Transaction{
		ExecutionDate: executionDate,
		Description:   row.Description,
		Debit:         debit,
		Credit:        credit,
		ValueDate:     valueDate,
		Balance:       balance,
	}, nil
}
