// Package revolutparser converts Revolut account CSV exports into ledger entries.
package revolutparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
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

// Transfers from another account are booked on the other side.
const paymentFromMarker = "Payment from"

// RequiredColumns must appear in the header. Balance is optional.
var RequiredColumns = []string{
	"Type", "Product", "Started Date", "Completed Date", "Description",
	"Amount", "Fee", "Currency", "State",
}

// RevolutCSVRow represents a single row in a Revolut CSV file
type RevolutCSVRow struct {
	Type          string `csv:"Type"`
	Product       string `csv:"Product"`
	StartedDate   string `csv:"Started Date"`
	CompletedDate string `csv:"Completed Date"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Fee           string `csv:"Fee"`
	Currency      string `csv:"Currency"`
	State         string `csv:"State"`
	Balance       string `csv:"Balance"`
}

// Transaction is a parsed Revolut row.
type Transaction struct {
	Type          string
	Product       string
	StartedDate   time.Time
	CompletedDate string
	Description   string
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	Currency      string
	State         string
	Balance       decimal.NullDecimal
}

// Pending reports whether the transaction has not completed yet.
func (t Transaction) Pending() bool {
	return t.CompletedDate == ""
}

// Incoming reports whether the transaction is a transfer received from
// another account.
func (t Transaction) Incoming() bool {
	return strings.Contains(t.Description, paymentFromMarker)
}

// Parse implements parser.Parser.
func (a *Adapter) Parse(r io.Reader, classifier categorizer.Classifier) ([]models.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading Revolut CSV: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Entry{}, nil
	}

	header, err := common.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return nil, a.Malformed("header", "", "", err)
	}
	if missing := common.MissingColumns(header, RequiredColumns); len(missing) > 0 {
		return nil, a.Malformed("header", "", "",
			fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	rows, err := common.ReadCSV[RevolutCSVRow](bytes.NewReader(data))
	if err != nil {
		return nil, a.Malformed(common.ErrorLocation(err), "", "", err)
	}

	transactions := make([]Transaction, 0, len(rows))
	for i, row := range rows {
		// The header is record 1.
		tx, err := a.convertRow(row, i+2)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	entries := make([]models.Entry, 0, len(transactions))
	filtered := 0
	for _, tx := range transactions {
		if tx.Incoming() || tx.Pending() {
			filtered++
			continue
		}
		entry, err := models.NewEntryBuilder().
			WithDate(tx.StartedDate).
			WithDescription(tx.Description).
			WithPosting(a.account, tx.Amount.Sub(tx.Fee)).
			WithBalancing(classifier.Classify(tx.Description)).
			Build()
		if err != nil {
			return nil, fmt.Errorf("building entry for %q: %w", tx.Description, err)
		}
		entries = append(entries, entry)
	}

	a.GetLogger().Debug("Parsed Revolut CSV",
		logging.Field{Key: logging.FieldParser, Value: a.Name()},
		logging.Field{Key: logging.FieldCount, Value: len(entries)},
		logging.Field{Key: logging.FieldSkipped, Value: filtered})
	return entries, nil
}

func (a *Adapter) convertRow(row RevolutCSVRow, record int) (Transaction, error) {
	loc := parsererror.Row(record)

	started, err := dateutils.ParseTimestamp(row.StartedDate)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "Started Date", row.StartedDate, err)
	}
	amount, err := models.ParseAmount(row.Amount)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "Amount", row.Amount, err)
	}
	fee, err := models.ParseAmount(row.Fee)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "Fee", row.Fee, err)
	}
	balance, err := models.ParseOptionalAmount(row.Balance)
	if err != nil {
		return Transaction{}, a.Malformed(loc, "Balance", row.Balance, err)
	}

	return Transaction{
		Type:          row.Type,
		Product:       row.Product,
		StartedDate:   started,
		CompletedDate: row.CompletedDate,
		Description:   row.Description,
		Amount:        amount,
		Fee:           fee,
		Currency:      row.Currency,
		State:         row.State,
		Balance:       balance,
	}, nil
}

// ValidateFormat checks if the file is a Revolut CSV export. Only the header
// line is read.
func (a *Adapter) ValidateFormat(ctx context.Context, filePath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.GetLogger().Debug("Validating Revolut CSV format",
		logging.Field{Key: logging.FieldFile, Value: filePath})

	file, err := os.Open(filePath) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			a.GetLogger().WithError(closeErr).Warn("Failed to close file")
		}
	}()

	header, err := common.ReadHeader(file)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	if missing := common.MissingColumns(header, RequiredColumns); len(missing) > 0 {
		a.GetLogger().Info("Required column missing from Revolut CSV",
			logging.Field{Key: logging.FieldFile, Value: filePath},
			logging.Field{Key: "columns", Value: strings.Join(missing, ", ")})
		return false, nil
	}
	return true, nil
}
