package cembraparser

import (
	"strings"
	"time"

	"fjacquet/beancount-import/internal/dateutils"
	"fjacquet/beancount-import/internal/models"

	"github.com/shopspring/decimal"
)

// WindowSize is the number of consecutive fragments forming one transaction:
// transaction date, accounting date, merchant, amount.
const WindowSize = 4

// FragmentGroup is a transaction reconstructed from one window.
type FragmentGroup struct {
	TransactionDate time.Time
	AccountingDate  time.Time
	Merchant        string
	Amount          decimal.Decimal
	Page            int
	Position        int
}

// Reconstruct slides a window of WindowSize fragments over the page, one
// fragment at a time, and returns every window that reads as a transaction.
// Windows never span pages. Windows that do not match are dropped silently.
func Reconstruct(page Page) []FragmentGroup {
	var groups []FragmentGroup
	for i := 0; i+WindowSize <= len(page.Fragments); i++ {
		if g, ok := matchWindow(page.Fragments[i : i+WindowSize]); ok {
			g.Page = page.Number
			g.Position = i
			groups = append(groups, g)
		}
	}
	return groups
}

func matchWindow(w []Fragment) (FragmentGroup, bool) {
	for _, f := range w {
		if !f.Valid {
			return FragmentGroup{}, false
		}
	}
	transactionDate, err := dateutils.ParseSwissDate(strings.TrimSpace(w[0].Text))
	if err != nil {
		return FragmentGroup{}, false
	}
	accountingDate, err := dateutils.ParseSwissDate(strings.TrimSpace(w[1].Text))
	if err != nil {
		return FragmentGroup{}, false
	}
	amount, err := models.ParseAmount(w[3].Text)
	if err != nil {
		return FragmentGroup{}, false
	}
	return FragmentGroup{
		TransactionDate: transactionDate,
		AccountingDate:  accountingDate,
		Merchant:        w[2].Text,
		Amount:          amount,
	}, true
}
