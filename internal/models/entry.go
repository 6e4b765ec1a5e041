package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one leg of an Entry. A Line without an amount is the balancing
// leg: the ledger infers its amount from the other legs.
type Line struct {
	Account string              `json:"account" yaml:"account"`
	Amount  decimal.NullDecimal `json:"amount" yaml:"amount"`
}

// NewLine creates a leg with an explicit amount
func NewLine(account string, amount decimal.Decimal) Line {
	return Line{Account: account, Amount: decimal.NewNullDecimal(amount)}
}

// NewBalancingLine creates a leg without amount
func NewBalancingLine(account string) Line {
	return Line{Account: account}
}

// HasAmount reports whether the leg carries an explicit amount
func (l Line) HasAmount() bool {
	return l.Amount.Valid
}

// Entry is a dated, described ledger transaction.
type Entry struct {
	Date        time.Time `json:"date" yaml:"date"`
	Flag        string    `json:"flag,omitempty" yaml:"flag,omitempty"`
	Description string    `json:"description" yaml:"description"`
	Lines       []Line    `json:"lines" yaml:"lines"`
}

// Validate checks the leg layout: one balancing leg and at most one leg
// with an explicit amount.
func (e Entry) Validate() error {
	if len(e.Lines) == 0 {
		return errors.New("entry has no lines")
	}
	balancing, explicit := 0, 0
	for _, l := range e.Lines {
		if l.Account == "" {
			return errors.New("entry line has empty account")
		}
		if l.HasAmount() {
			explicit++
		} else {
			balancing++
		}
	}
	if balancing != 1 {
		return fmt.Errorf("entry must have exactly one balancing line, got %d", balancing)
	}
	if explicit > 1 {
		return fmt.Errorf("entry must have at most one line with an amount, got %d", explicit)
	}
	return nil
}

// Amount returns the explicit amount of the entry, or zero when every
// leg is balancing.
func (e Entry) Amount() decimal.Decimal {
	for _, l := range e.Lines {
		if l.HasAmount() {
			return l.Amount.Decimal
		}
	}
	return decimal.Zero
}
