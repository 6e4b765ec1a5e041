package models

import (
	"errors"
	"fmt"
	"time"

	"fjacquet/beancount-import/internal/dateutils"

	"github.com/shopspring/decimal"
)

// EntryBuilder provides a fluent API for constructing ledger entries
type EntryBuilder struct {
	entry Entry
	err   error
}

// NewEntryBuilder creates a new EntryBuilder with the cleared flag
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		entry: Entry{Flag: FlagCleared},
	}
}

// WithDate sets the entry date, dropping any time of day
func (b *EntryBuilder) WithDate(date time.Time) *EntryBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.entry.Date = dateutils.TruncateToDay(date)
	return b
}

// WithDescription sets the entry narration, kept verbatim
func (b *EntryBuilder) WithDescription(description string) *EntryBuilder {
	if b.err != nil {
		return b
	}
	b.entry.Description = description
	return b
}

// WithFlag overrides the entry flag
func (b *EntryBuilder) WithFlag(flag string) *EntryBuilder {
	if b.err != nil {
		return b
	}
	if flag == "" {
		b.err = errors.New("flag cannot be empty")
		return b
	}
	b.entry.Flag = flag
	return b
}

// WithPosting appends a leg with an explicit amount
func (b *EntryBuilder) WithPosting(account string, amount decimal.Decimal) *EntryBuilder {
	if b.err != nil {
		return b
	}
	b.entry.Lines = append(b.entry.Lines, NewLine(account, amount))
	return b
}

// WithBalancing appends the balancing leg
func (b *EntryBuilder) WithBalancing(account string) *EntryBuilder {
	if b.err != nil {
		return b
	}
	b.entry.Lines = append(b.entry.Lines, NewBalancingLine(account))
	return b
}

// Build validates and returns the entry
func (b *EntryBuilder) Build() (Entry, error) {
	if b.err != nil {
		return Entry{}, fmt.Errorf("builder error: %w", b.err)
	}
	if b.entry.Date.IsZero() {
		return Entry{}, errors.New("date is required")
	}
	if err := b.entry.Validate(); err != nil {
		return Entry{}, err
	}
	return b.entry, nil
}
