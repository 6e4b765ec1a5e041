package categorizer

import (
	"context"
	"slices"
	"sync"
	"time"

	"fjacquet/beancount-import/internal/logging"
)

// AIFallback classifies with the rules table first and asks an AIClient
// only for descriptions no rule matches. Answers outside the table's
// accounts are rejected. Results are cached per description.
type AIFallback struct {
	table   *Table
	client  AIClient
	logger  logging.Logger
	timeout time.Duration

	mu    sync.Mutex
	cache map[string]string
}

// NewAIFallback creates an AIFallback. A nil client makes it behave exactly
// like the table.
func NewAIFallback(table *Table, client AIClient, logger logging.Logger, timeout time.Duration) *AIFallback {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &AIFallback{
		table:   table,
		client:  client,
		logger:  logger,
		timeout: timeout,
		cache:   make(map[string]string),
	}
}

// Classify implements Classifier.
func (f *AIFallback) Classify(description string) string {
	if account, ok := f.table.Match(description); ok {
		return account
	}
	if f.client == nil {
		return UnknownAccount
	}
	accounts := f.table.Accounts()
	if len(accounts) == 0 {
		return UnknownAccount
	}

	f.mu.Lock()
	cached, ok := f.cache[description]
	f.mu.Unlock()
	if ok {
		return cached
	}

	account := f.ask(description, accounts)

	f.mu.Lock()
	f.cache[description] = account
	f.mu.Unlock()
	return account
}

func (f *AIFallback) ask(description string, accounts []string) string {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	suggestion, err := f.client.SuggestAccount(ctx, description, accounts)
	if err != nil {
		f.logger.WithError(err).Warn("AI classification failed",
			logging.Field{Key: "description", Value: description})
		return UnknownAccount
	}
	if !slices.Contains(accounts, suggestion) {
		f.logger.Warn("AI suggested an account outside the rules table",
			logging.Field{Key: "description", Value: description},
			logging.Field{Key: logging.FieldAccount, Value: suggestion})
		return UnknownAccount
	}

	f.logger.Debug("Description classified using AI",
		logging.Field{Key: "description", Value: description},
		logging.Field{Key: logging.FieldAccount, Value: suggestion})
	return suggestion
}
