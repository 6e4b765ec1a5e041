// Package container provides dependency injection for the beancount-import
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"

	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/config"
	"fjacquet/beancount-import/internal/factory"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parser"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	rules      *categorizer.Table
	aiClient   categorizer.AIClient
	classifier categorizer.Classifier
	extractors factory.Extractors

	parsers map[parser.Type]parser.FullParser
}

// Option customizes NewContainer, mostly for tests.
type Option func(*options)

type options struct {
	logger     logging.Logger
	aiClient   categorizer.AIClient
	extractors *factory.Extractors
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAIClient replaces the Gemini client used when AI is enabled.
func WithAIClient(client categorizer.AIClient) Option {
	return func(o *options) { o.aiClient = client }
}

// WithExtractors replaces the external document converters.
func WithExtractors(ext factory.Extractors) Option {
	return func(o *options) { o.extractors = &ext }
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	}

	rules := categorizer.NewTable(nil)
	if cfg.Rules.File != "" {
		var err error
		rules, err = categorizer.LoadFile(cfg.Rules.File, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}

	// Create AI client (if enabled)
	aiClient := o.aiClient
	if cfg.AI.Enabled && aiClient == nil {
		gemini, err := categorizer.NewGeminiClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		aiClient = gemini
	}
	if !cfg.AI.Enabled {
		aiClient = nil
	}

	var ext factory.Extractors
	if o.extractors != nil {
		ext = *o.extractors
	} else {
		ext = factory.NewExtractors(cfg, logger)
	}

	c := &Container{
		logger:     logger,
		config:     cfg,
		rules:      rules,
		aiClient:   aiClient,
		extractors: ext,
		parsers:    make(map[parser.Type]parser.FullParser),
	}
	c.classifier = c.ClassifierFor(rules)

	for _, pt := range parser.Types() {
		p, err := factory.GetParser(pt, cfg, ext, "", logger)
		if err != nil {
			return nil, err
		}
		c.parsers[pt] = p
	}

	logger.Debug("Container initialized",
		logging.Field{Key: "parsers_count", Value: len(c.parsers)},
		logging.Field{Key: "rules_count", Value: rules.Len()},
		logging.Field{Key: "ai_enabled", Value: aiClient != nil})

	return c, nil
}

// GetParser returns the configured parser for the given type.
func (c *Container) GetParser(pt parser.Type) (parser.FullParser, error) {
	p, ok := c.parsers[pt]
	if !ok {
		return nil, fmt.Errorf("unknown parser type: %s", pt)
	}
	return p, nil
}

// ParserFor returns a parser for pt posting to account instead of the
// configured one. An empty account returns the registered parser.
func (c *Container) ParserFor(pt parser.Type, account string) (parser.FullParser, error) {
	if account == "" {
		return c.GetParser(pt)
	}
	return factory.GetParser(pt, c.config, c.extractors, account, c.logger)
}

// GetParsers returns a copy of the parser registry.
func (c *Container) GetParsers() map[parser.Type]parser.FullParser {
	result := make(map[parser.Type]parser.FullParser, len(c.parsers))
	for k, v := range c.parsers {
		result[k] = v
	}
	return result
}

// ClassifierFor wraps rules with the AI fallback when one is configured.
func (c *Container) ClassifierFor(rules *categorizer.Table) categorizer.Classifier {
	if c.aiClient == nil {
		return rules
	}
	return categorizer.NewAIFallback(rules, c.aiClient, c.logger, c.config.AITimeout())
}

// GetClassifier returns the classifier built from the configured rules.
func (c *Container) GetClassifier() categorizer.Classifier {
	return c.classifier
}

// GetRules returns the configured rules table.
func (c *Container) GetRules() *categorizer.Table {
	return c.rules
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetAIClient returns the AI client, or nil when AI is disabled.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// WriteLedger renders entries with the configured flag and currency.
func (c *Container) WriteLedger(w io.Writer, entries []models.Entry) error {
	flagged := make([]models.Entry, len(entries))
	for i, e := range entries {
		e.Flag = c.config.Ledger.Flag
		flagged[i] = e
	}
	currency := c.config.Ledger.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return models.RenderEntries(w, flagged, currency)
}

// Close releases the AI client, if any.
func (c *Container) Close() error {
	if closer, ok := c.aiClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	return nil
}
