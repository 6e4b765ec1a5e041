package categorizer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/beancount-import/internal/logging"

	"gopkg.in/yaml.v3"
)

// RulesFile is the YAML form of a rules table.
type RulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile loads a rules table from path. Files ending in .yaml or .yml are
// read as YAML, anything else as "pattern,account" lines.
func LoadFile(path string, logger logging.Logger) (*Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("could not read rules file %s: %w", path, err)
	}

	var table *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		table, err = LoadYAML(data)
	default:
		table, err = Load(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("could not parse rules file %s: %w", path, err)
	}

	if logger != nil {
		for _, i := range table.EmptyPatterns() {
			logger.Warn("Rule with empty pattern matches every description",
				logging.Field{Key: logging.FieldFile, Value: path},
				logging.Field{Key: logging.FieldRow, Value: i + 1},
				logging.Field{Key: logging.FieldAccount, Value: table.rules[i].Account})
		}
		logger.Debug("Loaded classification rules",
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: logging.FieldCount, Value: table.Len()},
			logging.Field{Key: logging.FieldSkipped, Value: table.Skipped()})
	}
	return table, nil
}

// LoadYAML parses a rules document of the form
//
//	rules:
//	  - pattern: migros
//	    account: Expenses:Groceries
func LoadYAML(data []byte) (*Table, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	rules := make([]Rule, 0, len(file.Rules))
	skipped := 0
	for _, r := range file.Rules {
		r.Pattern = strings.TrimSpace(r.Pattern)
		r.Account = strings.TrimSpace(r.Account)
		if r.Account == "" {
			skipped++
			continue
		}
		rules = append(rules, r)
	}
	t := NewTable(rules)
	t.skipped = skipped
	return t, nil
}
