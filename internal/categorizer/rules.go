// Package categorizer maps transaction descriptions to ledger accounts using
// an ordered table of case-insensitive substring rules.
package categorizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// UnknownAccount is assigned when no rule matches.
const UnknownAccount = "Liabilities:Unknown"

// Classifier maps a description to a ledger account. It never fails.
type Classifier interface {
	Classify(description string) string
}

// Rule maps every description containing Pattern to Account.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Account string `yaml:"account"`
}

// Table is an ordered list of rules. It is read-only after loading and safe
// for concurrent use.
type Table struct {
	rules   []Rule
	lowered []string
	skipped int
}

// NewTable builds a table from rules kept in the given order.
func NewTable(rules []Rule) *Table {
	t := &Table{
		rules:   make([]Rule, len(rules)),
		lowered: make([]string, len(rules)),
	}
	copy(t.rules, rules)
	for i, r := range t.rules {
		t.lowered[i] = strings.ToLower(r.Pattern)
	}
	return t
}

// Load reads a headerless rules file with one "pattern,account" rule per
// line. Each line is split on its first comma and both halves are trimmed.
// Lines without a comma or without an account are skipped, as are lines
// starting with '#'.
// Load only fails when the reader does.
func Load(r io.Reader) (*Table, error) {
	var rules []Rule
	skipped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		pattern, account, found := strings.Cut(line, ",")
		account = strings.TrimSpace(account)
		if !found || account == "" {
			skipped++
			continue
		}
		rules = append(rules, Rule{
			Pattern: strings.TrimSpace(pattern),
			Account: account,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	t := NewTable(rules)
	t.skipped = skipped
	return t, nil
}

// Classify returns the account of the first rule whose pattern occurs in
// description, ignoring case, or UnknownAccount.
func (t *Table) Classify(description string) string {
	if account, ok := t.Match(description); ok {
		return account
	}
	return UnknownAccount
}

// Match is Classify that reports whether a rule matched.
func (t *Table) Match(description string) (string, bool) {
	if t == nil {
		return "", false
	}
	lower := strings.ToLower(description)
	for i, pattern := range t.lowered {
		if strings.Contains(lower, pattern) {
			return t.rules[i].Account, true
		}
	}
	return "", false
}

// Rules returns a copy of the rules in order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Accounts returns the distinct accounts in first-appearance order.
func (t *Table) Accounts() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool, len(t.rules))
	var accounts []string
	for _, r := range t.rules {
		if !seen[r.Account] {
			seen[r.Account] = true
			accounts = append(accounts, r.Account)
		}
	}
	return accounts
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Skipped returns how many lines were dropped for lacking a separator or an
// account.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// EmptyPatterns returns the indexes of rules with an empty pattern. Such a
// rule matches every description.
func (t *Table) EmptyPatterns() []int {
	if t == nil {
		return nil
	}
	var idx []int
	for i, p := range t.lowered {
		if p == "" {
			idx = append(idx, i)
		}
	}
	return idx
}
