package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/beancount-import/internal/bcvparser"
	"fjacquet/beancount-import/internal/categorizer"
	"fjacquet/beancount-import/internal/cembraparser"
	"fjacquet/beancount-import/internal/config"
	"fjacquet/beancount-import/internal/container"
	"fjacquet/beancount-import/internal/factory"
	"fjacquet/beancount-import/internal/logging"
	"fjacquet/beancount-import/internal/models"
	"fjacquet/beancount-import/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rules = "# shared by every format\n" +
	"migros,Expenses:Groceries\n" +
	"coffee,Expenses:Food:Coffee\n" +
	"sbb,Expenses:Transport\n"

const bcvCSV = "\"Relevé de compte\"\n" +
	"\"Date d'exécution\",\"Description\",\"Débit\",\"Crédit\",\"Date valeur\",\"Solde\"\n" +
	"03.01.2024,\"MIGROS LAUSANNE\",45.30,,03.01.2024,954.70\n" +
	"05.01.2024,\"Salary\",,4200,05.01.2024,5154.70\n"

const revolutCSV = "Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance\n" +
	"CARD_PAYMENT,Current,2024-01-03 08:07:09,2024-01-04 15:38:51,Boreal Coffee,-5.50,0.00,CHF,COMPLETED,94.50\n" +
	"TRANSFER,Current,2024-01-05 10:00:00,2024-01-05 10:00:01,Payment from Bob,20.00,0.00,CHF,COMPLETED,114.50\n"

const cembraXML = `<?xml version="1.0" encoding="UTF-8"?>
<pdf2xml>
<page number="2">
<text>03.01.2024</text>
<text>04.01.2024</text>
<text>SBB CFF FFS</text>
<text>12.00</text>
</page>
</pdf2xml>
`

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.csv")
	require.NoError(t, os.WriteFile(rulesPath, []byte(rules), 0600))

	cfg := &config.Config{}
	cfg.Ledger.Currency = "CHF"
	cfg.Ledger.Flag = "*"
	cfg.Rules.File = rulesPath
	cfg.Accounts.BCV = models.AccountBCV
	cfg.Accounts.Revolut = models.AccountRevolut
	cfg.Accounts.CreditCard = models.AccountCreditCard
	cfg.Parsers.BCV.HeaderMarker = bcvparser.DefaultHeaderMarker
	cfg.Parsers.Cembra.FirstPage = 2
	cfg.Parsers.Cembra.Extractor = config.ExtractorPdfToHTML
	cfg.Tools.TimeoutSeconds = 60

	c, err := container.NewContainer(cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithExtractors(factory.Extractors{
			XLSX: bcvparser.NewMockXLSXExtractor(bcvCSV, nil),
			PDF:  cembraparser.NewMockPDFExtractor(cembraXML, nil),
		}))
	require.NoError(t, err)
	return c
}

func convertAll(t *testing.T, c *container.Container) map[parser.Type][]models.Entry {
	t.Helper()
	revolutPath := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(revolutPath, []byte(revolutCSV), 0600))

	inputs := map[parser.Type]string{
		parser.BCV:     "statement.xlsx",
		parser.Revolut: revolutPath,
		parser.Cembra:  "statement.pdf",
	}

	result := make(map[parser.Type][]models.Entry)
	for pt, input := range inputs {
		p, err := c.GetParser(pt)
		require.NoError(t, err)
		entries, err := p.ConvertFile(context.Background(), input, c.GetClassifier())
		require.NoError(t, err, pt)
		result[pt] = entries
	}
	return result
}

// Every format yields balanced two-line entries classified by the same table.
func TestCrossParserConsistency(t *testing.T) {
	c := newContainer(t)
	all := convertAll(t, c)

	assert.Len(t, all[parser.BCV], 2)
	assert.Len(t, all[parser.Revolut], 1)
	assert.Len(t, all[parser.Cembra], 1)

	known := map[string]bool{categorizer.UnknownAccount: true}
	for _, account := range c.GetRules().Accounts() {
		known[account] = true
	}

	for pt, entries := range all {
		for _, e := range entries {
			require.NoError(t, e.Validate(), pt)
			assert.Len(t, e.Lines, 2, pt)
			assert.False(t, e.Date.IsZero(), pt)

			var classified string
			for _, l := range e.Lines {
				if pt == parser.Cembra && l.HasAmount() || pt != parser.Cembra && !l.HasAmount() {
					classified = l.Account
				}
			}
			assert.True(t, known[classified], "%s: %s is neither a rule account nor unknown", pt, classified)
		}
	}
}

func TestCrossParserLedgerOutput(t *testing.T) {
	c := newContainer(t)
	all := convertAll(t, c)

	tests := []struct {
		pt       parser.Type
		expected string
	}{
		{
			pt: parser.BCV,
			expected: "2024-01-03 * \"MIGROS LAUSANNE\"\n Assets:Banks:BCV -45.30 CHF\n Expenses:Groceries\n\n" +
				"2024-01-05 * \"Salary\"\n Assets:Banks:BCV 4200.00 CHF\n Liabilities:Unknown\n\n",
		},
		{
			pt:       parser.Revolut,
			expected: "2024-01-03 * \"Boreal Coffee\"\n Assets:Banks:Revolut -5.50 CHF\n Expenses:Food:Coffee\n\n",
		},
		{
			pt:       parser.Cembra,
			expected: "2024-01-03 * \"SBB CFF FFS\"\n Expenses:Transport 12.00 CHF\n Liabilities:CreditCard\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.pt), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.WriteLedger(&buf, all[tt.pt]))
			assert.Equal(t, tt.expected, buf.String())
			assert.True(t, strings.HasSuffix(buf.String(), "\n\n"))
		})
	}
}
