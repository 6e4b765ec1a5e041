// Package cembra handles the Cembra credit card statement command
package cembra

import (
	"fjacquet/beancount-import/cmd/common"
	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/internal/parser"

	"github.com/spf13/cobra"
)

var account string

// Cmd represents the cembra command
var Cmd = &cobra.Command{
	Use:   "cembra <statement.pdf>",
	Short: "Convert Cembra PDF statements to Beancount entries",
	Long: `Convert a Cembra credit card statement PDF. The PDF is rendered to
pdf2xml (pdftohtml or the built-in reader, see parsers.cembra.extractor) and
transactions are rebuilt from runs of four text fragments.`,
	Args: cobra.ExactArgs(1),
	RunE: cembraFunc,
}

func init() {
	Cmd.Flags().StringVar(&account, "account", "", "Statement account (default: accounts.credit_card from config)")
}

func cembraFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	p, err := c.ParserFor(parser.Cembra, account)
	if err != nil {
		return err
	}

	return common.ProcessFile(cmd.Context(), p, c.GetClassifier(), c, common.Options{
		Input:    args[0],
		Output:   root.SharedFlags.Output,
		Validate: root.SharedFlags.Validate,
	}, cmd.OutOrStdout(), root.GetLogger())
}
