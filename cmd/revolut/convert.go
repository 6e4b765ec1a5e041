// Package revolut handles Revolut CSV file processing commands
package revolut

import (
	"fjacquet/beancount-import/cmd/common"
	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/internal/parser"

	"github.com/spf13/cobra"
)

var account string

// Cmd represents the revolut command
var Cmd = &cobra.Command{
	Use:   "revolut <export.csv>",
	Short: "Convert Revolut CSV exports to Beancount entries",
	Long: `Convert a Revolut CSV export. Pending transactions and incoming
"Payment from" transfers are skipped; the fee is folded into the amount.`,
	Args: cobra.ExactArgs(1),
	RunE: revolutFunc,
}

func init() {
	Cmd.Flags().StringVar(&account, "account", "", "Statement account (default: accounts.revolut from config)")
}

func revolutFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	p, err := c.ParserFor(parser.Revolut, account)
	if err != nil {
		return err
	}

	return common.ProcessFile(cmd.Context(), p, c.GetClassifier(), c, common.Options{
		Input:    args[0],
		Output:   root.SharedFlags.Output,
		Validate: root.SharedFlags.Validate,
	}, cmd.OutOrStdout(), root.GetLogger())
}
