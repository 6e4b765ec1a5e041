// Package bcv handles the BCV statement conversion command
package bcv

import (
	"fjacquet/beancount-import/cmd/common"
	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/internal/parser"

	"github.com/spf13/cobra"
)

var account string

// Cmd represents the bcv command
var Cmd = &cobra.Command{
	Use:   "bcv <statement.xlsx>",
	Short: "Convert BCV XLSX statements to Beancount entries",
	Long: `Convert a BCV account statement exported as XLSX. The workbook is
rendered to CSV with ssconvert, the disclaimer preamble is skipped and every
movement becomes one entry against the BCV account.`,
	Args: cobra.ExactArgs(1),
	RunE: bcvFunc,
}

func init() {
	Cmd.Flags().StringVar(&account, "account", "", "Statement account (default: accounts.bcv from config)")
}

func bcvFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	p, err := c.ParserFor(parser.BCV, account)
	if err != nil {
		return err
	}

	return common.ProcessFile(cmd.Context(), p, c.GetClassifier(), c, common.Options{
		Input:    args[0],
		Output:   root.SharedFlags.Output,
		Validate: root.SharedFlags.Validate,
	}, cmd.OutOrStdout(), root.GetLogger())
}
