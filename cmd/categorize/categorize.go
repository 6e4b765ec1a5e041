// Package categorize handles the account lookup command
package categorize

import (
	"fmt"
	"strings"

	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize <description>",
	Short: "Print the account a transaction description maps to",
	Long: `Look up a transaction description in the rules file and print the
matching account. Descriptions matching no rule print Liabilities:Unknown, or
the AI suggestion when ai.enabled is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: categorizeFunc,
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	description := strings.Join(args, " ")
	account := c.GetClassifier().Classify(description)
	root.GetLogger().Debug("Classified description",
		logging.Field{Key: "description", Value: description},
		logging.Field{Key: logging.FieldAccount, Value: account})

	_, err = fmt.Fprintln(cmd.OutOrStdout(), account)
	return err
}
