// Package root contains the root command for the application
package root

import (
	"errors"
	"sync"

	"fjacquet/beancount-import/internal/config"
	"fjacquet/beancount-import/internal/container"
	"fjacquet/beancount-import/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Rules      string
	Output     string
	Validate   bool
	ConfigFile string
}

// ErrNotInitialized is returned when a command runs before the container exists.
var ErrNotInitialized = errors.New("application container not initialized")

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppContainer holds the wired dependencies once PersistentPreRunE ran
	AppContainer *container.Container

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	initOnce sync.Once

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "beancount-import",
		Short: "Convert bank and credit card statements to Beancount entries.",
		Long: `beancount-import converts BCV account statements (XLSX), Revolut CSV
exports and Cembra credit card statements (PDF) into Beancount ledger entries.
Counter-accounts are chosen by an ordered "pattern,account" rules file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initContainer,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to release resources")
			}
		},
	}
)

// Init initializes the root command flags. Calling it more than once is a no-op.
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Rules, "rules", "r", "", "Rules file mapping description patterns to accounts (overrides rules.file)")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output ledger file (default: stdout)")
		Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate file format before conversion")
		Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.beancount-import, .beancount-import or .)")
	})
}

// GetContainer returns the application container.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, ErrNotInitialized
	}
	return AppContainer, nil
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	return Log
}

func initContainer(cmd *cobra.Command, args []string) error {
	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.Rules != "" {
		cfg.Rules.File = SharedFlags.Rules
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	AppContainer = c
	Log = c.GetLogger()
	return nil
}
