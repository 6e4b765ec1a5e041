package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/beancount-import/cmd/bcv"
	"fjacquet/beancount-import/cmd/categorize"
	"fjacquet/beancount-import/cmd/cembra"
	"fjacquet/beancount-import/cmd/revolut"
	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/cmd/serve"
	"fjacquet/beancount-import/internal/config"
)

func init() {
	// Load .env before viper reads the environment; a missing file is fine
	_, _ = config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(bcv.Cmd)
	root.Cmd.AddCommand(revolut.Cmd)
	root.Cmd.AddCommand(cembra.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
