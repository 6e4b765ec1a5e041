// Package serve runs the HTTP conversion API
package serve

import (
	"context"
	"errors"
	"time"

	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/internal/api"
	"fjacquet/beancount-import/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var address string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statement converters over HTTP",
	Long: `Start an HTTP server exposing GET /api/health and
POST /api/convert/{bcv,revolut,cembra}. Upload the statement in the multipart
field "file"; "account" and a "rules" file are optional.`,
	Args: cobra.NoArgs,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&address, "address", "", "Listen address (default: server.address from config)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if address == "" {
		address = c.GetConfig().Server.Address
	}

	app := api.NewApp(c)
	log := root.GetLogger()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logging.Field{Key: "address", Value: address})
		errCh <- app.Listen(address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	log.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
