package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the comparison HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.build(prometheus.DefaultRegisterer, nil)
			if err != nil {
				return err
			}
			defer container.Cleanup()
			defer syncLogger(container.Logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return container.Serve(ctx)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on")
	if err := c.v.BindPFlag("server.port", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}

	return cmd
}
