package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/depp/blockpaint/lib/server"
)

var flagAddr string

var cmdServe = cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP evaluation API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := cfg.Addr
		if cmd.Flags().Changed("addr") {
			addr = flagAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		s := server.New(&server.Options{
			Costs:   cfg.Costs(),
			Workers: cfg.Workers,
			Log:     log,
		})
		return s.ListenAndServe(ctx, addr)
	},
}

func init() {
	cmdServe.Flags().StringVar(&flagAddr, "addr", "", "address to listen on (default $BLOCKPAINT_ADDR)")
}
