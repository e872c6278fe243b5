package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/gator/service/gateway"
	"github.com/viant/gator/tracing"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long: `Start the HTTP gateway exposing POST /ask, POST /approve,
GET /v1/actions and GET /health. The listener address and timeouts come
from GATOR_HTTP_* environment variables; --addr overrides the address.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address, overrides GATOR_HTTP_ADDR")
	cmd.Flags().String("trace-file", "", "write OpenTelemetry spans to this file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if traceFile, _ := cmd.Flags().GetString("trace-file"); traceFile != "" {
		if err := tracing.Init("gator", "dev", traceFile); err != nil {
			return err
		}
	}
	runtime, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer runtime.Close()

	config, err := gateway.NewConfigFromEnv()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		config.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return runtime.NewServer(gateway.WithConfig(config)).Run(ctx)
}
