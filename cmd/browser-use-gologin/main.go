package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"browser-use-gologin/internal/adapter/mcpserver"
	"browser-use-gologin/internal/di"
	"browser-use-gologin/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "browser-use-gologin",
		Short:         "MCP server that runs browser tasks inside GoLogin profiles",
		Version:       mcpserver.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve)
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run_task tool over stdio (default) or streamable HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envService := env.NewEnvService()

			cfg, err := env.Load(cmd.Flags())
			if err != nil {
				return err
			}

			container, err := di.NewContainer(cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			container.Logger.Info("Starting",
				"version", mcpserver.ServerVersion,
				"appEnv", envService.AppEnv(),
				"envFiles", envService.LoadedFiles(),
				"transport", cfg.Server.Transport,
				"provider", cfg.LLM.Provider,
				"model", cfg.LLM.Model)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Server.Transport == env.TransportHTTP {
				err = container.Server.ServeHTTP(ctx, cfg.Server.Addr)
			} else {
				err = container.Server.ServeStdio(ctx)
			}
			if err != nil {
				container.Logger.Error("Server stopped", "error", err)
				return err
			}
			container.Logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().String("transport", env.TransportStdio, "transport: stdio or http")
	cmd.Flags().String("addr", ":8080", "listen address for the http transport")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	return cmd
}
