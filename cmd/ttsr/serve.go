package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-ttsr/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			logger := slog.Default()

			registry, err := loadRegistry(cfg)
			if err != nil {
				return err
			}

			s, err := newSynthesizer(cfg, logger)
			if err != nil {
				return err
			}

			sink, closeSinks := progressSinks(cfg, logger)
			defer closeSinks()

			orch, err := newOrchestrator(cfg, s, registry, sink, nil, logger)
			if err != nil {
				return err
			}

			srv := server.New(cfg.Server.ListenAddr, orch, registry,
				server.WithLogger(logger),
				server.WithMaxBodyBytes(int64(cfg.Server.MaxBodyBytes)),
				server.WithRequestTimeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
				server.WithDownloadPrefix(cfg.Output.Prefix),
			).WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = srv.Start(ctx)
			orch.Cancel()

			return err
		},
	}

	return cmd
}
