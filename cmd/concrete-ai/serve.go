package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yomijipsa-art/concrete-ai/internal/core/async"
	"github.com/yomijipsa-art/concrete-ai/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			asm, err := a.assembler(ctx)
			if err != nil {
				return err
			}
			q := a.cfg.Queue
			jobs := async.NewQueue(asm, a.logger,
				async.WithWorkers(q.Workers),
				async.WithQueueSize(q.Size),
				async.WithProcessTimeout(q.JobTimeout),
				async.WithRetention(q.Retention),
			)

			api := server.NewWebAPI(server.Config{
				Addr:            a.cfg.Server.HTTPAddr,
				ShutdownTimeout: shutdownTimeout,
				MaxUploadMB:     a.cfg.Server.MaxUploadMB,
				Dependencies: server.Dependencies{
					Assembler: asm,
					Jobs:      jobs,
					Logger:    a.logger,
				},
			})
			serveErr := api.Start(ctx)

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := jobs.Shutdown(sctx); err != nil {
				a.logger.Warn("queue.shutdown.incomplete", "error", err)
			}
			return serveErr
		},
	}
}
