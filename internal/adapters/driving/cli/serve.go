package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/karmanotes/pipeline/internal/adapters/driving/watcher"
	"github.com/karmanotes/pipeline/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and conversion workers",
	Long: `Serve starts the HTTP API and the background conversion workers.
Documents left unprocessed by a previous run are re-queued on startup.
If an import watch directory is configured, description files dropped
there are imported automatically.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if app == nil || intakeService == nil {
		return errors.New("pipeline services not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.queue.Start(ctx)
	})

	recovered, err := intakeService.Recover(ctx)
	if err != nil {
		return err
	}
	if recovered > 0 {
		logger.Info("Re-queued %d pending documents", recovered)
	}

	g.Go(func() error {
		logger.Info("Listening on %s", app.cfg.ListenAddr)
		return app.server.Start(app.cfg.ListenAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.server.Shutdown(shutdownCtx)
	})

	if dir := app.cfg.Import.WatchDir; dir != "" {
		g.Go(func() error {
			return watcher.New(importService).Watch(ctx, dir)
		})
	}

	cmd.Println("Pipeline running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Pipeline stopped.")
	return nil
}
