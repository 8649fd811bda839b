package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dwsmith1983/tagwatch/internal/config"
	"github.com/dwsmith1983/tagwatch/internal/server"
	"github.com/dwsmith1983/tagwatch/internal/watcher"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with a local check loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, noWatch)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "serve the API without the periodic check")
	return cmd
}

func runServe(cmd *cobra.Command, noWatch bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cmd)
	if err != nil {
		return err
	}

	interval, err := config.Duration(d.Config.Schedule.Interval, watcher.DefaultInterval)
	if err != nil {
		return err
	}

	srv := server.New(d.Config.Server.Addr, d.Engine, d.Logger)
	var w *watcher.Watcher
	if !noWatch {
		w = watcher.New(d.Engine, interval, d.Logger)
		w.Start(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		color.Yellow("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if w != nil {
			w.Stop(shutdownCtx)
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		closeDeps(shutdownCtx, d)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	color.Green("Server stopped gracefully")
	return nil
}
