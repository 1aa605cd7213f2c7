package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/scripter/internal/cli"
	"github.com/aretw0/scripter/internal/presentation/tui"
	httpAdapter "github.com/aretw0/scripter/pkg/adapters/http"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control surface",
	Long:  `Serves the built-in scripts over HTTP: start runs, list and inspect them, cancel them. Prometheus metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		quiet, _ := cmd.Flags().GetBool("quiet")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		tree, err := loadTree(cmd)
		if err != nil {
			return err
		}
		store, locker, closeStore, err := runStore(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("failed to close run store", "err", err)
			}
		}()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		r := cli.NewRunner(cli.RunOptions{
			Tree:   tree,
			Output: cmd.OutOrStdout(),
			Store:  store,
			Locker: locker,
			Hooks:  []domain.LifecycleHooks{metrics.Hooks(), observability.LogHooks(logger)},
		}, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(r,
				httpAdapter.WithScripts(cli.Builtins(tree)),
				httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
				httpAdapter.WithLogger(logger),
				httpAdapter.WithBaseContext(ctx),
			),
			ReadHeaderTimeout: 5 * time.Second,
		}

		if !quiet {
			tui.PrintBanner(cmd.OutOrStdout())
		}
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "Starting Scripter Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		fmt.Fprintln(cmd.OutOrStdout(), "\nStart shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				logger.Error("failed to close server", "err", err)
			}
		}
		for _, id := range r.Active() {
			_ = r.Cancel(id)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Scripter Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("quiet", false, "Do not print the banner")
	addStoreFlags(serveCmd)
}
