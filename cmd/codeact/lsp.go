package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"codeact/internal/builtin"
	"codeact/internal/codeaction"
	"codeact/internal/lsp"
	"codeact/internal/metrics"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the code action language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	lspCmd.Flags().Duration("debounce", 300*time.Millisecond, "delay before publishing diagnostics after an edit")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var collector *metrics.Collector
	if metricsAddr != "" {
		collector = metrics.New()
		stop, err := serveMetrics(ctx, metricsAddr, collector)
		if err != nil {
			return err
		}
		defer stop()
	}

	server, err := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       debounce,
		Bundles:        []codeaction.Bundle{builtin.New()},
		Disallow:       cfg.Providers.Disallow,
		Parallel:       cfg.Pipeline.Parallel,
		Jobs:           cfg.Pipeline.Jobs,
		MaxDiagnostics: cfg.Lint.MaxDiagnostics,
		Metrics:        collector,
	})
	if err != nil {
		return err
	}
	if err := server.Run(ctx); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

// serveMetrics starts the metrics endpoint in the background. The returned
// function shuts it down.
func serveMetrics(ctx context.Context, addr string, c *metrics.Collector) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
