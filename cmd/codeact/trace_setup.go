package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeact/internal/config"
	"codeact/internal/trace"
)

// setupTracing creates the tracer described by cfg and attaches it to the
// command context. The returned cleanup flushes and closes it. It first
// dumps the retained events to stderr in ring mode, and in both mode when the
// stream goes to a file.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(), error) {
	tcfg, err := cfg.TracerConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid trace configuration: %w", err)
	}
	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	ringSize, err := cmd.Root().PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	tcfg.RingSize = ringSize

	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	cleanup := func() {
		if ring, ok := dumpRing(tracer, tcfg); ok {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func dumpRing(tracer trace.Tracer, cfg trace.Config) (*trace.RingTracer, bool) {
	switch t := tracer.(type) {
	case *trace.RingTracer:
		return t, true
	case *trace.Tee:
		if cfg.Output == nil && cfg.OutputPath != "" && cfg.OutputPath != "-" {
			return t.Ring()
		}
	}
	return nil, false
}
