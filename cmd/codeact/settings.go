package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeact/internal/config"
)

// loadConfig finds the config file (or reads --config) and applies the
// persistent flag overrides on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return config.Config{}, fmt.Errorf("getwd: %w", err)
		}
		cfg, _, err = config.Load(wd)
	}
	if err != nil {
		return config.Config{}, err
	}

	disallow, err := flags.GetStringSlice("disallow")
	if err != nil {
		return config.Config{}, err
	}
	cfg.Providers.Disallow = append(cfg.Providers.Disallow, disallow...)

	if flags.Changed("parallel") {
		if cfg.Pipeline.Parallel, err = flags.GetBool("parallel"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Pipeline.Jobs, err = flags.GetInt("jobs"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Lint.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, err
		}
	}
	for flag, dst := range map[string]*string{
		"trace":       &cfg.Trace.Output,
		"trace-level": &cfg.Trace.Level,
		"trace-mode":  &cfg.Trace.Mode,
	} {
		v, err := flags.GetString(flag)
		if err != nil {
			return config.Config{}, err
		}
		if v != "" {
			*dst = v
		}
	}
	// --trace alone turns tracing on at phase level.
	if flags.Changed("trace") && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
