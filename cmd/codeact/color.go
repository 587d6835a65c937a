package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// resolveColor reads --color and configures fatih/color to match.
func resolveColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	enabled, err := colorEnabled(mode, isTerminal(os.Stdout))
	if err != nil {
		return false, err
	}
	color.NoColor = !enabled
	return enabled, nil
}

func colorEnabled(mode string, tty bool) (bool, error) {
	switch strings.ToLower(mode) {
	case "", "auto":
		return tty && os.Getenv("NO_COLOR") == "", nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

var (
	warnColor = color.New(color.FgYellow, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
)
