package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"codeact/internal/codeaction"
	"codeact/internal/lint"
)

var providersCmd = &cobra.Command{
	Use:          "providers",
	Short:        "List registered providers with their ordering constraints",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runProviders,
}

func init() {
	providersCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type providerInfo struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	ID         string   `json:"id"`
	Fixes      []string `json:"fixes,omitempty"`
	Before     []string `json:"before,omitempty"`
	After      []string `json:"after,omitempty"`
	Disallowed bool     `json:"disallowed,omitempty"`
}

func runProviders(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	if _, err := resolveColor(cmd); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(newDiskWorkspace(lint.Options{}), cfg, nil)
	if err != nil {
		return err
	}
	infos := collectProviders(svc)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	return renderProviders(cmd.OutOrStdout(), infos)
}

func collectProviders(svc *codeaction.Service) []providerInfo {
	var out []providerInfo
	for _, e := range svc.FixProviders() {
		out = append(out, providerInfo{
			Kind:       "fix",
			Name:       e.Name,
			ID:         e.ID,
			Fixes:      e.Provider.FixableDiagnosticIDs(),
			Before:     e.Before,
			After:      e.After,
			Disallowed: svc.IsDisallowed(e.ID),
		})
	}
	for _, e := range svc.RefactoringProviders() {
		out = append(out, providerInfo{
			Kind:       "refactoring",
			Name:       e.Name,
			ID:         e.ID,
			Before:     e.Before,
			After:      e.After,
			Disallowed: svc.IsDisallowed(e.ID),
		})
	}
	return out
}

func renderProviders(w io.Writer, infos []providerInfo) error {
	for _, p := range infos {
		line := fmt.Sprintf("%-12s %-24s %s", p.Kind, p.Name, p.ID)
		if p.Disallowed {
			if _, err := warnColor.Fprintf(w, "%s (disallowed)\n", line); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		var details []string
		if len(p.Fixes) > 0 {
			details = append(details, "fixes "+strings.Join(p.Fixes, ", "))
		}
		if len(p.Before) > 0 {
			details = append(details, "before "+strings.Join(p.Before, ", "))
		}
		if len(p.After) > 0 {
			details = append(details, "after "+strings.Join(p.After, ", "))
		}
		for _, d := range details {
			if _, err := fmt.Fprintf(w, "    %s\n", d); err != nil {
				return err
			}
		}
	}
	return nil
}
