package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codeact/internal/codeaction"
	"codeact/internal/diagfmt"
	"codeact/internal/lint"
	"codeact/internal/source"
	"codeact/internal/ui"
	"codeact/internal/version"
)

var lintCmd = &cobra.Command{
	Use:          "lint [flags] <file>...",
	Short:        "Report lint diagnostics and the quick fixes available for them",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runLint,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif)")
	lintCmd.Flags().Bool("fixes", true, "list the quick fixes offered for each diagnostic")
	lintCmd.Flags().Bool("preview", false, "show before/after lines for every fix")
	lintCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	lintCmd.Flags().String("progress", "auto", "show a progress view on stderr (auto|on|off)")
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "sarif":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or sarif)", format)
	}
	showFixes, err := cmd.Flags().GetBool("fixes")
	if err != nil {
		return err
	}
	showPreview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return err
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return err
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("invalid --path-mode %q", pathModeStr)
	}

	progressMode, err := cmd.Flags().GetString("progress")
	if err != nil {
		return err
	}
	showProgress, err := progressEnabled(progressMode, isTerminal(os.Stderr), len(args))
	if err != nil {
		return err
	}

	colorOn, err := resolveColor(cmd)
	if err != nil {
		return err
	}
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

	ws := newDiskWorkspace(lint.Options{MaxDiagnostics: cfg.Lint.MaxDiagnostics})
	svc, err := newService(ws, cfg, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	var reports []diagfmt.Report
	if showProgress {
		reports, err = lintWithProgress(ctx, cmd.ErrOrStderr(), ws, svc, args)
	} else {
		reports, err = lintFiles(ctx, ws, svc, args, nil)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return diagfmt.JSON(ctx, out, reports, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeFixes:     showFixes,
			IncludePreviews:  showPreview,
		})
	case "sarif":
		return diagfmt.Sarif(ctx, out, reports, diagfmt.SarifRunMeta{
			ToolName:       "codeact",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return diagfmt.Pretty(ctx, out, reports, diagfmt.PrettyOpts{
			Color:       colorOn,
			PathMode:    pathMode,
			ShowFixes:   showFixes,
			ShowPreview: showPreview,
		})
	}
}

// lintFiles builds a report per path. progress, when set, sees every file
// move through the ui stages.
func lintFiles(ctx context.Context, ws *diskWorkspace, svc *codeaction.Service, paths []string, progress func(ui.Event)) ([]diagfmt.Report, error) {
	if progress == nil {
		progress = func(ui.Event) {}
	}
	reports := make([]diagfmt.Report, 0, len(paths))
	for _, path := range paths {
		progress(ui.Event{File: path, Stage: ui.StageAnalyze})
		rep, err := lintFile(ctx, ws, svc, path, progress)
		if err != nil {
			progress(ui.Event{File: path, Stage: ui.StageError})
			return nil, err
		}
		progress(ui.Event{File: path, Stage: ui.StageDone, Diagnostics: len(rep.Entries)})
		reports = append(reports, rep)
	}
	return reports, nil
}

func lintFile(ctx context.Context, ws *diskWorkspace, svc *codeaction.Service, path string, progress func(ui.Event)) (diagfmt.Report, error) {
	doc, ok := ws.Document(path)
	if !ok {
		return diagfmt.Report{}, fmt.Errorf("lint: %s: no such file", path)
	}
	content, err := doc.Text(ctx)
	if err != nil {
		return diagfmt.Report{}, fmt.Errorf("lint: %w", err)
	}
	diags, err := doc.Diagnostics(ctx)
	if err != nil {
		return diagfmt.Report{}, fmt.Errorf("lint: %w", err)
	}
	progress(ui.Event{File: path, Stage: ui.StageFixes})
	return diagfmt.Collect(ctx, svc, source.NewVirtualFile(doc.Name(), content), diags)
}

// progressEnabled resolves --progress. auto shows the view only for several
// files on a terminal.
func progressEnabled(mode string, tty bool, files int) (bool, error) {
	switch strings.ToLower(mode) {
	case "auto", "":
		return tty && files > 1, nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --progress %q (must be auto, on or off)", mode)
	}
}
