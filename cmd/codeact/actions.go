package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"codeact/internal/builtin"
	"codeact/internal/codeaction"
	"codeact/internal/config"
	"codeact/internal/fix"
	"codeact/internal/lint"
	"codeact/internal/metrics"
	"codeact/internal/observ"
	"codeact/internal/order"
	"codeact/internal/source"
	"codeact/internal/ui"
)

var actionsCmd = &cobra.Command{
	Use:   "actions [flags] <file>",
	Short: "List the code actions available at a position or selection",
	Long: "Lint the file, run every registered fix and refactoring provider at the " +
		"requested position, and print the ordered, flattened action list.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runActions,
}

func init() {
	actionsCmd.Flags().Int("line", 1, "1-based line of the caret or selection start")
	actionsCmd.Flags().Int("col", 1, "1-based column of the caret or selection start")
	actionsCmd.Flags().Int("end-line", 0, "1-based line of the selection end (0 = no selection)")
	actionsCmd.Flags().Int("end-col", 1, "1-based column of the selection end")
	actionsCmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack)")
	actionsCmd.Flags().Int("preview", 0, "print the document as it would look after action N")
	actionsCmd.Flags().Int("apply", 0, "apply action N and write the file")
	actionsCmd.Flags().Bool("providers", false, "show the contributing provider of each action")
	actionsCmd.Flags().Bool("timings", false, "print phase timings to stderr")
}

type actionsOptions struct {
	format       string
	preview      int
	apply        int
	showProvider bool
	timings      bool
}

// actionsOutput is the machine-readable form of one request.
type actionsOutput struct {
	File    string         `json:"file" msgpack:"file"`
	Actions []actionOutput `json:"actions" msgpack:"actions"`
	Faults  []faultOutput  `json:"faults,omitempty" msgpack:"faults,omitempty"`
	Cycles  []order.Cycle  `json:"cycles,omitempty" msgpack:"cycles,omitempty"`
	Timing  observ.Report  `json:"timing" msgpack:"timing"`
}

type actionOutput struct {
	Title       string       `json:"title" msgpack:"title"`
	ParentTitle string       `json:"parent_title,omitempty" msgpack:"parent_title,omitempty"`
	Kind        string       `json:"kind" msgpack:"kind"`
	Provider    string       `json:"provider" msgpack:"provider"`
	Preferred   bool         `json:"preferred,omitempty" msgpack:"preferred,omitempty"`
	Edits       []editOutput `json:"edits,omitempty" msgpack:"edits,omitempty"`
	Error       string       `json:"error,omitempty" msgpack:"error,omitempty"`
}

type editOutput struct {
	Range   source.Range `json:"range" msgpack:"range"`
	NewText string       `json:"new_text" msgpack:"new_text"`
}

type faultOutput struct {
	Provider string `json:"provider" msgpack:"provider"`
	Kind     string `json:"kind" msgpack:"kind"`
	Error    string `json:"error" msgpack:"error"`
}

func runActions(cmd *cobra.Command, args []string) error {
	opts, err := readActionsOptions(cmd)
	if err != nil {
		return err
	}
	req, err := readRequest(cmd, args[0])
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
	res, err := svc.GetAvailableActions(ctx, req)
	if err != nil {
		return fmt.Errorf("actions: %w", err)
	}
	file, err := ws.File(req.FileName)
	if err != nil {
		return fmt.Errorf("actions: %w", err)
	}
	content := file.Content

	if opts.timings {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.String())
	}
	for _, f := range res.Faults {
		errColor.Fprintf(cmd.ErrOrStderr(), "warning: provider %s failed: %v\n", f.Name, f.Err)
	}

	if opts.apply > 0 {
		return applyAction(ctx, cmd.OutOrStdout(), file, res, opts.apply)
	}
	if opts.preview > 0 {
		a, err := pick(res, opts.preview)
		if err != nil {
			return err
		}
		out, err := fix.PreviewPayload(ctx, content, a.Payload)
		if err != nil {
			return fmt.Errorf("preview %q: %w", a.DisplayTitle(), err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	switch opts.format {
	case "json":
		return renderActionsJSON(cmd.OutOrStdout(), buildActionsOutput(ctx, req.FileName, content, res))
	case "msgpack":
		return renderActionsMsgpack(cmd.OutOrStdout(), buildActionsOutput(ctx, req.FileName, content, res))
	default:
		start := req.Position
		if req.Selection != nil {
			start = req.Selection.Start
		}
		return ui.RenderActions(cmd.OutOrStdout(), res, ui.Options{
			Title:        fmt.Sprintf("%s:%d:%d", args[0], start.Line+1, start.Character+1),
			Width:        terminalWidth(os.Stdout),
			Color:        colorOn,
			ShowProvider: opts.showProvider,
		})
	}
}

func readActionsOptions(cmd *cobra.Command) (actionsOptions, error) {
	var opts actionsOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, err
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "json", "msgpack":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be pretty, json or msgpack)", opts.format)
	}
	if opts.preview, err = cmd.Flags().GetInt("preview"); err != nil {
		return opts, err
	}
	if opts.apply, err = cmd.Flags().GetInt("apply"); err != nil {
		return opts, err
	}
	if opts.preview > 0 && opts.apply > 0 {
		return opts, fmt.Errorf("--preview and --apply are mutually exclusive")
	}
	if opts.showProvider, err = cmd.Flags().GetBool("providers"); err != nil {
		return opts, err
	}
	if opts.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return opts, err
	}
	return opts, nil
}

// readRequest converts the 1-based flags into a request. Columns count
// UTF-16 code units, as LSP positions do.
func readRequest(cmd *cobra.Command, file string) (codeaction.Request, error) {
	ints := make(map[string]int, 4)
	for _, name := range []string{"line", "col", "end-line", "end-col"} {
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			return codeaction.Request{}, err
		}
		ints[name] = v
	}
	return buildRequest(file, ints["line"], ints["col"], ints["end-line"], ints["end-col"])
}

func buildRequest(file string, line, col, endLine, endCol int) (codeaction.Request, error) {
	if line < 1 || col < 1 {
		return codeaction.Request{}, fmt.Errorf("--line and --col are 1-based, got %d:%d", line, col)
	}
	req := codeaction.Request{
		FileName: file,
		Position: source.Position{Line: line - 1, Character: col - 1},
	}
	if endLine == 0 {
		return req, nil
	}
	if endCol < 1 {
		return codeaction.Request{}, fmt.Errorf("--end-col is 1-based, got %d", endCol)
	}
	end := source.Position{Line: endLine - 1, Character: endCol - 1}
	if end.Line < req.Position.Line || (end.Line == req.Position.Line && end.Character < req.Position.Character) {
		return codeaction.Request{}, fmt.Errorf("selection end %d:%d is before its start %d:%d", endLine, endCol, line, col)
	}
	req.Selection = &source.Range{Start: req.Position, End: end}
	return req, nil
}

// newService builds the service over the built-in bundle with the
// configured policy.
func newService(ws codeaction.Workspace, cfg config.Config, m *metrics.Collector) (*codeaction.Service, error) {
	return codeaction.NewService(ws, []codeaction.Bundle{builtin.New()}, codeaction.Options{
		Policy:   cfg.DisallowList(),
		Parallel: cfg.Pipeline.Parallel,
		Jobs:     cfg.Pipeline.Jobs,
		Metrics:  m,
	})
}

func pick(res codeaction.Result, n int) (codeaction.Presentable, error) {
	if n < 1 || n > len(res.Actions) {
		return codeaction.Presentable{}, fmt.Errorf("no action #%d (%d available)", n, len(res.Actions))
	}
	return res.Actions[n-1], nil
}

// applyAction writes action n to file.Name, keeping the BOM and line endings
// the file had on disk.
func applyAction(ctx context.Context, out io.Writer, file *source.File, res codeaction.Result, n int) error {
	a, err := pick(res, n)
	if err != nil {
		return err
	}
	updated, err := fix.PreviewPayload(ctx, file.Content, a.Payload)
	if err != nil {
		return fmt.Errorf("apply %q: %w", a.DisplayTitle(), err)
	}
	path := file.Name
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, file.Encode(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	_, err = fmt.Fprintf(out, "Applied %q to %s\n", a.DisplayTitle(), path)
	return err
}

func buildActionsOutput(ctx context.Context, name string, content []byte, res codeaction.Result) actionsOutput {
	file := source.NewVirtualFile(name, content)
	out := actionsOutput{
		File:    name,
		Actions: make([]actionOutput, 0, len(res.Actions)),
		Cycles:  res.Cycles,
		Timing:  res.Timing,
	}
	for _, a := range res.Actions {
		item := actionOutput{
			Title:       a.Title,
			ParentTitle: a.ParentTitle,
			Kind:        a.Kind.String(),
			Provider:    a.Provider,
			Preferred:   a.IsPreferred,
		}
		if a.Payload != nil {
			edits, err := a.Payload.Edits(ctx)
			if err != nil {
				item.Error = err.Error()
			}
			for _, e := range edits {
				item.Edits = append(item.Edits, editOutput{Range: file.RangeOf(e.Span), NewText: e.NewText})
			}
		}
		out.Actions = append(out.Actions, item)
	}
	for _, f := range res.Faults {
		out.Faults = append(out.Faults, faultOutput{Provider: f.Provider, Kind: f.Kind.String(), Error: f.Err.Error()})
	}
	return out
}

func renderActionsJSON(w io.Writer, out actionsOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderActionsMsgpack(w io.Writer, out actionsOutput) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(out)
}
