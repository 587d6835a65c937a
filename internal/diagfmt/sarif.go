package diagfmt

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"sort"

	"codeact/internal/diag"
	"codeact/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// sarifRegion uses 1-based lines and UTF-16 columns, the SARIF default.
type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// Sarif writes the reports as a single-run SARIF 2.1.0 log. Fixes whose
// payload fails to build are left out.
func Sarif(ctx context.Context, w io.Writer, reports []Report, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Invocations: []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}},
		Results: make([]sarifResult, 0),
	}
	rules := make(map[string]struct{})
	for _, rep := range reports {
		uri := filepath.ToSlash(rep.File.Name)
		for _, e := range rep.Entries {
			d := e.Diagnostic
			rules[d.ID] = struct{}{}
			res := sarifResult{
				RuleID:  d.ID,
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: d.Message},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           regionOf(rep.File, d.Span),
				}}},
			}
			for _, a := range e.Fixes {
				if a.Payload == nil {
					continue
				}
				edits, err := a.Payload.Edits(ctx)
				if err != nil {
					continue
				}
				change := sarifArtifactChange{ArtifactLocation: sarifArtifactLocation{URI: uri}}
				for _, edit := range edits {
					r := sarifReplacement{DeletedRegion: regionOf(rep.File, edit.Span)}
					if edit.NewText != "" {
						r.InsertedContent = &sarifMessage{Text: edit.NewText}
					}
					change.Replacements = append(change.Replacements, r)
				}
				res.Fixes = append(res.Fixes, sarifFix{
					Description:     sarifMessage{Text: a.DisplayTitle()},
					ArtifactChanges: []sarifArtifactChange{change},
				})
			}
			run.Results = append(run.Results, res)
		}
	}
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: id})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevInfo:
		return "note"
	default:
		return "none"
	}
}

func regionOf(f *source.File, span source.Span) sarifRegion {
	r := f.RangeOf(span)
	return sarifRegion{
		StartLine:   r.Start.Line + 1,
		StartColumn: r.Start.Character + 1,
		EndLine:     r.End.Line + 1,
		EndColumn:   r.End.Character + 1,
	}
}
