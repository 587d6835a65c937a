// Package lint is a small text analyzer producing the diagnostics the
// built-in fix providers respond to.
package lint

import (
	"regexp"
	"strings"

	"codeact/internal/diag"
	"codeact/internal/source"
)

// Diagnostic ids reported by Analyze.
const (
	CodeTrailingWhitespace  = "LNT001"
	CodeTabIndent           = "LNT002"
	CodeMissingFinalNewline = "LNT003"
	CodeUnusedImport        = "LNT100"
)

// SourceName is stamped on every diagnostic.
const SourceName = "lint"

// Options limit the analysis.
type Options struct {
	// MaxDiagnostics caps the result; <= 0 means unbounded.
	MaxDiagnostics int
}

// Analyze returns the diagnostics of file sorted by span.
func Analyze(file *source.File, opts Options) []diag.Diagnostic {
	bag := diag.NewBag(opts.MaxDiagnostics)
	Run(file, diag.NewDedupReporter(diag.BagReporter{Bag: bag, Source: SourceName}))
	bag.Sort()
	return bag.Items()
}

// Run reports the diagnostics of file to r.
func Run(file *source.File, r diag.Reporter) {
	if file == nil || len(file.Content) == 0 {
		return
	}
	for line := 0; line < file.LineCount(); line++ {
		checkLine(file, line, r)
	}
	if file.Content[len(file.Content)-1] != '\n' {
		r.Report(CodeMissingFinalNewline, diag.SevInfo, source.SpanAt(file.Len()), "file does not end with a newline")
	}
	checkImports(file, r)
}

func checkLine(file *source.File, line int, r diag.Reporter) {
	span := file.LineSpan(line)
	text := file.Text(span)
	if text == "" {
		return
	}

	trimmed := strings.TrimRight(text, " \t")
	if len(trimmed) < len(text) {
		ws := source.Span{Start: span.Start + source.MustUint32(len(trimmed)), End: span.End}
		r.Report(CodeTrailingWhitespace, diag.SevWarning, ws, "trailing whitespace")
	}
	if trimmed == "" {
		return
	}

	tabs := len(text) - len(strings.TrimLeft(text, "\t"))
	if tabs > 0 {
		indent := source.Span{Start: span.Start, End: span.Start + source.MustUint32(tabs)}
		r.Report(CodeTabIndent, diag.SevInfo, indent, "indentation uses tabs")
	}
}

var (
	singleImportRe = regexp.MustCompile(`^\s*import\s+(?:([A-Za-z_][A-Za-z0-9_]*|\.)\s+)?"([^"]+)"\s*$`)
	blockImportRe  = regexp.MustCompile(`^\s*(?:([A-Za-z_][A-Za-z0-9_]*|\.)\s+)?"([^"]+)"\s*$`)
	blockStartRe   = regexp.MustCompile(`^\s*import\s*\(\s*$`)
)

type importDecl struct {
	name string
	path string
	span source.Span // the whole line without '\n'
}

// checkImports reports Go-style imports whose name is never used as a
// qualifier ("name.") outside the import declarations.
func checkImports(file *source.File, r diag.Reporter) {
	var (
		imports []importDecl
		inBlock bool
		rest    strings.Builder
	)
	for line := 0; line < file.LineCount(); line++ {
		span := file.LineSpan(line)
		text := file.Text(span)
		switch {
		case inBlock && strings.TrimSpace(text) == ")":
			inBlock = false
			continue
		case inBlock:
			if m := blockImportRe.FindStringSubmatch(text); m != nil {
				if decl, ok := newImportDecl(m[1], m[2], span); ok {
					imports = append(imports, decl)
				}
			}
			continue
		case blockStartRe.MatchString(text):
			inBlock = true
			continue
		}
		if m := singleImportRe.FindStringSubmatch(text); m != nil {
			if decl, ok := newImportDecl(m[1], m[2], span); ok {
				imports = append(imports, decl)
			}
			continue
		}
		rest.WriteString(text)
		rest.WriteByte('\n')
	}

	body := rest.String()
	for _, imp := range imports {
		used := regexp.MustCompile(`\b` + regexp.QuoteMeta(imp.name) + `\.`)
		if !used.MatchString(body) {
			r.Report(CodeUnusedImport, diag.SevWarning, imp.span, "import \""+imp.path+"\" is never used")
		}
	}
}

func newImportDecl(alias, path string, span source.Span) (importDecl, bool) {
	switch alias {
	case "_", ".":
		return importDecl{}, false
	case "":
		alias = path[strings.LastIndexByte(path, '/')+1:]
	}
	if alias == "" {
		return importDecl{}, false
	}
	return importDecl{name: alias, path: path, span: span}, true
}
