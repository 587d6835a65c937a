// Package builtin contains the fix and refactoring providers shipped with
// codeact. The fixes respond to the diagnostics of internal/lint.
package builtin

import (
	"context"
	"fmt"

	"codeact/internal/codeaction"
	"codeact/internal/source"
)

// BundleName is the name of the built-in bundle.
const BundleName = "builtin"

// Bundle groups the built-in providers.
type Bundle struct{}

// New returns the built-in bundle.
func New() *Bundle { return &Bundle{} }

func (*Bundle) Name() string { return BundleName }

func (*Bundle) FixProviders() []codeaction.FixEntry {
	return []codeaction.FixEntry{
		{Registration: codeaction.Registration{Name: NameTrimTrailingWhitespace}, Provider: TrimTrailingWhitespace{}},
		{Registration: codeaction.Registration{Name: NameIndentWithSpaces, After: []string{NameTrimTrailingWhitespace}}, Provider: IndentWithSpaces{}},
		{Registration: codeaction.Registration{Name: NameInsertFinalNewline}, Provider: InsertFinalNewline{}},
		{Registration: codeaction.Registration{Name: NameRemoveUnusedImports}, Provider: RemoveUnusedImports{}},
	}
}

func (*Bundle) RefactoringProviders() []codeaction.RefactoringEntry {
	return []codeaction.RefactoringEntry{
		{Registration: codeaction.Registration{Name: NameChangeCase}, Provider: ChangeCase{}},
		{Registration: codeaction.Registration{Name: NameSortLines}, Provider: SortLines{}},
		{Registration: codeaction.Registration{Name: NameWrapInParentheses, Before: []string{NameChangeCase}}, Provider: WrapInParentheses{}},
		{Registration: codeaction.Registration{Name: NameExtractVariable}, Provider: ExtractVariable{}},
	}
}

// Provider names used in ordering constraints.
const (
	NameTrimTrailingWhitespace = "TrimTrailingWhitespace"
	NameIndentWithSpaces       = "IndentWithSpaces"
	NameInsertFinalNewline     = "InsertFinalNewline"
	NameRemoveUnusedImports    = "RemoveUnusedImports"
	NameChangeCase             = "ChangeCase"
	NameSortLines              = "SortLines"
	NameWrapInParentheses      = "WrapInParentheses"
	NameExtractVariable        = "ExtractVariable"
)

// loadFile reads the document text for span arithmetic.
func loadFile(ctx context.Context, doc codeaction.Document) (*source.File, error) {
	text, err := doc.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", doc.Name(), err)
	}
	return source.NewVirtualFile(doc.Name(), text), nil
}
