package codeaction

import (
	"codeact/internal/fix"
)

// Action is one suggestion registered by a provider. An action with children
// is a menu: only its children are presented.
type Action struct {
	Title    string
	Kind     fix.Kind
	Payload  fix.Payload
	Children []*Action
	// RequiresInput marks actions that cannot compute edits without asking
	// the user for more information.
	RequiresInput bool
	IsPreferred   bool
}

// FromFix wraps a fix as an action.
func FromFix(f fix.Fix) *Action {
	return &Action{
		Title:       f.Title,
		Kind:        f.Kind,
		Payload:     f,
		IsPreferred: f.IsPreferred,
	}
}

// Nested creates a menu action whose children are presented in its place.
func Nested(title string, kind fix.Kind, children ...*Action) *Action {
	return &Action{Title: title, Kind: kind, Children: children}
}

// HasChildren reports whether a is a menu.
func (a *Action) HasChildren() bool {
	return a != nil && len(a.Children) > 0
}

// Presentable is an action ready for a host to show.
type Presentable struct {
	Title       string
	ParentTitle string // title of the enclosing menu, empty for top-level actions
	Kind        fix.Kind
	Provider    string // declared name of the contributing provider
	Payload     fix.Payload
	IsPreferred bool
}

// DisplayTitle joins the parent and own title for hosts without submenus.
func (p Presentable) DisplayTitle() string {
	if p.ParentTitle == "" {
		return p.Title
	}
	return p.ParentTitle + ": " + p.Title
}
