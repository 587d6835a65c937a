package codeaction

// candidate is an action tagged with the declared name of its provider.
type candidate struct {
	action   *Action
	provider string
}

// normalize turns ordered candidates into presentable actions. A menu is
// replaced by its children, recursively, each child annotated with the title
// of its enclosing menu. Leaves that require interactive input are dropped.
func normalize(cands []candidate) []Presentable {
	out := make([]Presentable, 0, len(cands))
	for _, c := range cands {
		out = flatten(out, c.action, "", c.provider)
	}
	return out
}

func flatten(out []Presentable, a *Action, parent, provider string) []Presentable {
	if a == nil {
		return out
	}
	if a.HasChildren() {
		for _, child := range a.Children {
			out = flatten(out, child, a.Title, provider)
		}
		return out
	}
	if a.RequiresInput {
		return out
	}
	return append(out, Presentable{
		Title:       a.Title,
		ParentTitle: parent,
		Kind:        a.Kind,
		Provider:    provider,
		Payload:     a.Payload,
		IsPreferred: a.IsPreferred,
	})
}
