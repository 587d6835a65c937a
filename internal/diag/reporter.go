package diag

import "codeact/internal/source"

// Reporter — минимальный контракт получения диагностик от анализаторов.
type Reporter interface {
	Report(id string, sev Severity, span source.Span, msg string)
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct {
	Bag    *Bag
	Source string
}

func (r BagReporter) Report(id string, sev Severity, span source.Span, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(New(id, sev, span, msg).WithSource(r.Source))
}
