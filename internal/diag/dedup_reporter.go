package diag

import "codeact/internal/source"

type dedupKey struct {
	id    string
	sev   Severity
	start uint32
	end   uint32
	msg   string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same id, severity, span and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(id string, sev Severity, span source.Span, msg string) {
	if r == nil {
		return
	}
	key := dedupKey{
		id:    id,
		sev:   sev,
		start: span.Start,
		end:   span.End,
		msg:   msg,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(id, sev, span, msg)
	}
}
