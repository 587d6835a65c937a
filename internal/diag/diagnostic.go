package diag

import (
	"codeact/internal/source"
)

type Diagnostic struct {
	ID       string
	Severity Severity
	Span     source.Span
	Message  string
	Source   string
}

func New(id string, sev Severity, span source.Span, msg string) Diagnostic {
	return Diagnostic{
		ID:       id,
		Severity: sev,
		Span:     span,
		Message:  msg,
	}
}

func (d Diagnostic) WithSource(src string) Diagnostic {
	d.Source = src
	return d
}
