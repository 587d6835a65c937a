package observ

import (
	"strings"
	"testing"
)

func TestTimerRecordsPhasesInOrder(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("aggregate")
	timer.End(idx, "2 groups")
	timer.Measure("fixes", func() string { return "3 actions" })

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "aggregate" || report.Phases[1].Name != "fixes" {
		t.Fatalf("unexpected phase order: %+v", report.Phases)
	}
	p, ok := report.Phase("fixes")
	if !ok || p.Note != "3 actions" {
		t.Fatalf("fixes phase missing or wrong note: %+v", p)
	}
	if !strings.Contains(timer.Summary(), "total") {
		t.Fatalf("summary lacks total line:\n%s", timer.Summary())
	}
}

func TestTimerIgnoresBadIndex(t *testing.T) {
	timer := NewTimer()
	timer.End(5, "noop")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", got)
	}
	var nilTimer *Timer
	nilTimer.End(nilTimer.Begin("x"), "")
}
