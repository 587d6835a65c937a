package main

import (
	"context"
	"path/filepath"
	"testing"

	"codeact/internal/config"
	"codeact/internal/lint"
	"codeact/internal/trace"
	"codeact/internal/ui"
)

func TestLintFilesReportsProgress(t *testing.T) {
	dirty := writeTemp(t, "dirty.go", "abc  \n")
	clean := writeTemp(t, "clean.go", "ok\n")
	ws := newDiskWorkspace(lint.Options{})
	svc, err := newService(ws, config.Default(), nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}

	var events []ui.Event
	reports, err := lintFiles(context.Background(), ws, svc, []string{dirty, clean}, func(ev ui.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("lintFiles: %v", err)
	}
	if len(reports) != 2 || len(reports[0].Entries) != 1 || len(reports[1].Entries) != 0 {
		t.Fatalf("unexpected reports %+v", reports)
	}
	want := []ui.Event{
		{File: dirty, Stage: ui.StageAnalyze},
		{File: dirty, Stage: ui.StageFixes},
		{File: dirty, Stage: ui.StageDone, Diagnostics: 1},
		{File: clean, Stage: ui.StageAnalyze},
		{File: clean, Stage: ui.StageFixes},
		{File: clean, Stage: ui.StageDone},
	}
	if len(events) != len(want) {
		t.Fatalf("events = %+v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestLintFilesMissingFile(t *testing.T) {
	ws := newDiskWorkspace(lint.Options{})
	svc, err := newService(ws, config.Default(), nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.go")
	var last ui.Event
	if _, err := lintFiles(context.Background(), ws, svc, []string{missing}, func(ev ui.Event) { last = ev }); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if last.Stage != ui.StageError || last.File != missing {
		t.Fatalf("last event = %+v", last)
	}
	if _, err := lintFiles(context.Background(), ws, svc, []string{missing}, nil); err == nil {
		t.Fatal("expected an error without a progress sink too")
	}
}

func TestProgressEnabled(t *testing.T) {
	cases := []struct {
		mode  string
		tty   bool
		files int
		want  bool
	}{
		{"auto", true, 2, true},
		{"auto", true, 1, false},
		{"auto", false, 5, false},
		{"on", false, 1, true},
		{"off", true, 5, false},
	}
	for _, c := range cases {
		got, err := progressEnabled(c.mode, c.tty, c.files)
		if err != nil || got != c.want {
			t.Fatalf("progressEnabled(%q, %v, %d) = %v, %v", c.mode, c.tty, c.files, got, err)
		}
	}
	if _, err := progressEnabled("sometimes", true, 2); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestDumpRingOnlyWhenStreamIsElsewhere(t *testing.T) {
	ring := trace.NewRingTracer(4, trace.LevelPhase)
	if got, ok := dumpRing(ring, trace.Config{}); !ok || got != ring {
		t.Fatal("ring mode must dump")
	}
	tee := trace.NewTee(trace.LevelPhase, trace.Nop, ring)
	if _, ok := dumpRing(tee, trace.Config{OutputPath: "-"}); ok {
		t.Fatal("stderr stream already shows every event")
	}
	if got, ok := dumpRing(tee, trace.Config{OutputPath: filepath.Join(t.TempDir(), "t.ndjson")}); !ok || got != ring {
		t.Fatal("file stream should dump the ring tail to stderr")
	}
	if _, ok := dumpRing(trace.Nop, trace.Config{}); ok {
		t.Fatal("nop tracer has no ring")
	}
}
