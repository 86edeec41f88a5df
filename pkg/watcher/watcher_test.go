package watcher

import (
	"context"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	fw := &FileWatcher{sourceExts: []string{".cc", ".h"}}

	tests := []struct {
		path     string
		wantType ChangeType
		relevant bool
	}{
		{"util/BUILD", ChangeTypeBuildFile, true},
		{"util/BUILD.bazel", ChangeTypeBuildFile, true},
		{"tools/defs.bzl", ChangeTypeBuildFile, true},
		{"MODULE.bazel", ChangeTypeBuildFile, true},
		{"util/strings.cc", ChangeTypeSourceFile, true},
		{"util/strings.h", ChangeTypeSourceFile, true},
		{"docs/readme.md", 0, false},
		{"util/strings.o", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			gotType, relevant := fw.classify(tt.path)
			if relevant != tt.relevant {
				t.Fatalf("classify(%s) relevant = %v, want %v", tt.path, relevant, tt.relevant)
			}
			if relevant && gotType != tt.wantType {
				t.Errorf("classify(%s) = %v, want %v", tt.path, gotType, tt.wantType)
			}
		})
	}
}

func TestAnalyzeChanges(t *testing.T) {
	buildEvent := ChangeEvent{Type: ChangeTypeBuildFile, Paths: []string{"util/BUILD"}}
	analysis := AnalyzeChanges(buildEvent)
	if !analysis.NeedSync || !analysis.NeedCoverage {
		t.Errorf("BUILD change should need sync and coverage, got %+v", analysis)
	}

	sourceEvent := ChangeEvent{Type: ChangeTypeSourceFile, Paths: []string{"util/new.cc"}}
	analysis = AnalyzeChanges(sourceEvent)
	if analysis.NeedSync {
		t.Error("source change should not need a re-sync")
	}
	if !analysis.NeedCoverage {
		t.Error("source change should need a coverage refresh")
	}
}

func TestStopAfterContextCancel(t *testing.T) {
	fw, err := NewFileWatcher(t.TempDir(), []string{".cc"})
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cancel()

	// Wait for processEvents to shut down
	select {
	case _, ok := <-fw.Events():
		if ok {
			t.Fatal("Expected events channel to close on context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for events channel to close")
	}

	// Stop after cancellation must not panic or close anything twice
	if err := fw.Stop(); err != nil {
		t.Errorf("Stop after cancel returned error: %v", err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("Second Stop returned error: %v", err)
	}
}

func TestDebouncerBatchesBurst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 20*time.Millisecond, 500*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// A burst of source changes followed by a BUILD change
	input <- ChangeEvent{Type: ChangeTypeSourceFile, Paths: []string{"a.cc"}}
	input <- ChangeEvent{Type: ChangeTypeSourceFile, Paths: []string{"b.cc"}}
	input <- ChangeEvent{Type: ChangeTypeBuildFile, Paths: []string{"BUILD"}}

	// BUILD changes flush first
	select {
	case event := <-d.Output():
		if event.Type != ChangeTypeBuildFile {
			t.Errorf("Expected BUILD event first, got type %v", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for debounced BUILD event")
	}

	select {
	case event := <-d.Output():
		if event.Type != ChangeTypeSourceFile {
			t.Fatalf("Expected source event, got type %v", event.Type)
		}
		if len(event.Paths) != 2 {
			t.Errorf("Expected 2 batched source paths, got %v", event.Paths)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for debounced source event")
	}
}

func TestDebouncerFlushesOnClosedInput(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeBuildFile, Paths: []string{"BUILD"}}
	close(input)

	select {
	case event, ok := <-d.Output():
		if !ok {
			t.Fatal("Output closed before pending event was flushed")
		}
		if event.Type != ChangeTypeBuildFile {
			t.Errorf("Expected BUILD event, got type %v", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for flush on closed input")
	}
}
