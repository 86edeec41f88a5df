package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blazetool/targetmap/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeBuildFile ChangeType = iota
	ChangeTypeSourceFile
)

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a Bazel workspace for BUILD and source file changes
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	workspace  string
	sourceExts []string
	events     chan ChangeEvent
	done       chan struct{}
	closeOnce  sync.Once
}

// NewFileWatcher creates a new file system watcher for a Bazel workspace.
// sourceExts lists the file extensions classified as source changes.
func NewFileWatcher(workspace string, sourceExts []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:    watcher,
		workspace:  workspace,
		sourceExts: sourceExts,
		events:     make(chan ChangeEvent, 100),
		done:       make(chan struct{}),
	}

	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watchWorkspace(); err != nil {
		logging.Warn("failed to watch workspace directories", "error", err)
	}

	logging.Info("started watching workspace", "path", fw.workspace)

	// Process events
	go fw.processEvents(ctx)

	return nil
}

// watchWorkspace adds every workspace directory to the watcher, skipping
// bazel-* symlink directories and .git
func (fw *FileWatcher) watchWorkspace() error {
	var count int

	err := filepath.Walk(fw.workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if !info.IsDir() {
			return nil
		}

		name := info.Name()
		if strings.HasPrefix(name, "bazel-") || name == ".git" {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk workspace: %w", err)
	}

	logging.Info("monitoring workspace directories", "count", count)
	return nil
}

// classify maps a changed file to a change type, or false if irrelevant
func (fw *FileWatcher) classify(path string) (ChangeType, bool) {
	name := filepath.Base(path)

	if name == "BUILD" || name == "BUILD.bazel" || strings.HasSuffix(name, ".bzl") ||
		name == "MODULE.bazel" || name == "WORKSPACE" {
		return ChangeTypeBuildFile, true
	}
	if slices.Contains(fw.sourceExts, filepath.Ext(name)) {
		return ChangeTypeSourceFile, true
	}

	return 0, false
}

// processEvents processes file system events and batches them by type.
// It owns fw.events and closes it on exit.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)

	// Batch events to avoid sending one event per file
	var buildFiles []string
	var sourceFiles []string

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(buildFiles) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeBuildFile,
				Paths:     buildFiles,
				Timestamp: time.Now(),
			}
			buildFiles = nil
		}
		if len(sourceFiles) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeSourceFile,
				Paths:     sourceFiles,
				Timestamp: time.Now(),
			}
			sourceFiles = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			fw.Stop()
			return

		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories need to be watched as they appear
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.watcher.Add(event.Name); err != nil {
						logging.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			changeType, relevant := fw.classify(event.Name)
			if !relevant {
				continue
			}

			switch changeType {
			case ChangeTypeBuildFile:
				buildFiles = append(buildFiles, event.Name)
			case ChangeTypeSourceFile:
				sourceFiles = append(sourceFiles, event.Name)
			}
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher. It is safe to call more than once and
// after the watch context has been cancelled.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}
