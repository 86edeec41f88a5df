package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/blazetool/targetmap/pkg/analysis"
	"github.com/blazetool/targetmap/pkg/bazel"
	"github.com/blazetool/targetmap/pkg/config"
	"github.com/blazetool/targetmap/pkg/cycles"
	"github.com/blazetool/targetmap/pkg/finder"
	"github.com/blazetool/targetmap/pkg/logging"
	"github.com/blazetool/targetmap/pkg/model"
	"github.com/blazetool/targetmap/pkg/output"
	"github.com/blazetool/targetmap/pkg/project"
	"github.com/blazetool/targetmap/pkg/projectview"
	"github.com/blazetool/targetmap/pkg/resolve"
	"github.com/blazetool/targetmap/pkg/watcher"
	"github.com/blazetool/targetmap/pkg/web"
)

func main() {
	flags := pflag.NewFlagSet("targetmap", pflag.ExitOnError)
	flags.String("workspace", ".", "Path to the Bazel workspace root")
	flags.Bool("web", false, "Start web server instead of printing to console")
	flags.Int("port", 8080, "Port for web server (only used with --web)")
	flags.Bool("watch", false, "Watch the workspace and re-sync on BUILD file changes")
	flags.String("rule", "", "Rule type filter for resolution: test, binary, or library")
	flags.Bool("all", false, "Report all reachable targets, not just the nearest matches")
	flags.Bool("coverage", false, "Report source files not owned by any target")
	flags.Bool("cycles", false, "Report dependency cycles in the target map")
	flags.StringSlice("view", nil, "Project view patterns, prefix with - to exclude")
	flags.StringSlice("source-exts", nil, "Source file extensions for coverage and watching")
	flags.String("verbosity", "", "Log level: debug, info, warn, error")
	flags.CountP("verbose", "v", "Increase log verbosity")
	flags.Bool("json-logs", false, "Emit logs as JSON")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: targetmap [flags] [source-file]\n\n")
		fmt.Fprintf(os.Stderr, "Maps workspace source files to the targets that build and test them.\n\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	configureLogging(cfg)

	view, err := projectview.Parse(cfg.View)
	if err != nil {
		logging.Fatal("invalid project view", "error", err)
	}

	filter := model.RuleTypeAny
	if cfg.Rule != "" {
		parsed, ok := model.ParseRuleType(cfg.Rule)
		if !ok {
			logging.Fatal("unknown rule type", "rule", cfg.Rule)
		}
		filter = parsed
	}

	projects := project.NewManager()
	syncer := bazel.NewSyncer(cfg.Workspace, view, projects)

	if cfg.WebMode {
		runWeb(cfg, projects, syncer, view)
		return
	}

	ctx := context.Background()
	if _, err := syncer.Sync(ctx); err != nil {
		logging.Fatal("sync failed", "error", err)
	}

	ran := false
	if cfg.Coverage {
		runCoverage(cfg, projects, view)
		ran = true
	}
	if cfg.Cycles {
		runCycles(projects)
		ran = true
	}
	if args := flags.Args(); len(args) > 0 {
		runResolve(cfg, projects, filter, args)
		ran = true
	}

	if !ran {
		flags.Usage()
		os.Exit(2)
	}
}

func configureLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Verbosity {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.VerboseCnt > 0 {
		level = slog.LevelDebug
	}

	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
}

func runResolve(cfg *config.Config, projects *project.Manager, filter model.RuleType, paths []string) {
	resolver := resolve.NewResolver(projects)

	for _, path := range paths {
		rel := projects.Current().RelativeSourcePath(path)

		var results []model.TargetInfo
		var err error
		if cfg.All {
			results, err = resolver.ResolveAll(rel, filter)
		} else {
			results, err = resolver.Resolve(rel, filter)
		}
		if err != nil {
			logging.Fatal("resolution failed", "path", path, "error", err)
		}

		output.PrintResolveReport(rel, filter, results)
	}
}

func runCoverage(cfg *config.Config, projects *project.Manager, view *projectview.View) {
	snap := projects.Current()

	allFiles, err := finder.FindSourceFiles(snap.WorkspaceRoot(), cfg.SourceExts)
	if err != nil {
		logging.Fatal("finding source files failed", "error", err)
	}

	unowned := analysis.FindUnownedSources(snap, view, allFiles)
	output.PrintUnownedReport(snap.WorkspaceRoot(), len(allFiles), unowned)
}

func runCycles(projects *project.Manager) {
	snap := projects.Current()
	found := cycles.FindTargetCycles(snap.TargetMap(), snap.Graph())
	output.PrintCycleReport(found)
}

func runWeb(cfg *config.Config, projects *project.Manager, syncer *bazel.Syncer, view *projectview.View) {
	server := web.NewServer(projects)
	syncer.SetPublisher(server.Publisher())

	coverage := analysis.NewCoverageReporter(projects, view, cfg.SourceExts)
	coverage.SetPublisher(server.Publisher())
	server.SetCoverageReporter(coverage)

	ctx := context.Background()

	// First sync runs in the background so the server is reachable immediately;
	// endpoints answer 503 until it completes
	go func() {
		if _, err := syncer.Sync(ctx); err != nil {
			logging.Error("initial sync failed", "error", err)
		}
	}()

	if cfg.Watch {
		go runWatch(ctx, cfg, syncer, coverage)
	}

	if err := server.Start(cfg.Port); err != nil {
		logging.Fatal("web server failed", "error", err)
	}
}

func runWatch(ctx context.Context, cfg *config.Config, syncer *bazel.Syncer, coverage *analysis.CoverageReporter) {
	fw, err := watcher.NewFileWatcher(cfg.Workspace, cfg.SourceExts)
	if err != nil {
		logging.Error("failed to create file watcher", "error", err)
		return
	}

	if err := fw.Start(ctx); err != nil {
		logging.Error("failed to start file watcher", "error", err)
		return
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 500*time.Millisecond, 5*time.Second)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		changes := watcher.AnalyzeChanges(event)

		if changes.NeedSync {
			logging.Info("build files changed, re-syncing", "files", len(changes.ChangedFiles))
			if _, err := syncer.Sync(ctx); err != nil {
				logging.Error("re-sync failed", "error", err)
				continue
			}
		}

		// Both branches invalidate the ownership report: a sync changes the
		// declared sources, a source change the files on disk
		if changes.NeedSync || changes.NeedCoverage {
			if _, err := coverage.Refresh(); err != nil {
				logging.Error("coverage refresh failed", "error", err)
			}
		}
	}
}
