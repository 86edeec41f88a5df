package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Workspace != "." {
		t.Errorf("Expected default workspace %q, got %q", ".", cfg.Workspace)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Rule != "" {
		t.Errorf("Expected empty default rule filter, got %q", cfg.Rule)
	}
	if len(cfg.SourceExts) == 0 {
		t.Error("Expected default source extensions to be non-empty")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("TARGETMAP_PORT", "9191")
	t.Setenv("TARGETMAP_RULE", "test")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9191 {
		t.Errorf("Expected env port 9191, got %d", cfg.Port)
	}
	if cfg.Rule != "test" {
		t.Errorf("Expected env rule %q, got %q", "test", cfg.Rule)
	}
}

func TestLoadEnvOverridesHyphenatedKeys(t *testing.T) {
	t.Setenv("TARGETMAP_SOURCE_EXTS", ".rs")
	t.Setenv("TARGETMAP_JSON_LOGS", "true")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.SourceExts) != 1 || cfg.SourceExts[0] != ".rs" {
		t.Errorf("Expected env source extensions [.rs], got %v", cfg.SourceExts)
	}
	if !cfg.JSONLogs {
		t.Error("Expected env to enable JSON logs")
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TARGETMAP_PORT", "9191")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.String("workspace", ".", "")
	if err := flags.Parse([]string{"--port=7070"}); err != nil {
		t.Fatalf("flag parse failed: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 7070 {
		t.Errorf("Expected flag port 7070, got %d", cfg.Port)
	}
}
