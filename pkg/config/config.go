package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Workspace  string   `koanf:"workspace"`
	WebMode    bool     `koanf:"web"`
	Port       int      `koanf:"port"`
	Watch      bool     `koanf:"watch"`
	Rule       string   `koanf:"rule"`
	All        bool     `koanf:"all"`
	Coverage   bool     `koanf:"coverage"`
	Cycles     bool     `koanf:"cycles"`
	View       []string `koanf:"view"`
	SourceExts []string `koanf:"source-exts"`
	Verbosity  string   `koanf:"verbosity"`
	VerboseCnt int      `koanf:"verbose"`
	JSONLogs   bool     `koanf:"json-logs"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"workspace":   ".",
		"web":         false,
		"port":        8080,
		"watch":       false,
		"rule":        "",
		"all":         false,
		"coverage":    false,
		"cycles":      false,
		"view":        []string{},
		"source-exts": []string{".cc", ".cpp", ".c", ".h", ".hpp", ".java", ".kt", ".py", ".go"},
		"verbosity":   "",
		"verbose":     0,
		"json-logs":   false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - targetmap.toml
	// Ignore errors here as the file might not exist
	_ = k.Load(file.Provider("targetmap.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: TARGETMAP_ (e.g., TARGETMAP_PORT=9090). Keys are flat, so
	// underscores map to the hyphens used in the koanf tags
	// (TARGETMAP_SOURCE_EXTS -> source-exts).
	if err := k.Load(env.Provider("TARGETMAP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "TARGETMAP_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
