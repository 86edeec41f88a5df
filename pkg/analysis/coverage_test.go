package analysis

import (
	"testing"

	"github.com/blazetool/targetmap/pkg/model"
	"github.com/blazetool/targetmap/pkg/project"
	"github.com/blazetool/targetmap/pkg/projectview"
)

func snapshotWith(t *testing.T, targets ...*model.Target) *project.Snapshot {
	t.Helper()
	builder := model.NewTargetMapBuilder()
	for _, target := range targets {
		builder.Add(target)
	}
	manager := project.NewManager()
	manager.Publish("/", builder.Build())
	return manager.Current()
}

func TestFindUnownedSources(t *testing.T) {
	snap := snapshotWith(t,
		&model.Target{
			Label:   "//util:util",
			Kind:    "cc_library",
			Sources: []string{"util/strings.cc", "util/strings.h", "util/math.cc"},
		},
		&model.Target{
			Label:   "//core:engine",
			Kind:    "cc_library",
			Sources: []string{"core/engine.cc", "core/engine.h"},
		},
	)

	tests := []struct {
		name        string
		allFiles    []string
		view        []string
		wantUnowned int
		wantContain string
	}{
		{
			name: "one unowned file",
			allFiles: []string{
				"util/strings.cc",
				"util/math.cc",
				"util/orphaned.cc",
			},
			wantUnowned: 1,
			wantContain: "util/orphaned.cc",
		},
		{
			name: "all files owned",
			allFiles: []string{
				"util/strings.cc",
				"core/engine.cc",
			},
			wantUnowned: 0,
		},
		{
			name: "unnormalized paths",
			allFiles: []string{
				"./util/strings.cc",
				"./util/orphaned.cc",
			},
			wantUnowned: 1,
			wantContain: "util/orphaned.cc",
		},
		{
			name: "excluded package is skipped",
			allFiles: []string{
				"util/orphaned.cc",
				"vendor/third_party/lib.cc",
			},
			view:        []string{"util", "util/**", "-vendor/**"},
			wantUnowned: 1,
			wantContain: "util/orphaned.cc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var view *projectview.View
			if tt.view != nil {
				parsed, err := projectview.Parse(tt.view)
				if err != nil {
					t.Fatalf("Parse view failed: %v", err)
				}
				view = parsed
			}

			unowned := FindUnownedSources(snap, view, tt.allFiles)

			if len(unowned) != tt.wantUnowned {
				t.Errorf("FindUnownedSources() found %d unowned files, want %d", len(unowned), tt.wantUnowned)
			}

			if tt.wantContain != "" {
				found := false
				for _, uf := range unowned {
					if uf.Path == tt.wantContain {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("FindUnownedSources() should contain %s, but didn't", tt.wantContain)
				}
			}
		})
	}
}

func TestInferPackage(t *testing.T) {
	tests := []struct {
		filePath string
		want     string
	}{
		{"util/strings.cc", "//util"},
		{"core/engine.h", "//core"},
		{"vendor/third_party/lib.cc", "//vendor/third_party"},
		{"main.cc", "//"},
		{"./util/math.cc", "//util"},
	}

	for _, tt := range tests {
		t.Run(tt.filePath, func(t *testing.T) {
			got := inferPackage(tt.filePath)
			if got != tt.want {
				t.Errorf("inferPackage(%s) = %s, want %s", tt.filePath, got, tt.want)
			}
		})
	}
}

func TestUnownedPackageAttribution(t *testing.T) {
	snap := snapshotWith(t,
		&model.Target{
			Label:   "//util:util",
			Kind:    "cc_library",
			Sources: []string{"util/strings.cc"},
		},
	)

	unowned := FindUnownedSources(snap, nil, []string{"util/strings.cc", "util/orphaned.cc"})

	if len(unowned) != 1 {
		t.Fatalf("Expected 1 unowned file, got %d", len(unowned))
	}
	if unowned[0].Package != "//util" {
		t.Errorf("Expected package //util, got %s", unowned[0].Package)
	}
}
