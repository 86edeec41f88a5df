package bazel

import (
	"path/filepath"
	"testing"
)

func TestGetWorkspaceNameFallsBackToDirName(t *testing.T) {
	// No bazel module information available in an empty directory, so the
	// directory name is used
	dir := t.TempDir()

	name, err := GetWorkspaceName(dir)
	if err != nil {
		t.Fatalf("GetWorkspaceName failed: %v", err)
	}

	if name != filepath.Base(dir) {
		t.Errorf("Expected fallback name %q, got %q", filepath.Base(dir), name)
	}
}

func TestRootModuleRegex(t *testing.T) {
	output := `<root> (my_project@1.2.0)
├───rules_cc@0.0.9
└───platforms@0.0.8`

	matches := rootModuleRegex.FindStringSubmatch(output)
	if len(matches) < 2 || matches[1] != "my_project" {
		t.Errorf("Expected to extract my_project, got %v", matches)
	}
}
