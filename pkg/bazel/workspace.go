package bazel

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// rootModuleRegex matches the "<root> (module_name@version)" line of
// `bazel mod graph` output
var rootModuleRegex = regexp.MustCompile(`<root>\s+\(([^@)]+)`)

// GetWorkspaceName attempts to determine the workspace/module name from:
// 1. `bazel mod graph` command (if using Bazel modules/bzlmod)
// 2. Directory name as fallback
func GetWorkspaceName(workspacePath string) (string, error) {
	moduleName, err := extractModuleNameFromBazel(workspacePath)
	if err == nil && moduleName != "" {
		return moduleName, nil
	}

	absPath, err := filepath.Abs(workspacePath)
	if err != nil {
		return "", err
	}

	dirName := filepath.Base(absPath)
	if dirName == "." {
		dirName = filepath.Base(filepath.Dir(absPath))
	}

	return dirName, nil
}

func extractModuleNameFromBazel(workspacePath string) (string, error) {
	cmd := exec.Command("bazel", "mod", "graph")
	cmd.Dir = workspacePath

	output, err := cmd.Output()
	if err != nil {
		return "", err // bazel mod graph failed (maybe not using bzlmod)
	}

	if matches := rootModuleRegex.FindStringSubmatch(string(output)); len(matches) > 1 {
		return strings.TrimSpace(matches[1]), nil
	}

	return "", nil
}
