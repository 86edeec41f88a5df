package bazel

import (
	"context"
	"fmt"
	"os/exec"
)

// Executor handles the execution of Bazel commands
type Executor interface {
	RunQuery(ctx context.Context, workspacePath string, query string) ([]byte, error)
}

// DefaultExecutor is the default implementation of Executor that runs actual commands
type DefaultExecutor struct{}

// NewExecutor creates a new default Bazel executor
func NewExecutor() Executor {
	return &DefaultExecutor{}
}

// RunQuery executes a Bazel query and returns the raw XML output.
// It respects the provided context for cancellation.
func (e *DefaultExecutor) RunQuery(ctx context.Context, workspacePath string, query string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "bazel", "query", query, "--output=xml", "--keep_going")
	cmd.Dir = workspacePath

	output, err := cmd.Output()
	if err != nil {
		// --keep_going exits non-zero when part of the graph fails to load;
		// partial XML output is still usable
		if len(output) > 0 {
			return output, nil
		}
		return nil, fmt.Errorf("bazel query failed: %w", err)
	}

	return output, nil
}
