package bazel

import (
	"context"
)

// MockExecutor is a mock implementation of Executor for testing
type MockExecutor struct {
	MockOutput []byte
	MockError  error
	Queries    []string // queries seen, in order
}

func (m *MockExecutor) RunQuery(ctx context.Context, workspacePath string, query string) ([]byte, error) {
	m.Queries = append(m.Queries, query)
	return m.MockOutput, m.MockError
}
