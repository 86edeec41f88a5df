package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/blazetool/targetmap/pkg/analysis"
	"github.com/blazetool/targetmap/pkg/model"
	"github.com/blazetool/targetmap/pkg/project"
)

func newTestServer(t *testing.T, synced bool) *Server {
	t.Helper()

	projects := project.NewManager()
	if synced {
		builder := model.NewTargetMapBuilder()
		builder.Add(&model.Target{
			Label:   "//test:lib",
			Kind:    "java_library",
			Sources: []string{"test/Lib.java"},
		})
		builder.Add(&model.Target{
			Label: "//test:test",
			Kind:  "java_test",
			Deps:  []model.Label{"//test:lib"},
		})
		projects.Publish("/", builder.Build())
	}

	return NewServer(projects)
}

func doGet(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestResolveEndpoint(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/resolve?path=test/Lib.java&rule=test")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ResolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(resp.Targets) != 1 || resp.Targets[0].Label != "//test:test" {
		t.Errorf("Expected [//test:test], got %v", resp.Targets)
	}
}

func TestResolveRequiresPath(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/resolve")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing path, got %d", rec.Code)
	}
}

func TestResolveRejectsUnknownRule(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/resolve?path=test/Lib.java&rule=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown rule, got %d", rec.Code)
	}
}

func TestResolveNoMatchReturnsEmptyList(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/resolve?path=test/Missing.java")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp ResolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Targets == nil || len(resp.Targets) != 0 {
		t.Errorf("Expected empty target list, got %v", resp.Targets)
	}
}

func TestEndpointsUnavailableBeforeSync(t *testing.T) {
	s := newTestServer(t, false)

	for _, url := range []string{
		"/api/resolve?path=test/Lib.java",
		"/api/targets",
		"/api/targets/test:lib",
		"/api/rdeps/test:lib",
		"/api/cycles",
	} {
		rec := doGet(t, s, url)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: expected 503 before sync, got %d", url, rec.Code)
		}
	}
}

func TestStatusBeforeAndAfterSync(t *testing.T) {
	s := newTestServer(t, false)

	rec := doGet(t, s, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status.Synced {
		t.Error("Expected synced=false before first sync")
	}

	s = newTestServer(t, true)
	rec = doGet(t, s, "/api/status")
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !status.Synced || status.Targets != 2 {
		t.Errorf("Expected synced=true with 2 targets, got %+v", status)
	}
}

func TestTargetLookup(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/targets/test:lib")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var target model.Target
	if err := json.Unmarshal(rec.Body.Bytes(), &target); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if target.Label != "//test:lib" {
		t.Errorf("Expected //test:lib, got %s", target.Label)
	}

	rec = doGet(t, s, "/api/targets/test:missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown target, got %d", rec.Code)
	}
}

func TestCoverageEndpoint(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"test/Lib.java", "test/Orphan.java"} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte("class X {}\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	projects := project.NewManager()
	builder := model.NewTargetMapBuilder()
	builder.Add(&model.Target{
		Label:   "//test:lib",
		Kind:    "java_library",
		Sources: []string{"test/Lib.java"},
	})
	projects.Publish(root, builder.Build())

	s := NewServer(projects)
	s.SetCoverageReporter(analysis.NewCoverageReporter(projects, nil, []string{".java"}))

	rec := doGet(t, s, "/api/coverage")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report analysis.CoverageReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if report.TotalFiles != 2 {
		t.Errorf("Expected 2 total files, got %d", report.TotalFiles)
	}
	if len(report.Unowned) != 1 || report.Unowned[0].Path != "test/Orphan.java" {
		t.Errorf("Expected test/Orphan.java as the only unowned file, got %v", report.Unowned)
	}
}

func TestCoverageEndpointBeforeSync(t *testing.T) {
	projects := project.NewManager()
	s := NewServer(projects)
	s.SetCoverageReporter(analysis.NewCoverageReporter(projects, nil, []string{".java"}))

	rec := doGet(t, s, "/api/coverage")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before sync, got %d", rec.Code)
	}
}

func TestCoverageEndpointNotConfigured(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/coverage")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a coverage reporter, got %d", rec.Code)
	}
}

func TestReverseDepsEndpoint(t *testing.T) {
	s := newTestServer(t, true)

	rec := doGet(t, s, "/api/rdeps/test:lib")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rdeps []model.Label
	if err := json.Unmarshal(rec.Body.Bytes(), &rdeps); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(rdeps) != 1 || rdeps[0] != "//test:test" {
		t.Errorf("Expected [//test:test], got %v", rdeps)
	}
}
