package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/blazetool/targetmap/pkg/analysis"
	"github.com/blazetool/targetmap/pkg/cycles"
	"github.com/blazetool/targetmap/pkg/logging"
	"github.com/blazetool/targetmap/pkg/model"
	"github.com/blazetool/targetmap/pkg/project"
	"github.com/blazetool/targetmap/pkg/pubsub"
	"github.com/blazetool/targetmap/pkg/resolve"
)

// Server exposes the target map over HTTP
type Server struct {
	router    *mux.Router
	projects  *project.Manager
	resolver  *resolve.Resolver
	publisher *pubsub.SSEPublisher
	coverage  *analysis.CoverageReporter
}

// StatusResponse describes the current sync state of the server
type StatusResponse struct {
	Synced    bool   `json:"synced"`
	Workspace string `json:"workspace,omitempty"`
	Targets   int    `json:"targets"`
	SyncIndex int64  `json:"syncIndex"`
	SyncedAt  string `json:"syncedAt,omitempty"`
}

// ResolveResponse is the payload for /api/resolve
type ResolveResponse struct {
	Path    string             `json:"path"`
	Rule    string             `json:"rule,omitempty"`
	Targets []model.TargetInfo `json:"targets"`
}

// NewServer creates a new web server backed by the given project manager
func NewServer(projects *project.Manager) *Server {
	publisher := pubsub.NewSSEPublisher()

	// Late subscribers only need the current state of each topic
	publisher.ConfigureTopic(pubsub.TopicSyncStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})
	publisher.ConfigureTopic(pubsub.TopicTargetMap, pubsub.TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})
	publisher.ConfigureTopic(pubsub.TopicCoverage, pubsub.TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		projects:  projects,
		resolver:  resolve.NewResolver(projects),
		publisher: publisher,
	}
	s.setupRoutes()
	return s
}

// Publisher returns the SSE publisher so sync can push status events
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// SetCoverageReporter wires in the reporter backing /api/coverage
func (s *Server) SetCoverageReporter(reporter *analysis.CoverageReporter) {
	s.coverage = reporter
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/sync_status", s.handleSubscribe(pubsub.TopicSyncStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/target_map", s.handleSubscribe(pubsub.TopicTargetMap)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/coverage", s.handleSubscribe(pubsub.TopicCoverage)).Methods("GET")

	// API routes - more specific routes must come first
	s.router.HandleFunc("/api/resolve", s.handleResolve).Methods("GET")
	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/coverage", s.handleCoverage).Methods("GET")
	s.router.HandleFunc("/api/cycles", s.handleCycles).Methods("GET")
	s.router.HandleFunc("/api/targets", s.handleTargets).Methods("GET")
	s.router.HandleFunc("/api/targets/{label:.*}", s.handleTarget).Methods("GET")
	s.router.HandleFunc("/api/rdeps/{label:.*}", s.handleReverseDeps).Methods("GET")
}

// snapshot returns the current snapshot or writes a 503 and returns nil
func (s *Server) snapshot(w http.ResponseWriter) *project.Snapshot {
	snap := s.projects.Current()
	if snap == nil {
		http.Error(w, "Target map not available: workspace has not been synced", http.StatusServiceUnavailable)
		return nil
	}
	return snap
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Query parameter 'path' is required", http.StatusBadRequest)
		return
	}

	filter := model.RuleTypeAny
	if rule := r.URL.Query().Get("rule"); rule != "" {
		parsed, ok := model.ParseRuleType(rule)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown rule type: %s", rule), http.StatusBadRequest)
			return
		}
		filter = parsed
	}

	all := r.URL.Query().Get("all") == "true"

	var results []model.TargetInfo
	var err error
	if all {
		results, err = s.resolver.ResolveAll(path, filter)
	} else {
		results, err = s.resolver.Resolve(path, filter)
	}
	if err != nil {
		if errors.Is(err, resolve.ErrNoProjectData) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []model.TargetInfo{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ResolveResponse{
		Path:    path,
		Rule:    string(filter),
		Targets: results,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snap := s.projects.Current()
	if snap == nil {
		json.NewEncoder(w).Encode(StatusResponse{Synced: false})
		return
	}

	json.NewEncoder(w).Encode(StatusResponse{
		Synced:    true,
		Workspace: snap.WorkspaceRoot(),
		Targets:   snap.TargetMap().Len(),
		SyncIndex: snap.SyncIndex(),
		SyncedAt:  snap.SyncedAt().Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap.TargetMap().Targets())
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	label := labelFromRequest(r)
	target, ok := snap.TargetMap().Get(label)
	if !ok {
		http.Error(w, fmt.Sprintf("Target not found: %s", label), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(target)
}

func (s *Server) handleReverseDeps(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	label := labelFromRequest(r)
	if !snap.TargetMap().Contains(label) {
		http.Error(w, fmt.Sprintf("Target not found: %s", label), http.StatusNotFound)
		return
	}

	rdeps := snap.Graph().ReverseDeps(label)
	if rdeps == nil {
		rdeps = []model.Label{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rdeps)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	if s.coverage == nil {
		http.Error(w, "Coverage reporting is not configured", http.StatusNotFound)
		return
	}
	if snap := s.snapshot(w); snap == nil {
		return
	}

	// Serve the cached report from the watcher when there is one, otherwise
	// compute it on demand
	report := s.coverage.Latest()
	if report == nil {
		var err error
		report, err = s.coverage.Refresh()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	found := cycles.FindTargetCycles(snap.TargetMap(), snap.Graph())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(found)
}

// handleSubscribe streams events for a topic as Server-Sent Events
func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Send initial comment to establish connection (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "failed to write SSE event", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// labelFromRequest extracts a target label from the request path, restoring
// the leading // that mux strips
func labelFromRequest(r *http.Request) model.Label {
	raw := mux.Vars(r)["label"]
	if !strings.HasPrefix(raw, "//") {
		raw = "//" + strings.TrimPrefix(raw, "/")
	}
	return model.Label(raw)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting web server", "addr", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.router)
}
