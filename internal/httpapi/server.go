// Package httpapi implements the HTTP bridge (C9): a small JSON API
// exposing the tool catalog, provider summary, and a synchronous
// execute endpoint, plus an ambient Prometheus /metrics endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relayforge/relayforge/internal/dispatcher"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/session"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// requestDeadline is the outer bound on how long /execute will wait for
// a tool call, independent of the tool's own declared timeout.
const requestDeadline = 30 * time.Second

// Server is the HTTP bridge. It is a thin JSON-over-net/http wrapper
// around the registry and dispatcher; it holds no business logic of its
// own beyond request decoding, timeout arbitration, and response
// shaping.
type Server struct {
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	sessions   *session.Store
	log        *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// New constructs a Server. sessions may be nil, in which case /health
// reports only the registry's own stats.
func New(reg *registry.Registry, disp *dispatcher.Dispatcher, sessions *session.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{registry: reg, dispatcher: disp, sessions: sessions, log: log.With("component", "httpapi")}
}

// Handler returns the bridge's http.Handler, wiring every route onto a
// fresh mux. Exposed separately from Start so tests can exercise routes
// with httptest.NewServer without binding a real listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tools", s.handleTools)
	mux.HandleFunc("/servers", s.handleServers)
	mux.HandleFunc("/execute", s.handleExecute)
	return mux
}

// Start binds addr and serves in a background goroutine. Shutdown stops
// it gracefully.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", "error", err)
		}
	}()
	s.log.Info("http bridge listening", "addr", addr)
	return nil
}

// Shutdown gracefully stops the server, waiting up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.registry.Stats()
	response := map[string]any{
		"status":          "ok",
		"tools_total":     stats.Total,
		"tools_succeeded": stats.Success,
		"tools_failed":    stats.Failure,
	}
	if s.sessions != nil {
		snap := s.sessions.Snapshot()
		response["queries_total"] = snap.Global.QueriesTotal
		response["sessions"] = len(snap.Sessions)
	}
	writeJSON(w, http.StatusOK, response)
}

// toolSummary is the JSON-facing projection of a toolkit.ToolDescriptor.
type toolSummary struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Provider    string              `json:"provider"`
	Category    string              `json:"category"`
	Version     string              `json:"version"`
	Params      []toolkit.ParamSpec `json:"params"`
	Timeout     string              `json:"timeout"`
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	descriptors := s.registry.List()
	out := make([]toolSummary, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, toolSummary{
			Name:        d.Name,
			Description: d.Description,
			Provider:    d.Provider,
			Category:    d.Category,
			Version:     d.Version,
			Params:      d.Params,
			Timeout:     d.Timeout.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out, "count": len(out)})
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	counts := s.registry.ServerCounts()
	writeJSON(w, http.StatusOK, map[string]any{"servers": counts})
}

// executeRequest is the decoded body of a POST /execute call.
type executeRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// executeResponse always carries HTTP 200 for a domain-level tool
// failure (unknown tool, validation error, tool error): only a non-POST
// method, a malformed request body, or a missing tool_name produce a
// non-2xx status.
type executeResponse struct {
	Success          bool           `json:"success"`
	Result           any            `json:"result,omitempty"`
	Error            string         `json:"error,omitempty"`
	ValidationErrors []string       `json:"validation_errors,omitempty"`
	ElapsedSeconds   float64        `json:"elapsed_seconds"`
	RetryCount       int            `json:"retry_count"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if req.ToolName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tool_name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), toolDeadline(s.registry, req.ToolName))
	defer cancel()

	result := s.dispatcher.Dispatch(ctx, dispatcher.NewInvocation(req.ToolName, req.Arguments))
	writeJSON(w, http.StatusOK, toExecuteResponse(result))
}

// toolDeadline bounds a request by the smaller of requestDeadline and
// the tool's own declared timeout, resolving the two independent
// timeouts the way spec.md §9 leaves open.
func toolDeadline(reg *registry.Registry, name string) time.Duration {
	desc, _, ok := reg.Lookup(name)
	if !ok || desc.Timeout <= 0 || desc.Timeout > requestDeadline {
		return requestDeadline
	}
	return desc.Timeout
}

func toExecuteResponse(result toolkit.ToolResult) executeResponse {
	resp := executeResponse{
		Success:        result.Succeeded(),
		ElapsedSeconds: result.ElapsedTime.Seconds(),
		RetryCount:     result.RetryCount,
		Metadata:       result.Metadata,
	}
	if result.Succeeded() {
		resp.Result = result.Payload
	} else {
		resp.Error = result.Message
		resp.ValidationErrors = result.ValidationErrors
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("httpapi: failed to encode response", "error", err)
	}
}
