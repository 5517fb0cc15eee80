package tuned

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/emtune/tuner-core/pkg/logger"
)

type HTTPServer struct {
	mux    *http.ServeMux
	status *StatusStore
	runner *Runner
}

func NewHTTPServer(status *StatusStore, runner *Runner) *HTTPServer {
	s := &HTTPServer{
		mux:    http.NewServeMux(),
		status: status,
		runner: runner,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/optimizers", s.handleOptimizers)
	s.mux.HandleFunc("/v1/optimizers/", s.handleOptimizerByName)
	s.mux.HandleFunc("/v1/report", s.handleReport)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleOptimizers handles /v1/optimizers
func (s *HTTPServer) handleOptimizers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, map[string]any{"optimizers": s.status.List()})
}

// handleOptimizerByName handles /v1/optimizers/{name} and
// /v1/optimizers/{name}/export
func (s *HTTPServer) handleOptimizerByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/v1/optimizers/")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "optimizer name is required")
		return
	}
	if exportName, ok := strings.CutSuffix(name, "/export"); ok {
		s.handleOptimizerExport(w, exportName)
		return
	}
	status, ok := s.status.Get(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "optimizer not found")
		return
	}
	s.writeJSON(w, status)
}

// handleOptimizerExport serves a single optimizer's history as xlsx
func (s *HTTPServer) handleOptimizerExport(w http.ResponseWriter, name string) {
	if _, ok := s.status.Get(name); !ok {
		s.writeError(w, http.StatusNotFound, "optimizer not found")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
	if err := s.runner.WriteOptimizerReport(w, name); err != nil {
		logger.Error("optimizer export failed", "optimizer", name, "error", err)
	}
}

// handleReport handles /v1/report, serving the current xlsx report
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tuning_report.xlsx"`)
	if err := s.runner.WriteReport(w); err != nil {
		logger.Error("report export failed", "error", err)
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logger.Error("error response encode failed", "error", err)
	}
}
