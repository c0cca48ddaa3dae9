package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fourpillars-ai/pillars/internal/core"
	"github.com/fourpillars-ai/pillars/internal/report"
)

// maxRequestBytes bounds request bodies. Scenarios are capped well below
// this; the slack covers weights and encoding overhead.
const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response failed", "error", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	category := core.CategoryOf(err)
	status := http.StatusInternalServerError
	switch category {
	case core.ErrCatValidation:
		status = http.StatusBadRequest
	case core.ErrCatNetwork:
		status = http.StatusBadGateway
	case core.ErrCatNotFound:
		status = http.StatusNotFound
	}

	msg := err.Error()
	var de *core.DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}
	s.writeJSON(w, status, errorResponse{Error: msg, Category: string(category)})
}

// handleHealth reports liveness plus a one-line agent summary. Backend
// unreachability degrades the payload, never the status code.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backendStatus := "reachable"
	if err := s.orch.Health(r.Context()); err != nil {
		backendStatus = "unreachable"
	}

	counts := make(map[core.AgentStatus]int)
	for _, rec := range s.registry.Snapshot() {
		counts[rec.Status]++
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"backend": backendStatus,
		"agents":  counts,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req core.AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, core.ErrValidation("bad_json", "request body is not valid JSON"))
		return
	}

	record, err := s.orch.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Snapshot())
}

type agentResponse struct {
	core.AgentRecord
	Detail *core.AgentDetail `json:"detail,omitempty"`
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	id := core.AgentID(chi.URLParam(r, "id"))
	rec, ok := s.registry.Record(id)
	if !ok {
		s.writeError(w, core.ErrNotFound("unknown_agent", "no such agent"))
		return
	}

	resp := agentResponse{AgentRecord: rec}
	if detail, ok := s.registry.Detail(id); ok {
		resp.Detail = &detail
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, core.ErrValidation("bad_limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, s.history.List(limit))
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	s.history.Clear()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, report.Metrics(s.history.List(0), time.Now()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.Reset(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
