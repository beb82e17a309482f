package server

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type readinessCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type readinessResponse struct {
	Status string                    `json:"status"`
	Checks map[string]readinessCheck `json:"checks"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interviewprep",
		"version": s.version,
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := readinessResponse{Status: "ready", Checks: make(map[string]readinessCheck, len(s.checks))}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Status = "not_ready"
			resp.Checks[name] = readinessCheck{Status: "failed", Message: err.Error()}
			continue
		}
		resp.Checks[name] = readinessCheck{Status: "ok"}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
