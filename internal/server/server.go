// Package server exposes the planner over HTTP: a JSON task API, the WhatsApp
// webhook, and diagram endpoints. All logic lives in the service layer; the
// handlers translate transport shapes only.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"priorityflow/internal/service"
)

type Server struct {
	tasks  *service.TaskService
	digest *service.DigestService
	logger *slog.Logger
	http   *http.Server
}

func New(bind string, tasks *service.TaskService, digest *service.DigestService, logger *slog.Logger) *Server {
	s := &Server{
		tasks:  tasks,
		digest: digest,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /webhook/whatsapp", s.handleWebhook)
	mux.HandleFunc("GET /tasks", s.handleTaskList)
	mux.HandleFunc("POST /tasks", s.handleTaskCreate)
	mux.HandleFunc("GET /tasks/top", s.handleTaskTop)
	mux.HandleFunc("GET /tasks/{id}", s.handleTaskGet)
	mux.HandleFunc("PUT /tasks/{id}", s.handleTaskUpdate)
	mux.HandleFunc("DELETE /tasks/{id}", s.handleTaskDelete)
	mux.HandleFunc("GET /flow", s.handleFlow)
	mux.HandleFunc("POST /digest/send", s.handleDigestSend)

	s.http = &http.Server{
		Addr:              bind,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routed handler; tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleDigestSend triggers the daily digest on demand; the scheduled path is
// the `digest` CLI command.
func (s *Server) handleDigestSend(w http.ResponseWriter, r *http.Request) {
	if err := s.digest.Send(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}
