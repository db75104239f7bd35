// Package httpapi serves the optional local status API for a running interview.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anshc022/vocahire/internal/ipc"
	"github.com/anshc022/vocahire/internal/observability"
	"github.com/anshc022/vocahire/internal/session"
	"github.com/anshc022/vocahire/internal/transcript"
)

const shutdownTimeout = 2 * time.Second

// Controller is the session surface exposed over HTTP.
type Controller interface {
	Snapshot() session.View
	Handle(context.Context, ipc.Request) ipc.Response
}

type Server struct {
	controller Controller
	metrics    *observability.Metrics
	logger     *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
	State string `json:"state,omitempty"`
}

func New(controller Controller, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{controller: controller, metrics: metrics, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Get("/transcript", s.handleTranscript)
		r.Post("/actions/{action}", s.handleAction)
	})
	return r
}

// Serve listens on addr until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("status api listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	view := s.controller.Snapshot()
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"state":  view.State,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleTranscript(w http.ResponseWriter, _ *http.Request) {
	view := s.controller.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = transcript.Render(w, view.Transcript)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	switch action {
	case "start", "record", "stop", "toggle", "end", "retry", "reset", "cancel":
	default:
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "unknown action: " + action})
		return
	}

	resp := s.controller.Handle(r.Context(), ipc.Request{Command: action})
	if !resp.OK {
		respondJSON(w, http.StatusConflict, errorResponse{Error: resp.Error, State: resp.State})
		return
	}
	s.logger.Debug("status api action", "action", action, "state", resp.State)
	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
