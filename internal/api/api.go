// Package api provides HTTP handlers and the main API server logic for
// lesscoach.
//
// It exposes RESTful endpoints for the coach conversation, the craving
// log, and the user insight profile. The API integrates with the coach,
// insight, safety, and store modules.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/craveless/lesscoach/internal/coach"
	"github.com/craveless/lesscoach/internal/store"
)

// DefaultAddr is the address the server listens on when none is configured.
const DefaultAddr = ":8080"

// DefaultRequestTimeout bounds coach orchestration, including the
// generation call and its single retry.
const DefaultRequestTimeout = 60 * time.Second

// Server wires the coach service and store behind HTTP handlers.
type Server struct {
	st       store.Store
	coachSvc *coach.Service
	now      func() time.Time
}

// NewServer creates an API server with the given dependencies.
func NewServer(st store.Store, coachSvc *coach.Service) *Server {
	return &Server{
		st:       st,
		coachSvc: coachSvc,
		now:      time.Now,
	}
}

// Routes registers all handlers on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/coach/message", s.coachMessageHandler)
	mux.HandleFunc("/coach/chat", s.coachChatHandler)
	mux.HandleFunc("/coach/history", s.coachHistoryHandler)
	mux.HandleFunc("/cravings", s.cravingsHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/profile", s.profileHandler)
	mux.HandleFunc("/profile/reset", s.profileResetHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server.Run: shutdown failed", "error", err)
		}
	}()

	slog.Info("lesscoach API running", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}
