package server

import (
	"context"
	"net/http"
	"time"

	"precision/internal/history"
	"precision/internal/score"
)

// Server wraps the HTTP API of the scorer with controlled startup and shutdown.
type Server struct {
	server *http.Server
}

// ListenAndServe starts the HTTP server. Blocks until the server is stopped
// or fails. After Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting active requests complete
// within the deadline of ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NewServer creates a server listening on address (e.g. ":8080") that exposes
// scorer and the per-scheme evaluation history.
//
// Scoring a scheme walks the whole table, so the write timeout is longer than
// the read timeout.
func NewServer(
	address string,
	scorer *score.Scorer,
	historyRepo *history.Repository[score.Evaluation],
) *Server {
	router := NewApiV1Router(scorer, historyRepo)
	s := Server{&http.Server{
		Addr:           address,
		Handler:        router.Mux(),
		ReadTimeout:    time.Second * 3,
		WriteTimeout:   time.Second * 30,
		MaxHeaderBytes: 1024 * 10,
	}}

	return &s
}
