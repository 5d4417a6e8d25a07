// Package health serves the HTTP liveness report and prometheus metrics
// next to the game listener.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/models"
)

// Counter reports the number of online players.
type Counter interface {
	OnlineCount() int
}

type Server struct {
	settings connection.Settings
	players  Counter
	gatherer prometheus.Gatherer
	log      zerolog.Logger
	http     *http.Server
}

// New builds a health server for addr. gatherer may be nil, in which case
// /metrics is not mounted.
func New(addr string, settings connection.Settings, players Counter, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	s := &Server{
		settings: settings,
		players:  players,
		gatherer: gatherer,
		log:      log.With().Str("component", "health").Logger(),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.report)
	r.Get("/health", s.report)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) report(w http.ResponseWriter, _ *http.Request) {
	out, err := json.Marshal(models.HealthReport{
		Status:     "online",
		Version:    constants.MCVersion,
		Players:    s.players.OnlineCount(),
		MaxPlayers: s.settings.MaxPlayers(),
		MOTD:       s.settings.MOTD(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(out)
}

// Serve blocks until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info().Str("addr", l.Addr().String()).Msg("Health server listening")
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds the configured address and serves.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
