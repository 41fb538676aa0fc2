// Package api exposes the scheduling engine over HTTP: available-times for
// the booking UI and template expansion for admin actions and scheduled jobs.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"washbay/internal/availability"
	"washbay/internal/db"
	"washbay/internal/metrics"
	"washbay/internal/recurrence"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
	ReportDir      string
}

// HTTPServer wires the engine components behind the HTTP API.
type HTTPServer struct {
	server     *http.Server
	db         *db.DB
	calculator *availability.Calculator
	expander   *recurrence.Expander
	logger     *zerolog.Logger
	limiter    *rate.Limiter
	apiKey     string
	reportDir  string
	loc        *time.Location
}

// NewHTTPServer builds the server and its routes.
func NewHTTPServer(cfg Config, database *db.DB, calc *availability.Calculator,
	expander *recurrence.Expander, loc *time.Location, logger *zerolog.Logger) *HTTPServer {

	s := &HTTPServer{
		db:         database,
		calculator: calc,
		expander:   expander,
		logger:     logger,
		apiKey:     cfg.APIKey,
		reportDir:  cfg.ReportDir,
		loc:        loc,
	}

	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimitRPS)
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/available-times", s.guard("available_times", s.handleAvailableTimes))
	mux.HandleFunc("/api/templates/expand", s.guard("expand_template", s.handleExpandTemplate))

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// guard applies rate limiting, API-key auth and the per-op request counter.
func (s *HTTPServer) guard(op string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(op)

		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next(w, r)
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
