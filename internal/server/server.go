// Package server exposes the query service as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/transferradar/internal/app"
	"github.com/deusflow/transferradar/internal/config"
	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/logger"
	"github.com/deusflow/transferradar/internal/ratelimit"
)

const noMentionsMessage = "No recent mentions."

// Server serves the JSON API over HTTP.
type Server struct {
	svc     *app.Service
	limiter *ratelimit.ClientLimiter
	cfg     config.ServerConfig
	started time.Time
}

func New(svc *app.Service, limiter *ratelimit.ClientLimiter, cfg config.ServerConfig) *Server {
	return &Server{svc: svc, limiter: limiter, cfg: cfg, started: time.Now()}
}

// Handler returns the routed API with request IDs, panic recovery and
// per-client throttling of /api/ routes.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/autocomplete", s.handleAutocomplete)
	api.HandleFunc("GET /api/transfers", s.handleTransfers)
	api.HandleFunc("GET /api/transfers/link", s.handleTransferLink)
	api.HandleFunc("GET /api/team-stats", s.handleTeamStats)
	api.HandleFunc("GET /api/player-stats", s.handlePlayerStats)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("/api/", s.throttle(api))

	return withRequestID(recoverPanics(mux))
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.Metrics().GetStats()
	stats["tracked_clients"] = s.limiter.Clients()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Autocomplete(r.URL.Query().Get("query")))
}

type transfersResponse struct {
	*app.SearchResult
	Message string `json:"message,omitempty"`
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writeError(w, r, fmt.Errorf("%w: missing 'query' parameter", entity.ErrInvalidInput))
		return
	}
	typ, err := entity.ParseType(q.Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	window, err := windowParam(q.Get("window"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.svc.Search(r.Context(), query, typ, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := transfersResponse{SearchResult: res}
	if (res.Club != nil && res.Club.Empty()) || (res.Player != nil && res.Player.Empty()) {
		resp.Message = noMentionsMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransferLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	player, team := strings.TrimSpace(q.Get("player")), strings.TrimSpace(q.Get("team"))
	if player == "" || team == "" {
		writeError(w, r, fmt.Errorf("%w: missing player or team parameter", entity.ErrInvalidInput))
		return
	}
	window, err := windowParam(q.Get("window"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.svc.TransferLink(r.Context(), player, team, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ClubStats(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.PlayerStats(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// windowParam parses an optional positive hour count; empty means default.
func windowParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: window must be a positive number of hours, got %q", entity.ErrInvalidInput, v)
	}
	return n, nil
}

type errorBody struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
	RequestID   string   `json:"request_id,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrUpstreamFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), RequestID: requestID(r.Context())}

	var nf *entity.NotFoundError
	if errors.As(err, &nf) {
		body.Suggestions = nf.Suggestions
	}
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("request failed", "status", status, "err", err)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	} else {
		loggerFrom(r.Context()).Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response failed", "err", err)
	}
}
