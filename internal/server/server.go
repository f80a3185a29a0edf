// Package server exposes the aggregation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/metrics"
	"github.com/ziadbensaada/PersonaTracker/internal/news"
	"github.com/ziadbensaada/PersonaTracker/internal/report"
	"github.com/ziadbensaada/PersonaTracker/internal/store"
)

const dayLayout = "2006-01-02"

// Aggregator is the search pipeline as the server sees it.
type Aggregator interface {
	GetNewsAbout(ctx context.Context, query string, maxArticles int, startDate, endDate string) []news.Article
}

type contextKey string

const userKey contextKey = "user"

// Server wires the API handlers together. builder may be nil when no
// Gemini key is configured; /api/report then returns 503.
type Server struct {
	agg         Aggregator
	builder     *report.Builder
	users       *store.Store
	maxArticles int
}

func New(agg Aggregator, builder *report.Builder, users *store.Store, maxArticles int) *Server {
	return &Server{agg: agg, builder: builder, users: users, maxArticles: maxArticles}
}

// Handler builds the router. Health and metrics are open; everything under
// /api requires basic auth against the user store.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="personatracker"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, err := s.users.VerifyUser(username, password)
		if err != nil {
			if !errors.Is(err, store.ErrInvalidCredentials) {
				logger.Error("auth lookup failed", "error", err)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="personatracker"`)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, maxArticles, startDate, endDate, ok := s.searchParams(w, r)
	if !ok {
		return
	}

	articles := s.agg.GetNewsAbout(r.Context(), query, maxArticles, startDate, endDate)
	s.logSearch(r, query, articles)

	writeJSON(w, http.StatusOK, map[string]any{
		"query":    query,
		"count":    len(articles),
		"articles": articles,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.builder == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return
	}
	query, maxArticles, startDate, endDate, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	withAudio := r.URL.Query().Get("audio") == "true"

	articles := s.agg.GetNewsAbout(r.Context(), query, maxArticles, startDate, endDate)
	s.logSearch(r, query, articles)

	rep, err := s.builder.Build(r.Context(), query, articles, withAudio)
	if err != nil {
		logger.Error("report build failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(userKey).(*store.User)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.users.SearchHistory(user.ID, limit)
	if err != nil {
		logger.Error("history lookup failed", "user", user.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"history": records,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "time": time.Now().Format(time.RFC3339)}
	if !metrics.Global.GetStats()["is_healthy"].(bool) {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

// searchParams validates the shared query parameters of /api/search and
// /api/report.
func (s *Server) searchParams(w http.ResponseWriter, r *http.Request) (query string, maxArticles int, startDate, endDate string, ok bool) {
	q := r.URL.Query()

	query = q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	maxArticles = s.maxArticles
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		if n < maxArticles {
			maxArticles = n
		}
	}

	for _, p := range []struct {
		name  string
		value *string
	}{{"start", &startDate}, {"end", &endDate}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		if _, err := time.Parse(dayLayout, raw); err != nil {
			writeError(w, http.StatusBadRequest, p.name+" must be YYYY-MM-DD")
			return
		}
		*p.value = raw
	}

	ok = true
	return
}

func (s *Server) logSearch(r *http.Request, query string, articles []news.Article) {
	user, ok := r.Context().Value(userKey).(*store.User)
	if !ok {
		return
	}
	if err := s.users.LogSearch(user.ID, query, len(articles), articles); err != nil {
		logger.Warn("failed to log search", "user", user.Username, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
