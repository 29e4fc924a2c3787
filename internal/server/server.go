// Package server exposes the query engine to the editor frontend as HTTP
// resource endpoints: normalization, capability checks, and SQL preview.
// Ambient dashboard context (variables, ad-hoc filters) arrives explicitly
// in each request body.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// Compiler turns a canonical query into SQL text without executing it.
// *client.Client satisfies this.
type Compiler interface {
	CompileSQL(ctx context.Context, q cube.NormalizedQuery) (string, error)
}

// Server holds the resource handlers.
type Server struct {
	log      *slog.Logger
	compiler Compiler
}

// New creates a Server. compiler may be nil, in which case the preview
// endpoint reports the capability as unconfigured.
func New(log *slog.Logger, compiler Compiler) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, compiler: compiler}
}

// Routes builds the resource router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/normalize", s.handleNormalize)
		r.Post("/check", s.handleCheck)
		r.Post("/preview", s.handlePreview)
	})
	return r
}

// queryRequest is the shared body of the query endpoints: the stored
// query plus the ambient dashboard context it is normalized against.
type queryRequest struct {
	Query        map[string]any     `json:"query"`
	Source       string             `json:"source,omitempty"`
	Variables    map[string]string  `json:"variables,omitempty"`
	AdhocFilters []cube.AdhocFilter `json:"adhocFilters,omitempty"`
}

func (r queryRequest) decode() (cube.Query, cube.NormalizeContext, error) {
	q, err := cube.DecodeQuery(r.Query)
	if err != nil {
		return cube.Query{}, cube.NormalizeContext{}, err
	}
	ctx := cube.NormalizeContext{
		Source: r.Source,
		Host: cube.StaticHost{
			Vars:    r.Variables,
			Filters: r.AdhocFilters,
		},
	}
	return q, ctx, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	q, nctx, err := req.decode()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query": cube.NormalizeQuery(q, nctx),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	q, _, err := req.decode()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reasons := cube.DetectUnsupportedFeatures(q)
	keys := make([]string, 0, 2)
	for key := range cube.UnsupportedQueryKeys(q) {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"supported": len(reasons) == 0,
		"reasons":   reasons,
		"keys":      keys,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.compiler == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no query service configured")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	q, nctx, err := req.decode()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	normalized := cube.NormalizeQuery(q, nctx)
	sql, err := s.compiler.CompileSQL(r.Context(), normalized)
	if err != nil {
		s.log.Error("sql compilation failed", "error", err)
		s.writeError(w, http.StatusBadGateway, "compile sql: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"sql":   sql,
		"query": normalized,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(started))
	})
}
