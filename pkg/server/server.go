// Package server exposes a completed pipeline run over a read-only HTTP
// API. The handler serves an immutable dataset and graph, so no locking
// is needed and responses are fully deterministic.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bomgraph/bomgraph/pkg/bom"
	"github.com/bomgraph/bomgraph/pkg/emit"
	"github.com/bomgraph/bomgraph/pkg/errors"
	"github.com/bomgraph/bomgraph/pkg/part"
)

// Server answers queries against one pipeline result.
type Server struct {
	dataset *emit.Dataset
	graph   *bom.Graph
	index   *part.Index
	logger  *log.Logger
}

// New creates a server over a finished run.
func New(ds *emit.Dataset, g *bom.Graph, idx *part.Index, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{dataset: ds, graph: g, index: idx, logger: logger}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/stats", s.handleStats)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Route("/parts/{number}", func(r chi.Router) {
			r.Get("/", s.handlePart)
			r.Get("/ancestors", s.handleAncestors)
			r.Get("/descendants", s.handleDescendants)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"run_id": s.dataset.RunID,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dataset)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": s.dataset.RunID,
		"parts":  len(s.dataset.Nodes),
		"edges":  len(s.dataset.DirectEdges),
		"pairs":  len(s.dataset.Closure),
		"index":  s.dataset.Diagnostics.Index,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dataset.Diagnostics)
}

// partResponse is the per-part detail record.
type partResponse struct {
	Number   string    `json:"number"`
	Name     string    `json:"name,omitempty"`
	Meta     part.Meta `json:"meta"`
	Children []string  `json:"children,omitempty"`
	Parents  []string  `json:"parents,omitempty"`
}

func (s *Server) handlePart(w http.ResponseWriter, r *http.Request) {
	number, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name, _ := s.index.NameFor(number)
	meta, _ := s.index.MetaFor(number)
	s.writeJSON(w, http.StatusOK, partResponse{
		Number:   number,
		Name:     name,
		Meta:     meta,
		Children: s.graph.Children(number),
		Parents:  s.graph.Parents(number),
	})
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	number, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"number":    number,
		"ancestors": s.graph.Ancestors(number),
	})
}

func (s *Server) handleDescendants(w http.ResponseWriter, r *http.Request) {
	number, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"number":      number,
		"descendants": s.graph.Descendants(number),
	})
}

// lookup normalizes the path parameter and rejects unknown parts. A part
// can be indexed without appearing in the graph; both sources count.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, bool) {
	number := part.NormalizeIdentifier(chi.URLParam(r, "number"))
	if !s.index.Known(number) && !s.graph.Has(number) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown part %q", number))
		return "", false
	}
	return number, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, errors.ErrCodeNotFound) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
