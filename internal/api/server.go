// Package api exposes the reconciliation core over HTTP: alias
// resolution, scheme conversion and single-token classification. The
// service mode lets annotation tooling query the same logic the batch
// pipeline runs.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lvonguyen/tagforge/internal/alias"
	"github.com/lvonguyen/tagforge/internal/annotation"
	"github.com/lvonguyen/tagforge/internal/classify"
)

// Server handles HTTP requests against the core.
type Server struct {
	resolver alias.EntityResolver
	logger   *zap.Logger
	version  string
}

// NewServer creates a server around the given resolver.
func NewServer(resolver alias.EntityResolver, version string, logger *zap.Logger) *Server {
	return &Server{resolver: resolver, logger: logger, version: version}
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Post("/convert", s.handleConvert)
		r.Post("/classify", s.handleClassify)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
	})
}

// ResolveRequest asks for alias resolution of one surface form.
type ResolveRequest struct {
	Query   string             `json:"query"`
	Default string             `json:"default,omitempty"`
	Targets alias.TargetLabels `json:"targets,omitempty"`
}

// ResolveResponse carries the resolution outcome. Label is populated
// when target labels were supplied.
type ResolveResponse struct {
	Found      bool              `json:"found"`
	Resolution *alias.Resolution `json:"resolution,omitempty"`
	Label      string            `json:"label,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	res, found := s.resolver.Resolve(r.Context(), req.Query)
	resp := ResolveResponse{Found: found, Resolution: res}
	if req.Targets != (alias.TargetLabels{}) || req.Default != "" {
		resp.Label = alias.LabelFor(r.Context(), s.resolver, req.Query, req.Default, req.Targets)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ConvertRequest asks for scheme conversion of tagged text.
type ConvertRequest struct {
	Scheme string `json:"scheme"` // BIO or BIOES
	Text   string `json:"text"`
}

// ConvertResponse returns the converted text and the detected input
// scheme.
type ConvertResponse struct {
	Detected string `json:"detected"`
	Text     string `json:"text"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target := annotation.Scheme(req.Scheme)
	if !target.Valid() {
		writeError(w, http.StatusBadRequest, "scheme must be BIO or BIOES")
		return
	}

	doc := annotation.Parse(req.Text)
	detected := annotation.Detect(doc)
	annotation.Convert(doc, target)

	writeJSON(w, http.StatusOK, ConvertResponse{
		Detected: string(detected),
		Text:     doc.Render(),
	})
}

// ClassifyRequest asks for heuristic classification of one token.
type ClassifyRequest struct {
	Token string `json:"token"`
}

// ClassifyResponse names the matched classifier, or leaves Type empty.
type ClassifyResponse struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	resp := ClassifyResponse{Token: req.Token, Type: classifyToken(req.Token)}
	writeJSON(w, http.StatusOK, resp)
}

// classifyToken applies the discovery heuristics in pipeline
// precedence order: file and hash ahead of network indicators.
func classifyToken(token string) string {
	switch {
	case classify.IsIPv4(token):
		return "ip"
	case classify.IsEmail(token):
		return "email"
	case classify.IsFile(token):
		return "file"
	case classify.HashAlgorithm(token) != "":
		return classify.HashAlgorithm(token)
	case classify.IsURL(token):
		return "url"
	case classify.IsDomain(token):
		return "domain"
	case classify.IsProtocol(token):
		return "protocol"
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
