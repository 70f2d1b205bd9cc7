package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/buildinfo"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/observability"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/search"
)

// =============================================================================
// Wire types
// =============================================================================

// TreeRequest is the body of layout and render requests.
type TreeRequest struct {
	Tree *family.Tree `json:"tree"`
	// Collapsed overrides the stored collapse state when present.
	Collapsed *[]string      `json:"collapsed,omitempty"`
	Layout    layout.Options `json:"layout"`
	// Overrides are manual positions keyed by person id.
	Overrides layout.Overrides `json:"overrides,omitempty"`
	Selected  string           `json:"selected,omitempty"`
	NoSpecial bool             `json:"no_special,omitempty"`
	Detailed  bool             `json:"detailed,omitempty"`
}

// SearchRequest is the body of a search request.
type SearchRequest struct {
	Tree  *family.Tree `json:"tree"`
	Query string       `json:"query"`
	Limit int          `json:"limit,omitempty"`
}

// SearchHit is one search result.
type SearchHit struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	Generation int    `json:"generation"`
}

// SearchResponse lists matches in tree order.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

// CollapseState is the body of collapse-state requests and responses.
type CollapseState struct {
	TreeID    string   `json:"tree_id"`
	Collapsed []string `json:"collapsed"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	s.runTree(w, r, pipeline.FormatJSON)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if !pipeline.ValidFormats[format] {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format))
		return
	}
	s.runTree(w, r, format)
}

func (s *Server) runTree(w http.ResponseWriter, r *http.Request, format string) {
	var req TreeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Tree == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "tree is required"))
		return
	}

	treeID := family.Identity(req.Tree)
	var collapsed []string
	if req.Collapsed != nil {
		collapsed = *req.Collapsed
	} else {
		ids, err := collapse.Load(r.Context(), s.store, treeID)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load collapse state"))
			return
		}
		collapsed = ids
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Tree:      req.Tree,
		Collapsed: collapsed,
		Layout:    req.Layout,
		Overrides: req.Overrides,
		Formats:   []string{format},
		Selected:  req.Selected,
		NoSpecial: req.NoSpecial,
		Detailed:  req.Detailed,
		Logger:    s.logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Tree-ID", res.TreeID)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Tree == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "tree is required"))
		return
	}

	resp := SearchResponse{Query: req.Query, Results: []SearchHit{}}
	for _, p := range search.Find(req.Tree.Persons, req.Query, req.Limit) {
		resp.Results = append(resp.Results, SearchHit{
			ID:         p.ID,
			Name:       p.Name,
			Title:      p.Title,
			Generation: p.Generation,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getCollapsed(w http.ResponseWriter, r *http.Request) {
	treeID, ok := s.treeID(w, r)
	if !ok {
		return
	}
	ids, err := collapse.Load(r.Context(), s.store, treeID)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load collapse state"))
		return
	}
	writeJSON(w, http.StatusOK, CollapseState{TreeID: treeID, Collapsed: collapse.Normalize(ids)})
}

func (s *Server) putCollapsed(w http.ResponseWriter, r *http.Request) {
	treeID, ok := s.treeID(w, r)
	if !ok {
		return
	}
	var req CollapseState
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	ids := collapse.Normalize(req.Collapsed)
	if err := s.store.Set(r.Context(), treeID, ids); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "save collapse state"))
		return
	}
	observability.Server().OnCollapseChange(r.Context(), treeID, len(ids))
	writeJSON(w, http.StatusOK, CollapseState{TreeID: treeID, Collapsed: ids})
}

func (s *Server) deleteCollapsed(w http.ResponseWriter, r *http.Request) {
	treeID, ok := s.treeID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), treeID); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "delete collapse state"))
		return
	}
	observability.Server().OnCollapseChange(r.Context(), treeID, 0)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleCollapsed(w http.ResponseWriter, r *http.Request) {
	treeID, ok := s.treeID(w, r)
	if !ok {
		return
	}
	personID := strings.TrimSpace(chi.URLParam(r, "personID"))
	if personID == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "person id is required"))
		return
	}
	ids, err := collapse.Toggle(r.Context(), s.store, treeID, personID)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "toggle collapse state"))
		return
	}
	observability.Server().OnCollapseChange(r.Context(), treeID, len(ids))
	writeJSON(w, http.StatusOK, CollapseState{TreeID: treeID, Collapsed: ids})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) treeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "treeID")
	if err := errors.ValidateTreeID(id); err != nil {
		s.writeError(w, err)
		return "", false
	}
	return id, true
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidTree,
		errors.ErrCodeInvalidConfig, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "image/svg+xml"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
