package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jward/doctree/internal/export"
	"github.com/jward/doctree/internal/model"
)

// maxSearchResults caps /api/search responses.
const maxSearchResults = 100

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// GET /api/docs?depth=N
func (s *Server) handleTopLevel(w http.ResponseWriter, r *http.Request) {
	depth, ok := depthParam(w, r, 0)
	if !ok {
		return
	}
	views := []export.DocView{}
	for _, c := range s.tree.Children(s.tree.Root()) {
		views = append(views, export.View(s.tree, c, depth))
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/docs/{path}?depth=N
func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	depth, ok := depthParam(w, r, 1)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.View(s.tree, d, depth))
}

// GET /api/docs/{path}/children
func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	views := []export.DocView{}
	for _, c := range s.tree.Children(d) {
		views = append(views, export.View(s.tree, c, 0))
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/search?q=text&kind=ClassDoc
//
// Matches docs whose path contains q, case-insensitively. Either parameter
// may be omitted but not both.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	kindName := r.URL.Query().Get("kind")
	if q == "" && kindName == "" {
		jsonError(w, "q or kind is required", http.StatusBadRequest)
		return
	}
	kind := model.KindNone
	if kindName != "" {
		k, ok := model.ParseKind(kindName)
		if !ok {
			jsonError(w, "unknown kind: "+kindName, http.StatusBadRequest)
			return
		}
		kind = k
	}

	views := []export.DocView{}
	s.tree.Walk(func(d *model.Doc, _ int) bool {
		if len(views) >= maxSearchResults {
			return false
		}
		if kind != model.KindNone && d.Kind != kind {
			return true
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Path), q) {
			return true
		}
		views = append(views, export.View(s.tree, d, 0))
		return true
	})
	writeJSON(w, http.StatusOK, views)
}

// GET /api/builds
func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := s.builds.Builds()
	if err != nil {
		s.log.Error("list builds", "error", err)
		jsonError(w, "failed to list builds", http.StatusInternalServerError)
		return
	}
	type buildView struct {
		ID           string `json:"id"`
		CreatedAt    string `json:"created_at"`
		Root         string `json:"root"`
		DocCount     int    `json:"doc_count"`
		WarningCount int    `json:"warning_count"`
	}
	out := make([]buildView, 0, len(builds))
	for _, b := range builds {
		out = append(out, buildView{
			ID:           b.ID,
			CreatedAt:    b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Root:         b.Root,
			DocCount:     b.DocCount,
			WarningCount: b.WarningCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// lookup resolves the {path} URL parameter. '#' arrives escaped as %23.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*model.Doc, bool) {
	path, err := url.PathUnescape(chi.URLParam(r, "path"))
	if err != nil {
		jsonError(w, "invalid path", http.StatusBadRequest)
		return nil, false
	}
	d, ok := s.tree.Doc(path, s.tree.Root())
	if !ok {
		jsonError(w, "doc not found: "+path, http.StatusNotFound)
		return nil, false
	}
	return d, true
}

func depthParam(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("depth")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		jsonError(w, "depth must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
