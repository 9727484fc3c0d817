package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/logging"
	"github.com/ucf/section/internal/section"
	"github.com/ucf/section/internal/version"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, s.deps.Pages, s.config.Server.HomeSlug)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, s.deps.Pages, r.PathValue("slug"))
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, s.deps.Sections, r.PathValue("slug"))
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, repo *section.Repository, slug string) {
	ctx := r.Context()

	rec, err := repo.FindBySlug(ctx, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.deps.Renderer.RenderPage(ctx, rec)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, doc.HTML())
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.Get().Version})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Sections.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		records = []*section.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.PostType)
}

type adminSection struct {
	ID         int64  `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Stylesheet int64  `json:"ucf_section_stylesheet"`
	JavaScript int64  `json:"ucf_section_javascript"`
	Nonce      string `json:"ucf_section_nonce"`
}

func (s *Server) handleAdminSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := s.deps.Sections.FindByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, adminSection{
		ID:         rec.ID,
		Slug:       rec.Slug,
		Title:      rec.Title,
		Stylesheet: rec.StylesheetID,
		JavaScript: rec.ScriptID,
		Nonce:      s.deps.Admin.Nonce(rec.ID),
	})
}

// handleAdminSave always answers with a redirect back to the section;
// rejected saves are not reported to the client.
func (s *Server) handleAdminSave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	if _, err := s.deps.Admin.Save(r.Context(), id, r.PostForm); err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/admin/sections/%d", id), http.StatusSeeOther)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// fail maps err to a status: missing content is a 404, everything else a
// logged 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	logging.FromContext(r.Context(), s.logger).Error(r.Context(), err, "request failed", "path", r.URL.Path)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
