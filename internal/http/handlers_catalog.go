package http

import (
	"net/http"
	"strings"

	"fintechapi/internal/core"
	"fintechapi/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := core.CategoryKind(strings.TrimSpace(r.URL.Query().Get("tipo")))
	if kind != "" && !kind.Valid() {
		writeError(w, r, core.Invalidf("tipo de categoria inválido: %q", string(kind)))
		return
	}

	categories, err := s.catalog.ListCategories(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, newCategoryView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.catalog.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryView(category))
}

type createCategoryRequest struct {
	NomeCategoria string `json:"nomeCategoria"`
	TipoCategoria string `json:"tipoCategoria"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.catalog.CreateCategory(r.Context(), req.NomeCategoria, core.CategoryKind(req.TipoCategoria))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryView(category))
}

type updateCategoryRequest struct {
	NomeCategoria *string `json:"nomeCategoria"`
	TipoCategoria *string `json:"tipoCategoria"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.CategoryUpdate{ID: id, Name: req.NomeCategoria}
	if req.TipoCategoria != nil {
		kind := core.CategoryKind(*req.TipoCategoria)
		in.Kind = &kind
	}

	category, err := s.catalog.UpdateCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryView(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.catalog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubcategories(w http.ResponseWriter, r *http.Request) {
	subcategories, err := s.catalog.ListSubcategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]subcategoryView, 0, len(subcategories))
	for _, sub := range subcategories {
		views = append(views, newSubcategoryView(sub))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := s.catalog.GetSubcategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubcategoryView(sub))
}

func (s *Server) handleListSubcategoriesByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	subcategories, err := s.catalog.ListSubcategoriesByCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]subcategoryView, 0, len(subcategories))
	for _, sub := range subcategories {
		views = append(views, newSubcategoryView(sub))
	}
	writeJSON(w, http.StatusOK, views)
}

type createSubcategoryRequest struct {
	NomeSubcat  string `json:"nomeSubcat"`
	IDCategoria int64  `json:"idCategoria"`
}

func (s *Server) handleCreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req createSubcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IDCategoria <= 0 {
		writeError(w, r, core.Invalidf("idCategoria é obrigatório"))
		return
	}

	sub, err := s.catalog.CreateSubcategory(r.Context(), req.NomeSubcat, req.IDCategoria)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSubcategoryView(sub))
}

type updateSubcategoryRequest struct {
	NomeSubcat  *string `json:"nomeSubcat"`
	IDCategoria *int64  `json:"idCategoria"`
}

func (s *Server) handleUpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateSubcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := s.catalog.UpdateSubcategory(r.Context(), services.SubcategoryUpdate{
		ID:         id,
		Name:       req.NomeSubcat,
		CategoryID: req.IDCategoria,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubcategoryView(sub))
}

func (s *Server) handleDeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.catalog.DeleteSubcategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
