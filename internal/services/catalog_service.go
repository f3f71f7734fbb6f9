package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
	"fintechapi/internal/storage"
)

// CatalogService owns the category/subcategory reference data.
type CatalogService struct {
	repo *storage.Repository
}

func NewCatalogService(repo *storage.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	ID   int64
	Name *string
	Kind *core.CategoryKind
}

// SubcategoryUpdate is a partial subcategory update. A non-nil CategoryID
// moves the subcategory to a new parent.
type SubcategoryUpdate struct {
	ID         int64
	Name       *string
	CategoryID *int64
}

// CreateCategory validates the pair and persists it.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, kind core.CategoryKind) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.Invalidf("nome da categoria é obrigatório")
	}
	if !kind.Valid() {
		return core.Category{}, core.Invalidf("tipo da categoria inválido: %q", string(kind))
	}

	taken, err := s.repo.CategoryExists(ctx, name, kind)
	if err != nil {
		return core.Category{}, fmt.Errorf("check category: %w", err)
	}
	if taken {
		return core.Category{}, core.Duplicatef("já existe uma categoria com este nome e tipo")
	}

	return s.repo.CreateCategory(ctx, core.Category{Name: name, Kind: kind})
}

// GetCategory loads a category with its subcategories.
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// ListCategories returns all categories, optionally filtered by kind.
func (s *CatalogService) ListCategories(ctx context.Context, kind core.CategoryKind) ([]core.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, core.Invalidf("tipo da categoria inválido: %q", string(kind))
	}
	return s.repo.ListCategories(ctx, kind)
}

// UpdateCategory applies a partial update, re-checking pair uniqueness when
// the name or kind changes.
func (s *CatalogService) UpdateCategory(ctx context.Context, in CategoryUpdate) (core.Category, error) {
	if in.ID == 0 {
		return core.Category{}, core.Invalidf("ID da categoria é obrigatório para atualização")
	}

	existing, err := s.repo.GetCategory(ctx, in.ID)
	if err != nil {
		return core.Category{}, err
	}

	name := existing.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return core.Category{}, core.Invalidf("nome da categoria é obrigatório")
		}
	}
	kind := existing.Kind
	if in.Kind != nil {
		kind = *in.Kind
		if !kind.Valid() {
			return core.Category{}, core.Invalidf("tipo da categoria inválido: %q", string(kind))
		}
	}

	if name != existing.Name || kind != existing.Kind {
		taken, err := s.repo.CategoryExists(ctx, name, kind)
		if err != nil {
			return core.Category{}, fmt.Errorf("check category: %w", err)
		}
		if taken {
			return core.Category{}, core.Duplicatef("já existe uma categoria com este nome e tipo")
		}
	}

	existing.Name = name
	existing.Kind = kind
	if err := s.repo.UpdateCategory(ctx, existing); err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category updated",
		applog.FieldCategoryID, existing.ID,
		applog.FieldComponent, applog.ComponentCatalog,
		applog.FieldOperation, applog.OpUpdate)
	return s.repo.GetCategory(ctx, existing.ID)
}

// DeleteCategory removes a category and, by cascade, its subcategories.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}

// CreateSubcategory validates the parent and the per-category name.
func (s *CatalogService) CreateSubcategory(ctx context.Context, name string, categoryID int64) (core.Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Subcategory{}, core.Invalidf("nome da subcategoria é obrigatório")
	}

	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return core.Subcategory{}, err
	}

	taken, err := s.repo.SubcategoryExists(ctx, categoryID, name)
	if err != nil {
		return core.Subcategory{}, fmt.Errorf("check subcategory: %w", err)
	}
	if taken {
		return core.Subcategory{}, core.Duplicatef("já existe uma subcategoria com este nome nesta categoria")
	}

	return s.repo.CreateSubcategory(ctx, core.Subcategory{CategoryID: categoryID, Name: name})
}

// GetSubcategory loads one subcategory.
func (s *CatalogService) GetSubcategory(ctx context.Context, id int64) (core.Subcategory, error) {
	return s.repo.GetSubcategory(ctx, id)
}

// ListSubcategories returns every subcategory.
func (s *CatalogService) ListSubcategories(ctx context.Context) ([]core.Subcategory, error) {
	return s.repo.ListSubcategories(ctx)
}

// ListSubcategoriesByCategory returns a category's subcategories, failing
// with NotFound when the category itself is absent.
func (s *CatalogService) ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]core.Subcategory, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repo.ListSubcategoriesByCategory(ctx, categoryID)
}

// UpdateSubcategory applies a partial update; the duplicate check runs
// against the (possibly new) parent category.
func (s *CatalogService) UpdateSubcategory(ctx context.Context, in SubcategoryUpdate) (core.Subcategory, error) {
	if in.ID == 0 {
		return core.Subcategory{}, core.Invalidf("ID da subcategoria é obrigatório para atualização")
	}

	existing, err := s.repo.GetSubcategory(ctx, in.ID)
	if err != nil {
		return core.Subcategory{}, err
	}

	name := existing.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return core.Subcategory{}, core.Invalidf("nome da subcategoria é obrigatório")
		}
	}

	categoryID := existing.CategoryID
	if in.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *in.CategoryID); err != nil {
			return core.Subcategory{}, err
		}
		categoryID = *in.CategoryID
	}

	if name != existing.Name || categoryID != existing.CategoryID {
		taken, err := s.repo.SubcategoryExists(ctx, categoryID, name)
		if err != nil {
			return core.Subcategory{}, fmt.Errorf("check subcategory: %w", err)
		}
		if taken {
			return core.Subcategory{}, core.Duplicatef("já existe uma subcategoria com este nome nesta categoria")
		}
	}

	existing.Name = name
	existing.CategoryID = categoryID
	if err := s.repo.UpdateSubcategory(ctx, existing); err != nil {
		return core.Subcategory{}, err
	}
	return existing, nil
}

// DeleteSubcategory removes one subcategory.
func (s *CatalogService) DeleteSubcategory(ctx context.Context, id int64) error {
	if _, err := s.repo.GetSubcategory(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteSubcategory(ctx, id)
}
