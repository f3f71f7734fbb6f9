package services

import (
	"context"
	"errors"
	"testing"

	"fintechapi/internal/core"
)

func TestCategoryCreate(t *testing.T) {
	_, _, catalog := newTestEnv(t)
	ctx := context.Background()

	cat, err := catalog.CreateCategory(ctx, "Casa", core.CategoryExpense)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.ID == 0 {
		t.Fatal("created category must have an id")
	}

	if _, err := catalog.CreateCategory(ctx, "Casa", core.CategoryExpense); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("same name+kind should be ErrDuplicateData, got %v", err)
	}
	// Same name under the other kind is a distinct category.
	if _, err := catalog.CreateCategory(ctx, "Casa", core.CategoryIncome); err != nil {
		t.Fatalf("same name, other kind: %v", err)
	}

	if _, err := catalog.CreateCategory(ctx, "  ", core.CategoryExpense); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("blank name should be ErrInvalidInput, got %v", err)
	}
	if _, err := catalog.CreateCategory(ctx, "Outra", "BOGUS"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("bad kind should be ErrInvalidInput, got %v", err)
	}
}

func TestCategoryListByKind(t *testing.T) {
	_, _, catalog := newTestEnv(t)
	ctx := context.Background()

	mustCreateCategory(t, catalog, "Casa", core.CategoryExpense)
	mustCreateCategory(t, catalog, "Transporte", core.CategoryExpense)
	mustCreateCategory(t, catalog, "Salário", core.CategoryIncome)

	expenses, err := catalog.ListCategories(ctx, core.CategoryExpense)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("got %d expense categories, want 2", len(expenses))
	}

	all, err := catalog.ListCategories(ctx, "")
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d categories, want 3", len(all))
	}
}

func TestCategoryUpdate(t *testing.T) {
	_, _, catalog := newTestEnv(t)
	ctx := context.Background()

	casa := mustCreateCategory(t, catalog, "Casa", core.CategoryExpense)
	mustCreateCategory(t, catalog, "Transporte", core.CategoryExpense)

	newName := "Moradia"
	updated, err := catalog.UpdateCategory(ctx, CategoryUpdate{ID: casa.ID, Name: &newName})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "Moradia" {
		t.Fatalf("name = %q, want Moradia", updated.Name)
	}
	if updated.Kind != core.CategoryExpense {
		t.Fatal("omitted kind must be preserved")
	}

	clash := "Transporte"
	if _, err := catalog.UpdateCategory(ctx, CategoryUpdate{ID: casa.ID, Name: &clash}); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("renaming onto an existing pair should be ErrDuplicateData, got %v", err)
	}
	if _, err := catalog.UpdateCategory(ctx, CategoryUpdate{ID: 9999, Name: &newName}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown category should be ErrNotFound, got %v", err)
	}
}

func TestSubcategoryLifecycle(t *testing.T) {
	_, _, catalog := newTestEnv(t)
	ctx := context.Background()

	casa := mustCreateCategory(t, catalog, "Casa", core.CategoryExpense)
	saude := mustCreateCategory(t, catalog, "Saúde", core.CategoryExpense)

	sub, err := catalog.CreateSubcategory(ctx, "Aluguel", casa.ID)
	if err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}
	if sub.CategoryID != casa.ID {
		t.Fatalf("parent = %d, want %d", sub.CategoryID, casa.ID)
	}

	if _, err := catalog.CreateSubcategory(ctx, "Aluguel", casa.ID); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("same name under same parent should be ErrDuplicateData, got %v", err)
	}
	// Same name under a different parent is fine.
	if _, err := catalog.CreateSubcategory(ctx, "Aluguel", saude.ID); err != nil {
		t.Fatalf("same name, other parent: %v", err)
	}
	if _, err := catalog.CreateSubcategory(ctx, "Orfã", 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown parent should be ErrNotFound, got %v", err)
	}

	subs, err := catalog.ListSubcategoriesByCategory(ctx, casa.ID)
	if err != nil {
		t.Fatalf("ListSubcategoriesByCategory: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d subcategories under Casa, want 1", len(subs))
	}
	if _, err := catalog.ListSubcategoriesByCategory(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("listing under unknown parent should be ErrNotFound, got %v", err)
	}

	// A bare move collides with the homonym already under Saúde.
	if _, err := catalog.UpdateSubcategory(ctx, SubcategoryUpdate{ID: sub.ID, CategoryID: &saude.ID}); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("move onto a homonym should be ErrDuplicateData, got %v", err)
	}
	// Moving and renaming in one update avoids the collision.
	name := "Plano de saúde"
	moved, err := catalog.UpdateSubcategory(ctx, SubcategoryUpdate{ID: sub.ID, Name: &name, CategoryID: &saude.ID})
	if err != nil {
		t.Fatalf("UpdateSubcategory: %v", err)
	}
	if moved.CategoryID != saude.ID || moved.Name != name {
		t.Fatalf("moved = %+v, want parent %d name %q", moved, saude.ID, name)
	}

	if err := catalog.DeleteSubcategory(ctx, sub.ID); err != nil {
		t.Fatalf("DeleteSubcategory: %v", err)
	}
	if err := catalog.DeleteSubcategory(ctx, sub.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestGetCategoryLoadsSubcategories(t *testing.T) {
	_, _, catalog := newTestEnv(t)
	ctx := context.Background()

	casa := mustCreateCategory(t, catalog, "Casa", core.CategoryExpense)
	for _, name := range []string{"Aluguel", "Luz", "Água"} {
		if _, err := catalog.CreateSubcategory(ctx, name, casa.ID); err != nil {
			t.Fatalf("CreateSubcategory %s: %v", name, err)
		}
	}

	got, err := catalog.GetCategory(ctx, casa.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if len(got.Subcategories) != 3 {
		t.Fatalf("got %d subcategories, want 3", len(got.Subcategories))
	}
}

func mustCreateCategory(t *testing.T, catalog *CatalogService, name string, kind core.CategoryKind) core.Category {
	t.Helper()
	cat, err := catalog.CreateCategory(context.Background(), name, kind)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return cat
}
