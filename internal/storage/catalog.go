package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
)

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categoria (nome_categoria, tipo_categoria) VALUES (?, ?)`,
		c.Name, string(c.Kind))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", mapConstraintErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	c.ID = id

	slog.InfoContext(ctx, "Category created",
		applog.FieldCategoryID, c.ID,
		"name", c.Name,
		"kind", string(c.Kind),
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpCreate)
	return c, nil
}

// GetCategory loads a category with its subcategories.
func (r *Repository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var (
		c    core.Category
		kind string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id_categoria, nome_categoria, tipo_categoria FROM categoria WHERE id_categoria = ?`,
		id).Scan(&c.ID, &c.Name, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFoundf("categoria não encontrada com ID: %d", id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("query category: %w", err)
	}
	c.Kind = core.CategoryKind(kind)

	subs, err := r.ListSubcategoriesByCategory(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	c.Subcategories = subs
	return c, nil
}

// ListCategories returns all categories; kind filters when non-empty.
func (r *Repository) ListCategories(ctx context.Context, kind core.CategoryKind) ([]core.Category, error) {
	query := `SELECT id_categoria, nome_categoria, tipo_categoria FROM categoria`
	args := []any{}
	if kind != "" {
		query += ` WHERE tipo_categoria = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY nome_categoria`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var (
			c core.Category
			k string
		)
		if err := rows.Scan(&c.ID, &c.Name, &k); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.CategoryKind(k)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	for i := range categories {
		subs, err := r.ListSubcategoriesByCategory(ctx, categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].Subcategories = subs
	}
	return categories, nil
}

// CategoryExists reports whether the (name, kind) pair is taken.
func (r *Repository) CategoryExists(ctx context.Context, name string, kind core.CategoryKind) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM categoria WHERE nome_categoria = ? AND tipo_categoria = ?)`,
		name, string(kind))
}

// UpdateCategory persists name and kind changes.
func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categoria SET nome_categoria = ?, tipo_categoria = ? WHERE id_categoria = ?`,
		c.Name, string(c.Kind), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", mapConstraintErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("categoria não encontrada com ID: %d", c.ID)
	}
	return nil
}

// DeleteCategory removes a category; subcategories cascade and ledger
// references are nulled out by the schema.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categoria WHERE id_categoria = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("categoria não encontrada com ID: %d", id)
	}

	slog.InfoContext(ctx, "Category deleted",
		applog.FieldCategoryID, id,
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// CreateSubcategory inserts a subcategory under its parent category.
func (r *Repository) CreateSubcategory(ctx context.Context, s core.Subcategory) (core.Subcategory, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO subcategoria (id_categoria, nome_subcat) VALUES (?, ?)`,
		s.CategoryID, s.Name)
	if err != nil {
		return core.Subcategory{}, fmt.Errorf("insert subcategory: %w", mapConstraintErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Subcategory{}, fmt.Errorf("subcategory id: %w", err)
	}
	s.ID = id

	slog.InfoContext(ctx, "Subcategory created",
		applog.FieldSubcategoryID, s.ID,
		applog.FieldCategoryID, s.CategoryID,
		"name", s.Name,
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpCreate)
	return s, nil
}

// GetSubcategory loads one subcategory.
func (r *Repository) GetSubcategory(ctx context.Context, id int64) (core.Subcategory, error) {
	var s core.Subcategory
	err := r.db.QueryRowContext(ctx,
		`SELECT id_subcategoria, id_categoria, nome_subcat FROM subcategoria WHERE id_subcategoria = ?`,
		id).Scan(&s.ID, &s.CategoryID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subcategory{}, core.NotFoundf("subcategoria não encontrada com ID: %d", id)
	}
	if err != nil {
		return core.Subcategory{}, fmt.Errorf("query subcategory: %w", err)
	}
	return s, nil
}

// ListSubcategories returns every subcategory.
func (r *Repository) ListSubcategories(ctx context.Context) ([]core.Subcategory, error) {
	return r.querySubcategories(ctx,
		`SELECT id_subcategoria, id_categoria, nome_subcat FROM subcategoria ORDER BY id_categoria, nome_subcat`)
}

// ListSubcategoriesByCategory returns a category's subcategories.
func (r *Repository) ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]core.Subcategory, error) {
	return r.querySubcategories(ctx,
		`SELECT id_subcategoria, id_categoria, nome_subcat FROM subcategoria WHERE id_categoria = ? ORDER BY nome_subcat`,
		categoryID)
}

func (r *Repository) querySubcategories(ctx context.Context, query string, args ...any) ([]core.Subcategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subcategories: %w", err)
	}
	defer rows.Close()

	var subs []core.Subcategory
	for rows.Next() {
		var s core.Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategories: %w", err)
	}
	return subs, nil
}

// SubcategoryExists reports whether the name is taken within the category.
func (r *Repository) SubcategoryExists(ctx context.Context, categoryID int64, name string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM subcategoria WHERE id_categoria = ? AND nome_subcat = ?)`,
		categoryID, name)
}

// UpdateSubcategory persists name and parent changes.
func (r *Repository) UpdateSubcategory(ctx context.Context, s core.Subcategory) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subcategoria SET id_categoria = ?, nome_subcat = ? WHERE id_subcategoria = ?`,
		s.CategoryID, s.Name, s.ID)
	if err != nil {
		return fmt.Errorf("update subcategory: %w", mapConstraintErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("subcategoria não encontrada com ID: %d", s.ID)
	}
	return nil
}

// DeleteSubcategory removes one subcategory.
func (r *Repository) DeleteSubcategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subcategoria WHERE id_subcategoria = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("subcategoria não encontrada com ID: %d", id)
	}
	return nil
}
