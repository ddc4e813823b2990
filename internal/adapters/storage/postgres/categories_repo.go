package postgres

import (
	"context"
	"database/sql"

	"pet-adoption/internal/domain/categories"
)

type CategoriesRepo struct {
	db *sql.DB
}

func NewCategoriesRepo(db *sql.DB) *CategoriesRepo {
	return &CategoriesRepo{db: db}
}

func (r *CategoriesRepo) ListCategories(ctx context.Context) ([]categories.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, image_url, position FROM categories ORDER BY position, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]categories.Category, 0)
	for rows.Next() {
		var c categories.Category
		if err := rows.Scan(&c.Name, &c.ImageURL, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriesRepo) ListSliders(ctx context.Context) ([]categories.Slider, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, image_url, position FROM sliders ORDER BY position, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]categories.Slider, 0)
	for rows.Next() {
		var s categories.Slider
		if err := rows.Scan(&s.Name, &s.ImageURL, &s.Position); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
