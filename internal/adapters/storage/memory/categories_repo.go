package memory

import (
	"context"
	"sync"

	"pet-adoption/internal/domain/categories"
)

type categoryRepo struct {
	mu         sync.RWMutex
	categories []categories.Category
	sliders    []categories.Slider
}

// NewCategoryRepo arranca con las categorías por defecto si cats es nil.
func NewCategoryRepo(cats []categories.Category, sliders []categories.Slider) categories.Repository {
	if cats == nil {
		cats = categories.Defaults()
	}
	return &categoryRepo{
		categories: append([]categories.Category(nil), cats...),
		sliders:    append([]categories.Slider(nil), sliders...),
	}
}

func (r *categoryRepo) ListCategories(ctx context.Context) ([]categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]categories.Category{}, r.categories...), nil
}

func (r *categoryRepo) ListSliders(ctx context.Context) ([]categories.Slider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]categories.Slider{}, r.sliders...), nil
}
