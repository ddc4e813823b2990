package fsstore

import (
	"context"

	"pet-adoption/internal/domain/categories"

	"cloud.google.com/go/firestore"
)

type bannerDoc struct {
	Name     string `firestore:"name"`
	ImageURL string `firestore:"imageUrl"`
	Position int    `firestore:"position"`
}

type CategoriesRepo struct {
	c *firestore.Client
}

func NewCategoriesRepo(c *firestore.Client) *CategoriesRepo {
	return &CategoriesRepo{c: c}
}

func (r *CategoriesRepo) ListCategories(ctx context.Context) ([]categories.Category, error) {
	docs, err := r.list(ctx, colCategories)
	if err != nil {
		return nil, err
	}
	out := make([]categories.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, categories.Category{Name: d.Name, ImageURL: d.ImageURL, Position: d.Position})
	}
	return out, nil
}

func (r *CategoriesRepo) ListSliders(ctx context.Context) ([]categories.Slider, error) {
	docs, err := r.list(ctx, colSliders)
	if err != nil {
		return nil, err
	}
	out := make([]categories.Slider, 0, len(docs))
	for _, d := range docs {
		out = append(out, categories.Slider{Name: d.Name, ImageURL: d.ImageURL, Position: d.Position})
	}
	return out, nil
}

// Seed escribe las categorías por defecto si la colección está vacía.
func (r *CategoriesRepo) Seed(ctx context.Context) error {
	existing, err := r.list(ctx, colCategories)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, c := range categories.Defaults() {
		if _, err := r.c.Collection(colCategories).Doc(c.Name).Set(ctx, bannerDoc{
			Name:     c.Name,
			ImageURL: c.ImageURL,
			Position: c.Position,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *CategoriesRepo) list(ctx context.Context, collection string) ([]bannerDoc, error) {
	snaps, err := r.c.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]bannerDoc, 0, len(snaps))
	for _, s := range snaps {
		var d bannerDoc
		if err := s.DataTo(&d); err != nil {
			return nil, err
		}
		if d.Name == "" {
			d.Name = s.Ref.ID
		}
		out = append(out, d)
	}
	return out, nil
}
