package categories

import "context"

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListSliders(ctx context.Context) ([]Slider, error)
}
