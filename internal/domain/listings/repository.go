package listings

import "context"

type Repository interface {
	Create(ctx context.Context, p Post) error
	Update(ctx context.Context, p Post) error
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (Post, error)
	// ListByCategory con category vacío lista todo. Más recientes primero.
	ListByCategory(ctx context.Context, category string) ([]Post, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]Post, error)
	// ListByIDs ignora ids inexistentes.
	ListByIDs(ctx context.Context, ids []string) ([]Post, error)
}
