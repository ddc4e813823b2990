package favorites

import (
	"context"
	"time"
)

type Repository interface {
	// Get devuelve ErrNotFound si el usuario todavía no tiene registro.
	Get(ctx context.Context, email string) (Record, error)
	// Create devuelve ErrAlreadyExists si otro request lo creó antes.
	Create(ctx context.Context, r Record) error

	// AddPet y RemovePet son atómicos respecto de otros writers:
	// AddPet no duplica, RemovePet con id ausente no cambia nada.
	AddPet(ctx context.Context, email, petID string, at time.Time) (Record, error)
	RemovePet(ctx context.Context, email, petID string, at time.Time) (Record, error)
}
