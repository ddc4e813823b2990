package memory

import (
	"context"
	"sync"
	"time"

	"pet-adoption/internal/domain/favorites"
)

type favoritesRepo struct {
	mu      sync.Mutex
	byEmail map[string]favorites.Record
}

func NewFavoritesRepo() favorites.Repository {
	return &favoritesRepo{
		byEmail: make(map[string]favorites.Record),
	}
}

func (r *favoritesRepo) Get(ctx context.Context, email string) (favorites.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byEmail[email]
	if !ok {
		return favorites.Record{}, favorites.ErrNotFound
	}
	return clone(rec), nil
}

func (r *favoritesRepo) Create(ctx context.Context, rec favorites.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[rec.Email]; exists {
		return favorites.ErrAlreadyExists
	}
	r.byEmail[rec.Email] = clone(rec)
	return nil
}

func (r *favoritesRepo) AddPet(ctx context.Context, email, petID string, at time.Time) (favorites.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byEmail[email]
	if !ok {
		return favorites.Record{}, favorites.ErrNotFound
	}
	if !rec.Has(petID) {
		rec.PetIDs = append(rec.PetIDs, petID)
		rec.UpdatedAt = at
		r.byEmail[email] = rec
	}
	return clone(rec), nil
}

func (r *favoritesRepo) RemovePet(ctx context.Context, email, petID string, at time.Time) (favorites.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byEmail[email]
	if !ok {
		return favorites.Record{}, favorites.ErrNotFound
	}
	if rec.Has(petID) {
		kept := make([]string, 0, len(rec.PetIDs))
		for _, id := range rec.PetIDs {
			if id != petID {
				kept = append(kept, id)
			}
		}
		rec.PetIDs = kept
		rec.UpdatedAt = at
		r.byEmail[email] = rec
	}
	return clone(rec), nil
}

// clone evita que el llamador comparta el slice guardado.
func clone(rec favorites.Record) favorites.Record {
	rec.PetIDs = append([]string{}, rec.PetIDs...)
	return rec
}
