package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption/internal/domain/listings"
)

type listingRepo struct {
	mu   sync.RWMutex
	byID map[string]listings.Post
}

func NewListingRepo() listings.Repository {
	return &listingRepo{
		byID: make(map[string]listings.Post),
	}
}

func (r *listingRepo) Create(ctx context.Context, p listings.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *listingRepo) Update(ctx context.Context, p listings.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return listings.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *listingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return listings.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *listingRepo) GetByID(ctx context.Context, id string) (listings.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return listings.Post{}, listings.ErrNotFound
	}
	return p, nil
}

func (r *listingRepo) ListByCategory(ctx context.Context, category string) ([]listings.Post, error) {
	return r.filter(func(p listings.Post) bool {
		return category == "" || p.Category == category
	}), nil
}

func (r *listingRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]listings.Post, error) {
	return r.filter(func(p listings.Post) bool {
		return strings.EqualFold(p.Owner.Email, ownerEmail)
	}), nil
}

func (r *listingRepo) ListByIDs(ctx context.Context, ids []string) ([]listings.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listings.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// filter devuelve más recientes primero (id como desempate).
func (r *listingRepo) filter(keep func(listings.Post) bool) []listings.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listings.Post, 0)
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
