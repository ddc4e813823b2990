package fsstore

import (
	"context"
	"time"

	"pet-adoption/internal/domain/favorites"

	"cloud.google.com/go/firestore"
)

type favDoc struct {
	Email     string    `firestore:"email"`
	Favorites []string  `firestore:"favorites"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type FavoritesRepo struct {
	c *firestore.Client
}

func NewFavoritesRepo(c *firestore.Client) *FavoritesRepo {
	return &FavoritesRepo{c: c}
}

func (r *FavoritesRepo) doc(email string) *firestore.DocumentRef {
	return r.c.Collection(colFavorites).Doc(email)
}

func (r *FavoritesRepo) Get(ctx context.Context, email string) (favorites.Record, error) {
	snap, err := r.doc(email).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return favorites.Record{}, favorites.ErrNotFound
		}
		return favorites.Record{}, err
	}
	var d favDoc
	if err := snap.DataTo(&d); err != nil {
		return favorites.Record{}, err
	}
	ids := d.Favorites
	if ids == nil {
		ids = []string{}
	}
	return favorites.Record{Email: d.Email, PetIDs: ids, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

func (r *FavoritesRepo) Create(ctx context.Context, rec favorites.Record) error {
	ids := rec.PetIDs
	if ids == nil {
		ids = []string{}
	}
	_, err := r.doc(rec.Email).Create(ctx, favDoc{
		Email:     rec.Email,
		Favorites: ids,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	})
	if isAlreadyExists(err) {
		return favorites.ErrAlreadyExists
	}
	return err
}

// AddPet usa ArrayUnion: atómico y sin duplicados del lado del servidor.
func (r *FavoritesRepo) AddPet(ctx context.Context, email, petID string, at time.Time) (favorites.Record, error) {
	return r.update(ctx, email, firestore.ArrayUnion(petID), at)
}

func (r *FavoritesRepo) RemovePet(ctx context.Context, email, petID string, at time.Time) (favorites.Record, error) {
	return r.update(ctx, email, firestore.ArrayRemove(petID), at)
}

func (r *FavoritesRepo) update(ctx context.Context, email string, op any, at time.Time) (favorites.Record, error) {
	_, err := r.doc(email).Update(ctx, []firestore.Update{
		{Path: "favorites", Value: op},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		if isNotFound(err) {
			return favorites.Record{}, favorites.ErrNotFound
		}
		return favorites.Record{}, err
	}
	return r.Get(ctx, email)
}
