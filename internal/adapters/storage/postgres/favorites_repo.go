package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pet-adoption/internal/domain/favorites"
)

type FavoritesRepo struct {
	db *sql.DB
}

func NewFavoritesRepo(db *sql.DB) *FavoritesRepo {
	return &FavoritesRepo{db: db}
}

func (r *FavoritesRepo) Get(ctx context.Context, email string) (favorites.Record, error) {
	return r.get(ctx, r.db, email)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *FavoritesRepo) get(ctx context.Context, q querier, email string) (favorites.Record, error) {
	rec := favorites.Record{Email: email, PetIDs: []string{}}
	err := q.QueryRowContext(ctx, `
		SELECT created_at, updated_at FROM favorites WHERE email = $1
	`, email).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return favorites.Record{}, favorites.ErrNotFound
	}
	if err != nil {
		return favorites.Record{}, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pet_id FROM favorite_pets
		WHERE email = $1
		ORDER BY added_at, pet_id
	`, email)
	if err != nil {
		return favorites.Record{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return favorites.Record{}, err
		}
		rec.PetIDs = append(rec.PetIDs, id)
	}
	return rec, rows.Err()
}

func (r *FavoritesRepo) Create(ctx context.Context, rec favorites.Record) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (email, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`, rec.Email, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return favorites.ErrAlreadyExists
	}
	for _, id := range rec.PetIDs {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO favorite_pets (email, pet_id, added_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, rec.Email, id, rec.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *FavoritesRepo) AddPet(ctx context.Context, email, petID string, at time.Time) (favorites.Record, error) {
	return r.mutate(ctx, email, at, `
		INSERT INTO favorite_pets (email, pet_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email, pet_id) DO NOTHING
	`, email, petID, at)
}

func (r *FavoritesRepo) RemovePet(ctx context.Context, email, petID string, at time.Time) (favorites.Record, error) {
	return r.mutate(ctx, email, at, `
		DELETE FROM favorite_pets WHERE email = $1 AND pet_id = $2
	`, email, petID)
}

// mutate bloquea la fila del usuario, aplica stmt y solo toca updated_at si
// stmt cambió algo.
func (r *FavoritesRepo) mutate(ctx context.Context, email string, at time.Time, stmt string, args ...any) (favorites.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return favorites.Record{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT email FROM favorites WHERE email = $1 FOR UPDATE`, email).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return favorites.Record{}, favorites.ErrNotFound
	}
	if err != nil {
		return favorites.Record{}, err
	}

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return favorites.Record{}, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE favorites SET updated_at = $2 WHERE email = $1`, email, at); err != nil {
			return favorites.Record{}, err
		}
	}

	rec, err := r.get(ctx, tx, email)
	if err != nil {
		return favorites.Record{}, err
	}
	return rec, tx.Commit()
}
