package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption/internal/domain/listings"
)

type ListingsRepo struct {
	db *sql.DB
}

func NewListingsRepo(db *sql.DB) *ListingsRepo {
	return &ListingsRepo{db: db}
}

const postColumns = `
	id, name, category, breed, age, sex, weight,
	address, about, image_url,
	owner_email, owner_name, owner_avatar_url,
	created_at, updated_at`

func (r *ListingsRepo) Create(ctx context.Context, p listings.Post) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_posts (`+postColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		p.ID,
		p.Name,
		p.Category,
		p.Breed,
		p.Age,
		string(p.Sex),
		p.Weight,
		p.Address,
		p.About,
		p.ImageURL,
		p.Owner.Email,
		p.Owner.Name,
		p.Owner.AvatarURL,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *ListingsRepo) Update(ctx context.Context, p listings.Post) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pet_posts
		SET
			name = $2,
			category = $3,
			breed = $4,
			age = $5,
			sex = $6,
			weight = $7,
			address = $8,
			about = $9,
			image_url = $10,
			updated_at = $11
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Category,
		p.Breed,
		p.Age,
		string(p.Sex),
		p.Weight,
		p.Address,
		p.About,
		p.ImageURL,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return listings.ErrNotFound
	}
	return nil
}

func (r *ListingsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pet_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return listings.ErrNotFound
	}
	return nil
}

func (r *ListingsRepo) GetByID(ctx context.Context, id string) (listings.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return listings.Post{}, listings.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM pet_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return listings.Post{}, listings.ErrNotFound
	}
	return p, err
}

func (r *ListingsRepo) ListByCategory(ctx context.Context, category string) ([]listings.Post, error) {
	if category == "" {
		return r.query(ctx, `SELECT `+postColumns+` FROM pet_posts ORDER BY created_at DESC, id DESC`)
	}
	return r.query(ctx, `
		SELECT `+postColumns+`
		FROM pet_posts
		WHERE category = $1
		ORDER BY created_at DESC, id DESC
	`, category)
}

func (r *ListingsRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]listings.Post, error) {
	return r.query(ctx, `
		SELECT `+postColumns+`
		FROM pet_posts
		WHERE owner_email = $1
		ORDER BY created_at DESC, id DESC
	`, strings.ToLower(ownerEmail))
}

// ListByIDs respeta el orden de ids.
func (r *ListingsRepo) ListByIDs(ctx context.Context, ids []string) ([]listings.Post, error) {
	if len(ids) == 0 {
		return []listings.Post{}, nil
	}
	items, err := r.query(ctx, `SELECT `+postColumns+` FROM pet_posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]listings.Post, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	out := make([]listings.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ListingsRepo) query(ctx context.Context, q string, args ...any) ([]listings.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]listings.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (listings.Post, error) {
	var (
		p   listings.Post
		sex string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Breed,
		&p.Age,
		&sex,
		&p.Weight,
		&p.Address,
		&p.About,
		&p.ImageURL,
		&p.Owner.Email,
		&p.Owner.Name,
		&p.Owner.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return listings.Post{}, err
	}
	p.Sex = listings.Sex(sex)
	return p, nil
}
