package fsstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"pet-adoption/internal/domain/listings"

	"cloud.google.com/go/firestore"
)

type petDoc struct {
	ID        string    `firestore:"id"`
	Name      string    `firestore:"name"`
	Category  string    `firestore:"category"`
	Breed     string    `firestore:"breed"`
	Age       float64   `firestore:"age"`
	Sex       string    `firestore:"sex"`
	Weight    float64   `firestore:"weight"`
	Address   string    `firestore:"address"`
	About     string    `firestore:"about"`
	ImageURL  string    `firestore:"imageUrl"`
	Email     string    `firestore:"email"`
	UserName  string    `firestore:"username"`
	UserImage string    `firestore:"userImage"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func toPetDoc(p listings.Post) petDoc {
	return petDoc{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Breed:     p.Breed,
		Age:       p.Age,
		Sex:       string(p.Sex),
		Weight:    p.Weight,
		Address:   p.Address,
		About:     p.About,
		ImageURL:  p.ImageURL,
		Email:     p.Owner.Email,
		UserName:  p.Owner.Name,
		UserImage: p.Owner.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d petDoc) post() listings.Post {
	return listings.Post{
		ID:       d.ID,
		Name:     d.Name,
		Category: d.Category,
		Breed:    d.Breed,
		Age:      d.Age,
		Sex:      listings.Sex(d.Sex),
		Weight:   d.Weight,
		Address:  d.Address,
		About:    d.About,
		ImageURL: d.ImageURL,
		Owner: listings.Owner{
			Email:     d.Email,
			Name:      d.UserName,
			AvatarURL: d.UserImage,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type ListingsRepo struct {
	c *firestore.Client
}

func NewListingsRepo(c *firestore.Client) *ListingsRepo {
	return &ListingsRepo{c: c}
}

func (r *ListingsRepo) doc(id string) *firestore.DocumentRef {
	return r.c.Collection(colPets).Doc(id)
}

func (r *ListingsRepo) Create(ctx context.Context, p listings.Post) error {
	_, err := r.doc(p.ID).Create(ctx, toPetDoc(p))
	return err
}

func (r *ListingsRepo) Update(ctx context.Context, p listings.Post) error {
	ref := r.doc(p.ID)
	return r.c.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return listings.ErrNotFound
			}
			return err
		}
		return tx.Set(ref, toPetDoc(p))
	})
}

func (r *ListingsRepo) Delete(ctx context.Context, id string) error {
	ref := r.doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return listings.ErrNotFound
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *ListingsRepo) GetByID(ctx context.Context, id string) (listings.Post, error) {
	if strings.TrimSpace(id) == "" {
		return listings.Post{}, listings.ErrNotFound
	}
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return listings.Post{}, listings.ErrNotFound
		}
		return listings.Post{}, err
	}
	var d petDoc
	if err := snap.DataTo(&d); err != nil {
		return listings.Post{}, err
	}
	return d.post(), nil
}

// ListByCategory ordena en memoria para no exigir un índice compuesto.
func (r *ListingsRepo) ListByCategory(ctx context.Context, category string) ([]listings.Post, error) {
	q := r.c.Collection(colPets).Query
	if category != "" {
		q = q.Where("category", "==", category)
	}
	return r.query(ctx, q)
}

func (r *ListingsRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]listings.Post, error) {
	return r.query(ctx, r.c.Collection(colPets).Where("email", "==", ownerEmail))
}

func (r *ListingsRepo) ListByIDs(ctx context.Context, ids []string) ([]listings.Post, error) {
	if len(ids) == 0 {
		return []listings.Post{}, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.doc(id))
	}
	snaps, err := r.c.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make([]listings.Post, 0, len(snaps))
	for _, s := range snaps {
		if !s.Exists() {
			continue
		}
		var d petDoc
		if err := s.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.post())
	}
	return out, nil
}

func (r *ListingsRepo) query(ctx context.Context, q firestore.Query) ([]listings.Post, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]listings.Post, 0, len(snaps))
	for _, s := range snaps {
		var d petDoc
		if err := s.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.post())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
