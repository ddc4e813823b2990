package favorites

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption/internal/domain/listings"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("favorites not found")
	ErrAlreadyExists = errors.New("favorites already exist")
)

// PostLookup resuelve ids de publicaciones (lo implementa listings.Service).
type PostLookup interface {
	ListByIDs(ctx context.Context, ids []string) ([]listings.Post, error)
}

type Service struct {
	repo  Repository
	posts PostLookup
	now   func() time.Time
}

func NewService(repo Repository, posts PostLookup) *Service {
	return &Service{
		repo:  repo,
		posts: posts,
		now:   time.Now,
	}
}

// Get devuelve los favoritos de email, creando un registro vacío la primera vez.
func (s *Service) Get(ctx context.Context, email string) (Record, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Record{}, ErrInvalidInput
	}

	rec, err := s.repo.Get(ctx, email)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	now := s.now()
	rec = Record{Email: email, PetIDs: []string{}, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, rec); err != nil {
		// Carrera con otro request: nos quedamos con lo que quedó guardado.
		if errors.Is(err, ErrAlreadyExists) {
			return s.repo.Get(ctx, email)
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Add(ctx context.Context, email, petID string) (Record, error) {
	email, petID = normalizeEmail(email), strings.TrimSpace(petID)
	if email == "" || petID == "" {
		return Record{}, ErrInvalidInput
	}
	if _, err := s.Get(ctx, email); err != nil {
		return Record{}, err
	}
	return s.repo.AddPet(ctx, email, petID, s.now())
}

func (s *Service) Remove(ctx context.Context, email, petID string) (Record, error) {
	email, petID = normalizeEmail(email), strings.TrimSpace(petID)
	if email == "" || petID == "" {
		return Record{}, ErrInvalidInput
	}
	if _, err := s.Get(ctx, email); err != nil {
		return Record{}, err
	}
	return s.repo.RemovePet(ctx, email, petID, s.now())
}

// Toggle agrega si no estaba y quita si estaba. Devuelve el estado nuevo.
func (s *Service) Toggle(ctx context.Context, email, petID string) (Record, bool, error) {
	rec, err := s.Get(ctx, email)
	if err != nil {
		return Record{}, false, err
	}
	petID = strings.TrimSpace(petID)
	if rec.Has(petID) {
		rec, err = s.Remove(ctx, email, petID)
		return rec, false, err
	}
	rec, err = s.Add(ctx, email, petID)
	return rec, err == nil, err
}

// ListPets resuelve los favoritos a publicaciones en el orden en que se marcaron.
// Las publicaciones que ya no existen se omiten.
func (s *Service) ListPets(ctx context.Context, email string) ([]listings.Post, error) {
	rec, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(rec.PetIDs) == 0 || s.posts == nil {
		return []listings.Post{}, nil
	}

	posts, err := s.posts.ListByIDs(ctx, rec.PetIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]listings.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]listings.Post, 0, len(posts))
	for _, id := range rec.PetIDs {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
