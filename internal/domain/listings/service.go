package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/platform/richtext"
	"pet-adoption/internal/ports/images"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUploadFailed = errors.New("image upload failed")
)

// CategoryChecker valida que la categoría exista y devuelve su nombre canónico
// (lo implementa categories.Service).
type CategoryChecker interface {
	Canonical(ctx context.Context, name string) (string, bool, error)
}

type Service struct {
	repo       Repository
	uploader   images.Uploader // puede ser nil: solo se aceptan image_url
	categories CategoryChecker // puede ser nil
	now        func() time.Time
	newSuffix  func() string
}

func NewService(repo Repository, uploader images.Uploader, categories CategoryChecker) *Service {
	return &Service{
		repo:       repo,
		uploader:   uploader,
		categories: categories,
		now:        time.Now,
		newSuffix:  func() string { return uuid.NewString()[:8] },
	}
}

type CreateInput struct {
	Name     string
	Category string
	Breed    string
	Age      float64
	Sex      string
	Weight   float64
	Address  string
	About    string

	// Una de las dos: URL ya alojada o bytes a subir.
	ImageURL string
	Image    *images.Upload
}

// Create valida todo antes de cualquier llamada de red; si la subida de la
// imagen falla no se escribe nada.
func (s *Service) Create(ctx context.Context, owner Owner, in CreateInput) (Post, error) {
	owner.Email = strings.ToLower(strings.TrimSpace(owner.Email))
	if owner.Email == "" {
		return Post{}, ErrInvalidInput
	}

	f := form{
		Name:     richtext.PlainText(in.Name),
		Category: richtext.PlainText(in.Category),
		Breed:    richtext.PlainText(in.Breed),
		Age:      in.Age,
		Sex:      ParseSex(in.Sex),
		Weight:   in.Weight,
		Address:  richtext.PlainText(in.Address),
		About:    richtext.PlainText(in.About),
		ImageURL: strings.TrimSpace(in.ImageURL),
	}
	if err := f.check(in.Image != nil); err != nil {
		return Post{}, err
	}
	category, err := s.checkCategory(ctx, f.Category)
	if err != nil {
		return Post{}, err
	}
	f.Category = category

	imageURL := f.ImageURL
	if in.Image != nil {
		url, err := s.upload(ctx, *in.Image)
		if err != nil {
			return Post{}, err
		}
		imageURL = url
	}

	now := s.now()
	p := Post{
		ID:       s.newID(now),
		Name:     f.Name,
		Category: f.Category,
		Breed:    f.Breed,
		Age:      f.Age,
		Sex:      f.Sex,
		Weight:   f.Weight,
		Address:  f.Address,
		About:    f.About,
		ImageURL: imageURL,
		Owner: Owner{
			Email:     owner.Email,
			Name:      strings.TrimSpace(owner.Name),
			AvatarURL: strings.TrimSpace(owner.AvatarURL),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// newID: millis + sufijo corto; ordenable por fecha y sin choques en el mismo ms.
func (s *Service) newID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), s.newSuffix())
}

func (s *Service) GetByID(ctx context.Context, id string) (Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Post{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListByCategory con category vacío lista todas las publicaciones.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Post, error) {
	category = strings.TrimSpace(category)
	if category != "" && s.categories != nil {
		if c, ok, err := s.categories.Canonical(ctx, category); err == nil && ok {
			category = c
		}
	}
	return s.repo.ListByCategory(ctx, category)
}

func (s *Service) ListByOwner(ctx context.Context, ownerEmail string) ([]Post, error) {
	ownerEmail = strings.ToLower(strings.TrimSpace(ownerEmail))
	if ownerEmail == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerEmail)
}

func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Post, error) {
	if len(ids) == 0 {
		return []Post{}, nil
	}
	return s.repo.ListByIDs(ctx, ids)
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name     *string
	Category *string
	Breed    *string
	Age      *float64
	Sex      *string
	Weight   *float64
	Address  *string
	About    *string
	ImageURL *string

	Image *images.Upload
}

// Update aplica PATCH. Solo el dueño puede editar. Una imagen nueva se sube
// primero y si falla no se escribe nada.
func (s *Service) Update(ctx context.Context, id, actorEmail string, in UpdateInput) (Post, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if !sameEmail(current.Owner.Email, actorEmail) {
		return Post{}, ErrForbidden
	}

	f := form{
		Name:     current.Name,
		Category: current.Category,
		Breed:    current.Breed,
		Age:      current.Age,
		Sex:      current.Sex,
		Weight:   current.Weight,
		Address:  current.Address,
		About:    current.About,
		ImageURL: current.ImageURL,
	}
	if in.Name != nil {
		f.Name = richtext.PlainText(*in.Name)
	}
	if in.Category != nil {
		f.Category = richtext.PlainText(*in.Category)
	}
	if in.Breed != nil {
		f.Breed = richtext.PlainText(*in.Breed)
	}
	if in.Age != nil {
		f.Age = *in.Age
	}
	if in.Sex != nil {
		f.Sex = ParseSex(*in.Sex)
	}
	if in.Weight != nil {
		f.Weight = *in.Weight
	}
	if in.Address != nil {
		f.Address = richtext.PlainText(*in.Address)
	}
	if in.About != nil {
		f.About = richtext.PlainText(*in.About)
	}
	if in.ImageURL != nil {
		f.ImageURL = strings.TrimSpace(*in.ImageURL)
	}

	if err := f.check(in.Image != nil); err != nil {
		return Post{}, err
	}
	if f.Category != current.Category {
		category, err := s.checkCategory(ctx, f.Category)
		if err != nil {
			return Post{}, err
		}
		f.Category = category
	}

	if in.Image != nil {
		url, err := s.upload(ctx, *in.Image)
		if err != nil {
			return Post{}, err
		}
		f.ImageURL = url
	}

	updated := current
	updated.Name = f.Name
	updated.Category = f.Category
	updated.Breed = f.Breed
	updated.Age = f.Age
	updated.Sex = f.Sex
	updated.Weight = f.Weight
	updated.Address = f.Address
	updated.About = f.About
	updated.ImageURL = f.ImageURL
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Post{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, actorEmail string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sameEmail(current.Owner.Email, actorEmail) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, current.ID)
}

// UploadImage sube una imagen suelta (endpoint /images).
func (s *Service) UploadImage(ctx context.Context, in images.Upload) (images.Result, error) {
	if s.uploader == nil {
		return images.Result{}, fmt.Errorf("%w: no image backend configured", ErrUploadFailed)
	}
	res, err := s.uploader.Upload(ctx, in)
	if err != nil {
		return images.Result{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return res, nil
}

func (s *Service) upload(ctx context.Context, in images.Upload) (string, error) {
	res, err := s.UploadImage(ctx, in)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

func (s *Service) checkCategory(ctx context.Context, name string) (string, error) {
	if s.categories == nil {
		return name, nil
	}
	canonical, ok, err := s.categories.Canonical(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ValidationError{Fields: []FieldError{{Field: "category", Rule: "exists"}}}
	}
	return canonical, nil
}

func sameEmail(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	return a != "" && a == strings.ToLower(strings.TrimSpace(b))
}
