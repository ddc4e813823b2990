package categories

import (
	"context"
	"sort"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	items, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Service) ListSliders(ctx context.Context) ([]Slider, error) {
	items, err := s.repo.ListSliders(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

// Exists compara sin distinguir mayúsculas.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	_, ok, err := s.Canonical(ctx, name)
	return ok, err
}

// Canonical devuelve el nombre guardado de la categoría ("dogs" => "Dogs").
func (s *Service) Canonical(ctx context.Context, name string) (string, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}
	items, err := s.repo.ListCategories(ctx)
	if err != nil {
		return "", false, err
	}
	for _, c := range items {
		if strings.EqualFold(c.Name, name) {
			return c.Name, true, nil
		}
	}
	return "", false, nil
}
