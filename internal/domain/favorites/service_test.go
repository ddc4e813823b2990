package favorites

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"pet-adoption/internal/domain/listings"
)

type testRepo struct {
	byEmail map[string]Record

	// raceOnCreate simula que otro request creó el registro justo antes.
	raceOnCreate bool
}

func newTestRepo() *testRepo {
	return &testRepo{byEmail: map[string]Record{}}
}

func (r *testRepo) Get(ctx context.Context, email string) (Record, error) {
	rec, ok := r.byEmail[email]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.PetIDs = append([]string(nil), rec.PetIDs...)
	return rec, nil
}

func (r *testRepo) Create(ctx context.Context, rec Record) error {
	if r.raceOnCreate {
		r.raceOnCreate = false
		r.byEmail[rec.Email] = Record{Email: rec.Email, PetIDs: []string{"from-other-request"}}
		return ErrAlreadyExists
	}
	if _, ok := r.byEmail[rec.Email]; ok {
		return ErrAlreadyExists
	}
	r.byEmail[rec.Email] = rec
	return nil
}

func (r *testRepo) AddPet(ctx context.Context, email, petID string, at time.Time) (Record, error) {
	rec, ok := r.byEmail[email]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !rec.Has(petID) {
		rec.PetIDs = append(rec.PetIDs, petID)
	}
	rec.UpdatedAt = at
	r.byEmail[email] = rec
	return rec, nil
}

func (r *testRepo) RemovePet(ctx context.Context, email, petID string, at time.Time) (Record, error) {
	rec, ok := r.byEmail[email]
	if !ok {
		return Record{}, ErrNotFound
	}
	kept := make([]string, 0, len(rec.PetIDs))
	for _, id := range rec.PetIDs {
		if id != petID {
			kept = append(kept, id)
		}
	}
	rec.PetIDs = kept
	rec.UpdatedAt = at
	r.byEmail[email] = rec
	return rec, nil
}

type testPosts map[string]listings.Post

func (p testPosts) ListByIDs(ctx context.Context, ids []string) ([]listings.Post, error) {
	out := []listings.Post{}
	for _, id := range ids {
		if post, ok := p[id]; ok {
			out = append(out, post)
		}
	}
	return out, nil
}

func TestGet_LazilyCreatesEmptyRecord(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	rec, err := svc.Get(context.Background(), " Ana@X.com ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Email != "ana@x.com" || len(rec.PetIDs) != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, ok := repo.byEmail["ana@x.com"]; !ok {
		t.Fatalf("expected record persisted")
	}
}

func TestGet_CreateRaceRereads(t *testing.T) {
	repo := newTestRepo()
	repo.raceOnCreate = true
	svc := NewService(repo, nil)

	rec, err := svc.Get(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(rec.PetIDs, []string{"from-other-request"}) {
		t.Fatalf("expected stored record, got %+v", rec)
	}
}

func TestAddRemove_Idempotent(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Add(ctx, "ana@x.com", "p1")
	rec, _ := svc.Add(ctx, "ana@x.com", "p1")
	if !reflect.DeepEqual(rec.PetIDs, []string{"p1"}) {
		t.Fatalf("expected single p1, got %v", rec.PetIDs)
	}

	rec, _ = svc.Remove(ctx, "ana@x.com", "missing")
	if !reflect.DeepEqual(rec.PetIDs, []string{"p1"}) {
		t.Fatalf("removing absent id must not change record, got %v", rec.PetIDs)
	}

	_, _ = svc.Remove(ctx, "ana@x.com", "p1")
	rec, _ = svc.Remove(ctx, "ana@x.com", "p1")
	if len(rec.PetIDs) != 0 {
		t.Fatalf("expected empty, got %v", rec.PetIDs)
	}

	if _, err := svc.Add(ctx, "", "p1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	_, on, err := svc.Toggle(ctx, "ana@x.com", "p1")
	if err != nil || !on {
		t.Fatalf("expected on, got %v %v", on, err)
	}
	rec, on, err := svc.Toggle(ctx, "ana@x.com", "p1")
	if err != nil || on || len(rec.PetIDs) != 0 {
		t.Fatalf("expected off, got %v %v %v", on, rec.PetIDs, err)
	}
}

func TestListPets_SkipsMissingAndKeepsOrder(t *testing.T) {
	posts := testPosts{
		"p1": {ID: "p1", Name: "Milo"},
		"p3": {ID: "p3", Name: "Luna"},
	}
	svc := NewService(newTestRepo(), posts)
	ctx := context.Background()

	for _, id := range []string{"p3", "p2", "p1"} {
		if _, err := svc.Add(ctx, "ana@x.com", id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	got, err := svc.ListPets(ctx, "ana@x.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p3" || got[1].ID != "p1" {
		t.Fatalf("unexpected posts %+v", got)
	}
}
