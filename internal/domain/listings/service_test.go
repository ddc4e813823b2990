package listings

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"pet-adoption/internal/ports/images"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID   map[string]Post
	writes int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Post{}}
}

func (r *testRepo) Create(ctx context.Context, p Post) error {
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.writes++
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Post) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.writes++
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Post, error) {
	p, ok := r.byID[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) list(keep func(Post) bool) []Post {
	out := make([]Post, 0)
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *testRepo) ListByCategory(ctx context.Context, category string) ([]Post, error) {
	return r.list(func(p Post) bool { return category == "" || p.Category == category }), nil
}

func (r *testRepo) ListByOwner(ctx context.Context, email string) ([]Post, error) {
	return r.list(func(p Post) bool { return p.Owner.Email == email }), nil
}

func (r *testRepo) ListByIDs(ctx context.Context, ids []string) ([]Post, error) {
	out := make([]Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUploader struct {
	calls int
	err   error
}

func (u *fakeUploader) Upload(ctx context.Context, in images.Upload) (images.Result, error) {
	u.calls++
	if u.err != nil {
		return images.Result{}, u.err
	}
	return images.Result{URL: "https://cdn.test/" + in.Filename}, nil
}

type fakeCategories map[string]bool

func (c fakeCategories) Canonical(ctx context.Context, name string) (string, bool, error) {
	for k := range c {
		if strings.EqualFold(k, name) {
			return k, true, nil
		}
	}
	return "", false, nil
}

func newTestService(up *fakeUploader) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, up, fakeCategories{"Dogs": true, "Cats": true})
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	svc.newSuffix = func() string { return "abcd1234" }
	return svc, repo
}

var owner = Owner{Email: "Ana@X.com", Name: "Ana", AvatarURL: "https://img/a.png"}

func validInput() CreateInput {
	return CreateInput{
		Name:     "Milo",
		Category: "dogs",
		Breed:    "Mestizo",
		Age:      2,
		Sex:      "male",
		Weight:   12.5,
		Address:  "Calle 1",
		About:    "Muy **juguetón**",
		ImageURL: "https://cdn.test/milo.png",
	}
}

func TestCreate_ValidPost(t *testing.T) {
	svc, _ := newTestService(&fakeUploader{})

	p, err := svc.Create(context.Background(), owner, validInput())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID != "1735787045000-abcd1234" {
		t.Fatalf("unexpected id %q", p.ID)
	}
	if p.Sex != SexMale {
		t.Fatalf("expected Male, got %q", p.Sex)
	}
	if p.Category != "Dogs" {
		t.Fatalf("expected canonical category, got %q", p.Category)
	}
	if p.Owner.Email != "ana@x.com" {
		t.Fatalf("expected normalized owner email, got %q", p.Owner.Email)
	}
	if !strings.Contains(p.AboutHTML(), "<strong>juguetón</strong>") {
		t.Fatalf("unexpected about html %q", p.AboutHTML())
	}
}

func TestCreate_KeepsAngleBracketsInText(t *testing.T) {
	svc, _ := newTestService(&fakeUploader{})
	in := validInput()
	in.Name = "<Rex>"
	in.About = "my dog is <Rex> the best, if a<b then ok"

	p, err := svc.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Name != "<Rex>" || p.About != in.About {
		t.Fatalf("expected text stored as typed, got name=%q about=%q", p.Name, p.About)
	}
	if !strings.Contains(p.AboutHTML(), "&lt;Rex&gt;") {
		t.Fatalf("expected escaped brackets in about html, got %q", p.AboutHTML())
	}
}

func TestCreate_MissingFieldsRejectedBeforeUploadOrWrite(t *testing.T) {
	up := &fakeUploader{}
	svc, repo := newTestService(up)

	in := validInput()
	in.Name = "  "
	in.Age = 0
	in.Sex = "other"
	in.ImageURL = ""
	in.Image = &images.Upload{Filename: "milo.png", Body: strings.NewReader("x")}

	_, err := svc.Create(context.Background(), owner, in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput in chain")
	}
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Rule
	}
	if got["name"] != "required" || got["age"] != "gt" || got["sex"] != "oneof" {
		t.Fatalf("unexpected fields %+v", verr.Fields)
	}
	if up.calls != 0 || repo.writes != 0 {
		t.Fatalf("expected no upload and no write, got uploads=%d writes=%d", up.calls, repo.writes)
	}
}

func TestCreate_RequiresImage(t *testing.T) {
	svc, _ := newTestService(&fakeUploader{})
	in := validInput()
	in.ImageURL = ""

	_, err := svc.Create(context.Background(), owner, in)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "image" {
		t.Fatalf("expected image required, got %v", err)
	}
}

func TestCreate_UnknownCategory(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newTestService(up)
	in := validInput()
	in.Category = "Dragons"
	in.Image = &images.Upload{Filename: "x.png", Body: strings.NewReader("x")}

	_, err := svc.Create(context.Background(), owner, in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if up.calls != 0 {
		t.Fatalf("category check must happen before upload")
	}
}

func TestCreate_UploadFailureWritesNothing(t *testing.T) {
	up := &fakeUploader{err: &images.UploadError{Message: "preset not found", Code: 400}}
	svc, repo := newTestService(up)

	in := validInput()
	in.ImageURL = ""
	in.Image = &images.Upload{Filename: "milo.png", Body: strings.NewReader("x")}

	_, err := svc.Create(context.Background(), owner, in)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	var ue *images.UploadError
	if !errors.As(err, &ue) || ue.Message != "preset not found" {
		t.Fatalf("expected wrapped UploadError, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected no write")
	}
}

func TestCreate_UploadsImage(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newTestService(up)

	in := validInput()
	in.ImageURL = ""
	in.Image = &images.Upload{Filename: "milo.png", Body: strings.NewReader("x")}

	p, err := svc.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ImageURL != "https://cdn.test/milo.png" || up.calls != 1 {
		t.Fatalf("unexpected image url %q calls=%d", p.ImageURL, up.calls)
	}
}

func TestUpdate_ReflectsExactlySubmittedFields(t *testing.T) {
	svc, _ := newTestService(&fakeUploader{})
	p, _ := svc.Create(context.Background(), owner, validInput())

	name := "Milo II"
	age := 3.5
	updated, err := svc.Update(context.Background(), p.ID, "ana@x.com", UpdateInput{Name: &name, Age: &age})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, _ := svc.GetByID(context.Background(), p.ID)
	if got.Name != "Milo II" || got.Age != 3.5 {
		t.Fatalf("fields not applied: %+v", got)
	}
	if got.Breed != p.Breed || got.Weight != p.Weight || got.About != p.About || got.ImageURL != p.ImageURL {
		t.Fatalf("unspecified fields changed: %+v", got)
	}
	if updated.UpdatedAt != got.UpdatedAt {
		t.Fatalf("returned post differs from stored")
	}
}

func TestUpdate_OwnershipAndValidation(t *testing.T) {
	up := &fakeUploader{}
	svc, repo := newTestService(up)
	p, _ := svc.Create(context.Background(), owner, validInput())
	writes := repo.writes

	name := "Hack"
	if _, err := svc.Update(context.Background(), p.ID, "mallory@x.com", UpdateInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	neg := -1.0
	img := &images.Upload{Filename: "new.png", Body: strings.NewReader("x")}
	if _, err := svc.Update(context.Background(), p.ID, "ana@x.com", UpdateInput{Age: &neg, Image: img}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative age, got %v", err)
	}
	if up.calls != 0 || repo.writes != writes {
		t.Fatalf("rejected edit must not upload or write")
	}

	if _, err := svc.Update(context.Background(), "missing", "ana@x.com", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdate_ImageUploadFailureAborts(t *testing.T) {
	up := &fakeUploader{}
	svc, repo := newTestService(up)
	p, _ := svc.Create(context.Background(), owner, validInput())
	writes := repo.writes

	up.err = errors.New("network down")
	name := "Otro"
	_, err := svc.Update(context.Background(), p.ID, "ana@x.com", UpdateInput{
		Name:  &name,
		Image: &images.Upload{Filename: "n.png", Body: strings.NewReader("x")},
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	got, _ := svc.GetByID(context.Background(), p.ID)
	if got.Name != "Milo" || repo.writes != writes {
		t.Fatalf("post must stay untouched")
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, _ := newTestService(&fakeUploader{})
	p, _ := svc.Create(context.Background(), owner, validInput())

	if err := svc.Delete(context.Background(), p.ID, "bob@y.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID, "ANA@x.com"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted")
	}
}

func TestUploadImage_NoBackend(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)
	_, err := svc.UploadImage(context.Background(), images.Upload{Body: strings.NewReader("x")})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
}
