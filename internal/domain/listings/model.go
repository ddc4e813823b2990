package listings

import (
	"strings"
	"time"

	"pet-adoption/internal/platform/richtext"
)

// Sex del animal publicado.
// @Enum Male, Female
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// ParseSex acepta cualquier capitalización.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return SexMale
	case "female":
		return SexFemale
	default:
		return Sex(strings.TrimSpace(s))
	}
}

// Owner es el snapshot del usuario que publicó.
type Owner struct {
	Email     string
	Name      string
	AvatarURL string
}

// Post es una mascota publicada en adopción.
type Post struct {
	ID       string
	Name     string
	Category string
	Breed    string
	Age      float64 // años
	Sex      Sex
	Weight   float64 // kg
	Address  string
	About    string // markdown liviano
	ImageURL string

	Owner Owner

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AboutHTML renderiza About a HTML seguro.
func (p Post) AboutHTML() string {
	return richtext.MarkdownHTML(p.About)
}
