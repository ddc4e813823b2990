package categories

// Category agrupa publicaciones (Dogs, Cats, ...).
type Category struct {
	Name     string
	ImageURL string
	Position int
}

// Slider es un banner de la pantalla principal.
type Slider struct {
	Name     string
	ImageURL string
	Position int
}

// Defaults son las categorías con las que arranca un store vacío.
func Defaults() []Category {
	return []Category{
		{Name: "Dogs", Position: 1},
		{Name: "Cats", Position: 2},
		{Name: "Birds", Position: 3},
		{Name: "Fish", Position: 4},
	}
}
