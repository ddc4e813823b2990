package listings

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo como en el JSON de la API.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError indica un campo inválido y la regla que falló.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lista todos los campos inválidos de un formulario.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Rule+")")
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (e *ValidationError) add(field, rule string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule})
}

// form es lo que se valida tanto en alta como en edición (estado final).
type form struct {
	Name     string  `json:"name" validate:"required,max=80"`
	Category string  `json:"category" validate:"required,max=40"`
	Breed    string  `json:"breed" validate:"required,max=80"`
	Age      float64 `json:"age" validate:"gt=0,lte=40"`
	Sex      Sex     `json:"sex" validate:"required,oneof=Male Female"`
	Weight   float64 `json:"weight" validate:"gt=0,lte=200"`
	Address  string  `json:"address" validate:"required,max=200"`
	About    string  `json:"about" validate:"required,max=2000"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

// check valida f y exige imagen (URL o bytes a subir).
func (f form) check(hasImageUpload bool) error {
	verr := &ValidationError{}

	if err := validate.Struct(f); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		for _, fe := range ves {
			verr.add(fe.Field(), fe.Tag())
		}
	}
	if f.ImageURL == "" && !hasImageUpload {
		verr.add("image", "required")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	sort.SliceStable(verr.Fields, func(i, j int) bool { return verr.Fields[i].Field < verr.Fields[j].Field })
	return verr
}
