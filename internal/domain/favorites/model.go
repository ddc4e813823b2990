package favorites

import "time"

// Record son los favoritos de un usuario (uno por email).
type Record struct {
	Email  string
	PetIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Record) Has(petID string) bool {
	for _, id := range r.PetIDs {
		if id == petID {
			return true
		}
	}
	return false
}
