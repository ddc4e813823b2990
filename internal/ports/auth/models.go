package auth

import "strings"

// Claims representa la identidad extraída del token.
// Email es el identificador estable que usan los módulos de dominio.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	AvatarURL string
}

// NormalizedEmail devuelve el email en minúsculas y sin espacios.
func (c Claims) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}
