package threads

import (
	"strings"
	"time"
)

// DisplayLayout es el formato de fecha que muestran los clientes (MM-DD-YYYY HH:mm:ss).
const DisplayLayout = "01-02-2006 15:04:05"

// DefaultTitle se usa cuando no hay otro participante que nombrar.
const DefaultTitle = "Chat"

// MaxBodyRunes limita el largo de un mensaje.
const MaxBodyRunes = 2000

// Participant es el snapshot de identidad guardado en el thread.
type Participant struct {
	Email     string
	Name      string
	AvatarURL string
}

func (p Participant) normalized() Participant {
	return Participant{
		Email:     normalizeEmail(p.Email),
		Name:      strings.TrimSpace(p.Name),
		AvatarURL: strings.TrimSpace(p.AvatarURL),
	}
}

// Thread es la conversación 1:1 entre dos usuarios.
// Emails es la lista denormalizada para consultas "threads donde participo".
type Thread struct {
	ID           string
	Participants []Participant
	Emails       []string

	CreatedAt time.Time
	UpdatedAt time.Time // se mueve con cada mensaje (orden del inbox)
}

func (t Thread) HasParticipant(email string) bool {
	email = normalizeEmail(email)
	for _, e := range t.Emails {
		if normalizeEmail(e) == email {
			return true
		}
	}
	return false
}

// Other devuelve el participante que no es viewer.
func (t Thread) Other(viewer string) (Participant, bool) {
	viewer = normalizeEmail(viewer)
	for _, p := range t.Participants {
		if normalizeEmail(p.Email) != viewer {
			return p, true
		}
	}
	return Participant{}, false
}

// Message es inmutable una vez guardado.
type Message struct {
	ID       string
	ThreadID string
	ClientID string

	Sender Participant
	Body   string

	CreatedAt time.Time
}

func (m Message) DisplayTime() string {
	return m.CreatedAt.Format(DisplayLayout)
}

// Snapshot es la lista completa y ordenada de mensajes de un thread en un instante.
type Snapshot struct {
	ThreadID string
	Messages []Message
	At       time.Time
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
