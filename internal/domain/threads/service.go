package threads

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/richtext"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("thread not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// CanonicalID arma el id de thread para un par de usuarios: emails normalizados,
// ordenados y unidos con "_". Es el mismo id desde cualquiera de los dos lados.
func CanonicalID(a, b string) (string, error) {
	a, b = normalizeEmail(a), normalizeEmail(b)
	if a == "" || b == "" {
		return "", fmt.Errorf("%w: both participants are required", ErrInvalidInput)
	}
	if a == b {
		return "", fmt.Errorf("%w: cannot open a thread with yourself", ErrInvalidInput)
	}
	if a > b {
		a, b = b, a
	}
	return a + "_" + b, nil
}

// candidateIDs: canónico primero, luego las formas históricas self_other y
// other_self, en minúsculas y con el casing original si difiere (chats
// creados por clientes viejos guardaban el email tal como venía).
func candidateIDs(self, other string) (canonical string, all []string, err error) {
	canonical, err = CanonicalID(self, other)
	if err != nil {
		return "", nil, err
	}
	rawSelf, rawOther := strings.TrimSpace(self), strings.TrimSpace(other)
	self, other = normalizeEmail(self), normalizeEmail(other)

	all = []string{canonical}
	seen := map[string]bool{canonical: true}
	for _, id := range []string{
		self + "_" + other, other + "_" + self,
		rawSelf + "_" + rawOther, rawOther + "_" + rawSelf,
	} {
		if !seen[id] {
			seen[id] = true
			all = append(all, id)
		}
	}
	return canonical, all, nil
}

// ResolveThread devuelve el thread entre self y other, creándolo si no existe.
// Threads con ids históricos se reutilizan. Si la búsqueda falla no se crea nada.
func (s *Service) ResolveThread(ctx context.Context, self, other Participant) (Thread, bool, error) {
	canonical, ids, err := candidateIDs(self.Email, other.Email)
	if err != nil {
		return Thread{}, false, err
	}
	self, other = self.normalized(), other.normalized()

	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return Thread{}, false, fmt.Errorf("resolve thread: lookup: %w", err)
	}
	if t, ok := pickCandidate(found, ids); ok {
		metrics.ThreadResolved(false)
		return t, false, nil
	}

	now := s.now()
	emails := []string{self.Email, other.Email}
	sort.Strings(emails)

	t, created, err := s.repo.CreateIfAbsent(ctx, Thread{
		ID:           canonical,
		Participants: []Participant{self, other},
		Emails:       emails,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Thread{}, false, fmt.Errorf("resolve thread: create: %w", err)
	}
	metrics.ThreadResolved(created)
	return t, created, nil
}

// pickCandidate respeta el orden de ids (canónico preferido).
func pickCandidate(found []Thread, ids []string) (Thread, bool) {
	byID := make(map[string]Thread, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			return t, true
		}
	}
	return Thread{}, false
}

func (s *Service) GetThread(ctx context.Context, id, viewer string) (Thread, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Thread{}, ErrNotFound
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	if !t.HasParticipant(viewer) {
		return Thread{}, ErrForbidden
	}
	return t, nil
}

// ListThreads es el inbox: threads donde participa email, más recientes primero.
func (s *Service) ListThreads(ctx context.Context, email string) ([]Thread, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.repo.ListByParticipant(ctx, email)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// Title es el nombre del otro participante, o "Chat" si el thread todavía
// no existe o viewer no participa (no se filtran nombres a terceros).
func (s *Service) Title(ctx context.Context, id, viewer string) string {
	t, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil || !t.HasParticipant(viewer) {
		return DefaultTitle
	}
	return TitleFor(t, viewer)
}

func TitleFor(t Thread, viewer string) string {
	other, ok := t.Other(viewer)
	if !ok {
		return DefaultTitle
	}
	if other.Name != "" {
		return other.Name
	}
	if other.Email != "" {
		return other.Email
	}
	return DefaultTitle
}

type SendInput struct {
	// ClientID lo genera el cliente por mensaje; reintentos con el mismo
	// ClientID no duplican.
	ClientID string
	Body     string
}

// MessageID es determinístico por (thread, clientID).
func MessageID(threadID, clientID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(threadID+"/"+clientID)).String()
}

func (s *Service) SendMessage(ctx context.Context, threadID string, sender Participant, in SendInput) (Message, error) {
	sender = sender.normalized()
	if sender.Email == "" {
		return Message{}, ErrInvalidInput
	}

	body := richtext.PlainText(in.Body)
	if body == "" {
		return Message{}, fmt.Errorf("%w: message body is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > MaxBodyRunes {
		return Message{}, fmt.Errorf("%w: message body exceeds %d characters", ErrInvalidInput, MaxBodyRunes)
	}

	t, err := s.GetThread(ctx, threadID, sender.Email)
	if err != nil {
		return Message{}, err
	}

	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}

	m, created, err := s.repo.AppendMessage(ctx, Message{
		ID:        MessageID(t.ID, clientID),
		ThreadID:  t.ID,
		ClientID:  clientID,
		Sender:    sender,
		Body:      body,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}
	if created {
		metrics.MessageSent()
	}
	return m, nil
}

func (s *Service) ListMessages(ctx context.Context, threadID, viewer string) ([]Message, error) {
	t, err := s.GetThread(ctx, threadID, viewer)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, t.ID)
}

// OpenThreadFeed abre el feed en vivo de un thread para un participante.
// El llamador debe cerrar la suscripción.
func (s *Service) OpenThreadFeed(ctx context.Context, threadID, viewer string) (Subscription, error) {
	t, err := s.GetThread(ctx, threadID, viewer)
	if err != nil {
		return nil, err
	}
	return s.repo.Subscribe(ctx, t.ID)
}

// SortMessages ordena por CreatedAt y luego ID (orden total y estable).
func SortMessages(ms []Message) {
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.Before(ms[j].CreatedAt)
		}
		return ms[i].ID < ms[j].ID
	})
}
