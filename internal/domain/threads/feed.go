package threads

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFeedClosed     = errors.New("feed closed")
	ErrUnknownMessage = errors.New("unknown client message")
)

// FeedBackend es lo que el Feed necesita del servidor: suscripción en vivo y envío.
type FeedBackend interface {
	Subscribe(ctx context.Context, threadID string) (Subscription, error)
	Send(ctx context.Context, threadID string, in SendInput) (Message, error)
}

// ServiceBackend conecta un Feed con el Service en proceso, como un usuario.
type ServiceBackend struct {
	Svc  *Service
	Self Participant
}

func (b ServiceBackend) Subscribe(ctx context.Context, threadID string) (Subscription, error) {
	return b.Svc.OpenThreadFeed(ctx, threadID, b.Self.Email)
}

func (b ServiceBackend) Send(ctx context.Context, threadID string, in SendInput) (Message, error) {
	return b.Svc.SendMessage(ctx, threadID, b.Self, in)
}

type EntryState string

const (
	StateSent    EntryState = "sent"
	StatePending EntryState = "pending"
	StateFailed  EntryState = "failed"
)

// Entry es una línea de la conversación tal como la ve el usuario.
type Entry struct {
	Message
	State EntryState
	Err   error
}

type localEntry struct {
	msg   Message
	state EntryState
	err   error
}

// Feed es el modelo de conversación del lado cliente: mezcla el último snapshot
// del servidor con los mensajes optimistas propios que todavía no aparecen en él.
// Los optimistas se reconcilian por ClientID: cuando el snapshot trae el mismo
// ClientID el local se descarta (se reemplaza, nunca se duplica).
//
// Un Feed cero o nil se puede cerrar sin efecto.
type Feed struct {
	backend  FeedBackend
	threadID string
	self     Participant
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	confirmed []Message
	local     []*localEntry
	sub       Subscription
	updates   chan []Entry
	closed    bool
	done      chan struct{}
}

// OpenFeed se suscribe al thread y arranca a consumir snapshots.
func OpenFeed(ctx context.Context, backend FeedBackend, threadID string, self Participant) (*Feed, error) {
	if backend == nil || strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidInput
	}
	sub, err := backend.Subscribe(ctx, threadID)
	if err != nil {
		return nil, err
	}

	f := &Feed{
		backend:  backend,
		threadID: threadID,
		self:     self.normalized(),
		now:      time.Now,
		newID:    uuid.NewString,
		sub:      sub,
		updates:  make(chan []Entry, 1),
		done:     make(chan struct{}),
	}
	go f.pump()
	return f, nil
}

func (f *Feed) pump() {
	defer close(f.done)
	for snap := range f.sub.Snapshots() {
		f.apply(snap)
	}
}

func (f *Feed) apply(snap Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	f.confirmed = snap.Messages
	seen := make(map[string]struct{}, len(snap.Messages))
	for _, m := range snap.Messages {
		if m.ClientID != "" {
			seen[m.ClientID] = struct{}{}
		}
	}
	kept := f.local[:0]
	for _, e := range f.local {
		if _, ok := seen[e.msg.ClientID]; ok {
			continue
		}
		kept = append(kept, e)
	}
	f.local = kept

	f.publishLocked()
}

// Messages devuelve la vista actual (confirmados + optimistas pendientes/fallidos).
func (f *Feed) Messages() []Entry {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Updates entrega la vista cada vez que cambia. Un lector lento solo ve la última.
// Se cierra con Close.
func (f *Feed) Updates() <-chan []Entry {
	if f == nil {
		return nil
	}
	return f.updates
}

// Send agrega el mensaje de forma optimista y lo envía. Si el envío falla
// la entrada queda en StateFailed (para Retry o Discard) y se devuelve el error.
func (f *Feed) Send(ctx context.Context, body string) (clientID string, err error) {
	if f == nil {
		return "", ErrFeedClosed
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrInvalidInput
	}

	f.mu.Lock()
	if f.closed || f.backend == nil {
		f.mu.Unlock()
		return "", ErrFeedClosed
	}
	clientID = f.newID()
	f.local = append(f.local, &localEntry{
		msg: Message{
			ID:        MessageID(f.threadID, clientID),
			ThreadID:  f.threadID,
			ClientID:  clientID,
			Sender:    f.self,
			Body:      body,
			CreatedAt: f.now().UTC(),
		},
		state: StatePending,
	})
	f.publishLocked()
	f.mu.Unlock()

	return clientID, f.deliver(ctx, clientID)
}

// Retry reenvía un mensaje fallido con el mismo ClientID.
func (f *Feed) Retry(ctx context.Context, clientID string) error {
	if f == nil {
		return ErrFeedClosed
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	e := f.findLocked(clientID)
	if e == nil {
		f.mu.Unlock()
		return ErrUnknownMessage
	}
	if e.state != StateFailed {
		f.mu.Unlock()
		return nil
	}
	e.state, e.err = StatePending, nil
	f.publishLocked()
	f.mu.Unlock()

	return f.deliver(ctx, clientID)
}

// Discard quita un mensaje optimista que no fue confirmado (rollback).
func (f *Feed) Discard(clientID string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, e := range f.local {
		if e.msg.ClientID != clientID {
			continue
		}
		if e.state == StateSent {
			return false
		}
		f.local = append(f.local[:i], f.local[i+1:]...)
		if !f.closed {
			f.publishLocked()
		}
		return true
	}
	return false
}

// Close libera la suscripción. Es idempotente.
func (f *Feed) Close() {
	if f == nil {
		return
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.updates != nil {
		close(f.updates)
	}
	sub := f.sub
	f.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (f *Feed) deliver(ctx context.Context, clientID string) error {
	f.mu.Lock()
	e := f.findLocked(clientID)
	if e == nil {
		f.mu.Unlock()
		return ErrUnknownMessage
	}
	in := SendInput{ClientID: clientID, Body: e.msg.Body}
	f.mu.Unlock()

	m, err := f.backend.Send(ctx, f.threadID, in)

	f.mu.Lock()
	defer f.mu.Unlock()

	// Puede haber sido reconciliado por un snapshot o descartado mientras tanto.
	e = f.findLocked(clientID)
	if e != nil {
		if err != nil {
			e.state, e.err = StateFailed, err
		} else {
			e.msg, e.state = m, StateSent
		}
		if !f.closed {
			f.publishLocked()
		}
	}
	return err
}

func (f *Feed) findLocked(clientID string) *localEntry {
	for _, e := range f.local {
		if e.msg.ClientID == clientID {
			return e
		}
	}
	return nil
}

func (f *Feed) viewLocked() []Entry {
	out := make([]Entry, 0, len(f.confirmed)+len(f.local))
	for _, m := range f.confirmed {
		out = append(out, Entry{Message: m, State: StateSent})
	}
	for _, e := range f.local {
		out = append(out, Entry{Message: e.msg, State: e.state, Err: e.err})
	}
	return out
}

// publishLocked reemplaza la vista pendiente en updates si nadie la leyó.
func (f *Feed) publishLocked() {
	if f.updates == nil {
		return
	}
	view := f.viewLocked()
	for {
		select {
		case f.updates <- view:
			return
		default:
		}
		select {
		case <-f.updates:
		default:
		}
	}
}
