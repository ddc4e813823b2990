// Package feedhub reparte snapshots de mensajes a suscriptores en proceso.
// Lo usan los stores que no tienen consultas en vivo propias (memory, postgres).
package feedhub

import (
	"context"
	"sync"
	"time"

	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/logger"
)

// Loader lee el estado actual de un thread.
type Loader func(ctx context.Context, threadID string) ([]threads.Message, error)

type Hub struct {
	load Loader
	log  logger.Logger
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*threadLock
	subs  map[string]map[*Sink]struct{}
}

// threadLock vive solo mientras haya operaciones en curso sobre el thread.
type threadLock struct {
	sync.Mutex
	refs int
}

func New(load Loader, log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		load:  load,
		log:   log,
		now:   time.Now,
		locks: make(map[string]*threadLock),
		subs:  make(map[string]map[*Sink]struct{}),
	}
}

// lockThread serializa carga+entrega por thread: los snapshots llegan en orden.
func (h *Hub) lockThread(threadID string) *threadLock {
	h.mu.Lock()
	l, ok := h.locks[threadID]
	if !ok {
		l = &threadLock{}
		h.locks[threadID] = l
	}
	l.refs++
	h.mu.Unlock()

	l.Lock()
	return l
}

func (h *Hub) unlockThread(threadID string, l *threadLock) {
	l.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(h.locks, threadID)
	}
}

// Subscribe registra el sink antes de leer el estado inicial, así ningún
// cambio posterior se pierde. ctx acota la vida de la suscripción.
func (h *Hub) Subscribe(ctx context.Context, threadID string) (*Sink, error) {
	l := h.lockThread(threadID)
	defer h.unlockThread(threadID, l)

	s := NewSink(func(s *Sink) { h.remove(threadID, s) })

	h.mu.Lock()
	set, ok := h.subs[threadID]
	if !ok {
		set = make(map[*Sink]struct{})
		h.subs[threadID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	msgs, err := h.load(ctx, threadID)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Deliver(threads.Snapshot{ThreadID: threadID, Messages: msgs, At: h.now()})

	s.CloseOnDone(ctx)
	return s, nil
}

// Notify recarga el thread y entrega el snapshot a todos sus suscriptores.
func (h *Hub) Notify(ctx context.Context, threadID string) {
	if !h.hasSubscribers(threadID) {
		return
	}

	l := h.lockThread(threadID)
	defer h.unlockThread(threadID, l)

	msgs, err := h.load(ctx, threadID)
	if err != nil {
		h.log.Error("feedhub reload failed", map[string]any{"thread_id": threadID, "err": err})
		return
	}
	snap := threads.Snapshot{ThreadID: threadID, Messages: msgs, At: h.now()}

	for _, s := range h.sinks(threadID) {
		s.Deliver(snap)
	}
}

// NotifyAll recarga todos los threads con suscriptores
// (por ejemplo tras reconectar un listener y perder notificaciones).
func (h *Hub) NotifyAll(ctx context.Context) {
	h.mu.Lock()
	ids := make([]string, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Notify(ctx, id)
	}
}

// Count devuelve los suscriptores activos de un thread.
func (h *Hub) Count(threadID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[threadID])
}

func (h *Hub) hasSubscribers(threadID string) bool {
	return h.Count(threadID) > 0
}

func (h *Hub) sinks(threadID string) []*Sink {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Sink, 0, len(h.subs[threadID]))
	for s := range h.subs[threadID] {
		out = append(out, s)
	}
	return out
}

func (h *Hub) remove(threadID string, s *Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[threadID]
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, threadID)
	}
}
