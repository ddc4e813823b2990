package feedhub

import (
	"context"
	"sync"

	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/metrics"
)

// Sink implementa threads.Subscription. Guarda a lo sumo un snapshot sin leer:
// uno nuevo reemplaza al anterior.
type Sink struct {
	mu      sync.Mutex
	ch      chan threads.Snapshot
	closed  bool
	done    chan struct{}
	onClose func(*Sink)
}

var _ threads.Subscription = (*Sink)(nil)

// NewSink crea un sink suelto; onClose (opcional) se llama una vez al cerrar.
func NewSink(onClose func(*Sink)) *Sink {
	metrics.SubscriptionOpened()
	return &Sink{
		ch:      make(chan threads.Snapshot, 1),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (s *Sink) Snapshots() <-chan threads.Snapshot { return s.ch }

// Done se cierra junto con el sink.
func (s *Sink) Done() <-chan struct{} { return s.done }

// Deliver no bloquea nunca. Devuelve false si el sink ya está cerrado.
func (s *Sink) Deliver(snap threads.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for {
		select {
		case s.ch <- snap:
			return true
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	s.mu.Unlock()

	metrics.SubscriptionClosed()
	if s.onClose != nil {
		s.onClose(s)
	}
}

// CloseOnDone cierra el sink cuando ctx termina.
func (s *Sink) CloseOnDone(ctx context.Context) {
	if ctx.Done() == nil {
		return
	}
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
}
