package postgres

import (
	"context"
	"time"

	"pet-adoption/internal/adapters/storage/feedhub"
	"pet-adoption/internal/platform/logger"

	"github.com/lib/pq"
)

// NotifyChannel es el canal que dispara el trigger de thread_messages.
const NotifyChannel = "thread_messages"

// Listen escucha NOTIFY de mensajes nuevos (payload = thread id) y refresca el
// hub. Bloquea hasta que ctx termina. Tras una reconexión refresca todo, porque
// las notificaciones del corte se pierden.
func Listen(ctx context.Context, dsn string, hub *feedhub.Hub, log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	l := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			log.Warn("postgres listener disconnected", map[string]any{"err": err})
		case pq.ListenerEventReconnected:
			log.Info("postgres listener reconnected", nil)
		}
	})
	defer l.Close()

	if err := l.Listen(NotifyChannel); err != nil {
		return err
	}
	log.Info("postgres listener started", map[string]any{"channel": NotifyChannel})

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-l.Notify:
			if n == nil {
				hub.NotifyAll(ctx)
				continue
			}
			hub.Notify(ctx, n.Extra)
		case <-ping.C:
			go func() { _ = l.Ping() }()
		}
	}
}
