package threads

import "context"

type Repository interface {
	// FindByIDs devuelve los threads existentes entre ids (orden libre).
	FindByIDs(ctx context.Context, ids []string) ([]Thread, error)

	// CreateIfAbsent crea t si no existe su id; si ya existe devuelve el guardado.
	// created=false cuando otro resolver ganó la carrera.
	CreateIfAbsent(ctx context.Context, t Thread) (stored Thread, created bool, err error)

	GetByID(ctx context.Context, id string) (Thread, error)
	ListByParticipant(ctx context.Context, email string) ([]Thread, error)

	// AppendMessage es idempotente por m.ID: si ya existe devuelve el guardado.
	// También actualiza Thread.UpdatedAt.
	AppendMessage(ctx context.Context, m Message) (stored Message, created bool, err error)

	// ListMessages ordena por CreatedAt y luego ID.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)

	// Subscribe abre una consulta en vivo de mensajes del thread. Lo primero que
	// entrega es el snapshot actual; luego uno completo por cada cambio.
	Subscribe(ctx context.Context, threadID string) (Subscription, error)
}

// Subscription es un listener en vivo. Close es idempotente y cierra Snapshots().
// Si el consumidor es lento solo ve el snapshot más reciente.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Close()
}
