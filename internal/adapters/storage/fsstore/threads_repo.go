package fsstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pet-adoption/internal/adapters/storage/feedhub"
	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/logger"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type userDoc struct {
	Email    string `firestore:"email"`
	Name     string `firestore:"name"`
	ImageURL string `firestore:"imageUrl"`
}

type chatDoc struct {
	ID        string    `firestore:"id"`
	Users     []userDoc `firestore:"users"`
	UserIDs   []string  `firestore:"userIds"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type messageDoc struct {
	ID          string  `firestore:"id"`
	ClientID    string  `firestore:"clientId"`
	User        userDoc `firestore:"user"`
	Text        string  `firestore:"text"`
	CreatedAt   any     `firestore:"createdAt"` // timestamp, o string en mensajes viejos
	DisplayTime string  `firestore:"displayTime"`
}

func toChatDoc(t threads.Thread) chatDoc {
	users := make([]userDoc, 0, len(t.Participants))
	for _, p := range t.Participants {
		users = append(users, userDoc{Email: p.Email, Name: p.Name, ImageURL: p.AvatarURL})
	}
	return chatDoc{
		ID:        t.ID,
		Users:     users,
		UserIDs:   t.Emails,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (d chatDoc) thread() threads.Thread {
	ps := make([]threads.Participant, 0, len(d.Users))
	for _, u := range d.Users {
		ps = append(ps, threads.Participant{Email: u.Email, Name: u.Name, AvatarURL: u.ImageURL})
	}
	emails := append([]string{}, d.UserIDs...)
	sort.Strings(emails)
	return threads.Thread{
		ID:           d.ID,
		Participants: ps,
		Emails:       emails,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (d messageDoc) message(threadID string) threads.Message {
	return threads.Message{
		ID:        d.ID,
		ThreadID:  threadID,
		ClientID:  d.ClientID,
		Sender:    threads.Participant{Email: d.User.Email, Name: d.User.Name, AvatarURL: d.User.ImageURL},
		Body:      d.Text,
		CreatedAt: createdAt(d.CreatedAt),
	}
}

// createdAt acepta el timestamp nativo y el formato texto que guardaban los
// clientes viejos ("01-02-2006 15:04:05", hora UTC). Lo que no se puede leer
// queda en cero: el mensaje se muestra igual, al principio del chat.
func createdAt(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t != nil {
			return t.UTC()
		}
	case string:
		for _, layout := range []string{threads.DisplayLayout, time.RFC3339Nano} {
			if parsed, err := time.ParseInLocation(layout, strings.TrimSpace(t), time.UTC); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}

// ThreadsRepo usa las consultas en vivo de Firestore para el feed.
type ThreadsRepo struct {
	c   *firestore.Client
	log logger.Logger
}

func NewThreadsRepo(c *firestore.Client, log logger.Logger) *ThreadsRepo {
	if log == nil {
		log = logger.Nop()
	}
	return &ThreadsRepo{c: c, log: log}
}

func (r *ThreadsRepo) chat(id string) *firestore.DocumentRef {
	return r.c.Collection(colChats).Doc(id)
}

func (r *ThreadsRepo) messages(threadID string) *firestore.CollectionRef {
	return r.chat(threadID).Collection(colMessages)
}

func (r *ThreadsRepo) FindByIDs(ctx context.Context, ids []string) ([]threads.Thread, error) {
	if len(ids) == 0 {
		return []threads.Thread{}, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.chat(id))
	}
	snaps, err := r.c.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make([]threads.Thread, 0, len(snaps))
	for _, s := range snaps {
		if !s.Exists() {
			continue
		}
		var d chatDoc
		if err := s.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.thread())
	}
	return out, nil
}

// CreateIfAbsent usa Create: falla con AlreadyExists si otro resolver ganó.
func (r *ThreadsRepo) CreateIfAbsent(ctx context.Context, t threads.Thread) (threads.Thread, bool, error) {
	_, err := r.chat(t.ID).Create(ctx, toChatDoc(t))
	if err == nil {
		return t, true, nil
	}
	if !isAlreadyExists(err) {
		return threads.Thread{}, false, err
	}
	existing, err := r.GetByID(ctx, t.ID)
	return existing, false, err
}

func (r *ThreadsRepo) GetByID(ctx context.Context, id string) (threads.Thread, error) {
	snap, err := r.chat(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return threads.Thread{}, threads.ErrNotFound
		}
		return threads.Thread{}, err
	}
	var d chatDoc
	if err := snap.DataTo(&d); err != nil {
		return threads.Thread{}, err
	}
	return d.thread(), nil
}

func (r *ThreadsRepo) ListByParticipant(ctx context.Context, email string) ([]threads.Thread, error) {
	it := r.c.Collection(colChats).Where("userIds", "array-contains", email).Documents(ctx)
	defer it.Stop()

	out := make([]threads.Thread, 0)
	for {
		s, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var d chatDoc
		if err := s.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.thread())
	}
	return out, nil
}

// AppendMessage lee chat y mensaje y escribe en una sola transacción.
func (r *ThreadsRepo) AppendMessage(ctx context.Context, m threads.Message) (threads.Message, bool, error) {
	chatRef := r.chat(m.ThreadID)
	msgRef := r.messages(m.ThreadID).Doc(m.ID)

	var (
		stored  threads.Message
		created bool
	)
	err := r.c.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false

		chatSnap, err := tx.Get(chatRef)
		if err != nil {
			if isNotFound(err) {
				return threads.ErrNotFound
			}
			return err
		}

		msgSnap, err := tx.Get(msgRef)
		if err == nil {
			var d messageDoc
			if err := msgSnap.DataTo(&d); err != nil {
				return err
			}
			stored = d.message(m.ThreadID)
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		if err := tx.Create(msgRef, messageDoc{
			ID:          m.ID,
			ClientID:    m.ClientID,
			User:        userDoc{Email: m.Sender.Email, Name: m.Sender.Name, ImageURL: m.Sender.AvatarURL},
			Text:        m.Body,
			CreatedAt:   m.CreatedAt,
			DisplayTime: m.DisplayTime(),
		}); err != nil {
			return err
		}

		var chat chatDoc
		if err := chatSnap.DataTo(&chat); err != nil {
			return err
		}
		if m.CreatedAt.After(chat.UpdatedAt) {
			if err := tx.Update(chatRef, []firestore.Update{{Path: "updatedAt", Value: m.CreatedAt}}); err != nil {
				return err
			}
		}
		stored, created = m, true
		return nil
	})
	if err != nil {
		return threads.Message{}, false, err
	}
	return stored, created, nil
}

func (r *ThreadsRepo) ListMessages(ctx context.Context, threadID string) ([]threads.Message, error) {
	snaps, err := r.messages(threadID).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return toMessages(threadID, snaps)
}

func toMessages(threadID string, snaps []*firestore.DocumentSnapshot) ([]threads.Message, error) {
	out := make([]threads.Message, 0, len(snaps))
	for _, s := range snaps {
		var d messageDoc
		if err := s.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, d.message(threadID))
	}
	threads.SortMessages(out)
	return out, nil
}

// Subscribe abre Query.Snapshots: el primer resultado es el estado actual y
// después uno por cambio. Cerrar la suscripción detiene el listener.
func (r *ThreadsRepo) Subscribe(ctx context.Context, threadID string) (threads.Subscription, error) {
	if _, err := r.GetByID(ctx, threadID); err != nil {
		return nil, err
	}

	lctx, cancel := context.WithCancel(context.Background())
	sink := feedhub.NewSink(func(*feedhub.Sink) { cancel() })
	it := r.messages(threadID).OrderBy("createdAt", firestore.Asc).Snapshots(lctx)

	go func() {
		defer it.Stop()
		defer sink.Close()
		for {
			qs, err := it.Next()
			if err != nil {
				if !isCanceled(err) {
					r.log.Error("firestore snapshot listener failed", map[string]any{"thread_id": threadID, "err": err})
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				r.log.Error("firestore snapshot read failed", map[string]any{"thread_id": threadID, "err": err})
				return
			}
			msgs, err := toMessages(threadID, docs)
			if err != nil {
				r.log.Error("firestore snapshot decode failed", map[string]any{"thread_id": threadID, "err": err})
				return
			}
			sink.Deliver(threads.Snapshot{ThreadID: threadID, Messages: msgs, At: qs.ReadTime})
		}
	}()

	sink.CloseOnDone(ctx)
	return sink, nil
}
