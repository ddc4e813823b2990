package memory

import (
	"context"
	"sync"

	"pet-adoption/internal/adapters/storage/feedhub"
	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/logger"
)

type threadRepo struct {
	mu       sync.RWMutex
	byID     map[string]threads.Thread
	messages map[string][]threads.Message

	hub *feedhub.Hub
}

func NewThreadRepo(log logger.Logger) threads.Repository {
	r := &threadRepo{
		byID:     make(map[string]threads.Thread),
		messages: make(map[string][]threads.Message),
	}
	r.hub = feedhub.New(r.ListMessages, log)
	return r
}

func (r *threadRepo) FindByIDs(ctx context.Context, ids []string) ([]threads.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]threads.Thread, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *threadRepo) CreateIfAbsent(ctx context.Context, t threads.Thread) (threads.Thread, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[t.ID]; ok {
		return existing, false, nil
	}
	r.byID[t.ID] = t
	return t, true, nil
}

func (r *threadRepo) GetByID(ctx context.Context, id string) (threads.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return threads.Thread{}, threads.ErrNotFound
	}
	return t, nil
}

func (r *threadRepo) ListByParticipant(ctx context.Context, email string) ([]threads.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]threads.Thread, 0)
	for _, t := range r.byID {
		if t.HasParticipant(email) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *threadRepo) AppendMessage(ctx context.Context, m threads.Message) (threads.Message, bool, error) {
	stored, created, err := r.append(m)
	if err != nil || !created {
		return stored, created, err
	}
	r.hub.Notify(ctx, m.ThreadID)
	return stored, true, nil
}

func (r *threadRepo) append(m threads.Message) (threads.Message, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[m.ThreadID]
	if !ok {
		return threads.Message{}, false, threads.ErrNotFound
	}
	for _, existing := range r.messages[m.ThreadID] {
		if existing.ID == m.ID {
			return existing, false, nil
		}
	}
	r.messages[m.ThreadID] = append(r.messages[m.ThreadID], m)
	if m.CreatedAt.After(t.UpdatedAt) {
		t.UpdatedAt = m.CreatedAt
		r.byID[t.ID] = t
	}
	return m, true, nil
}

func (r *threadRepo) ListMessages(ctx context.Context, threadID string) ([]threads.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]threads.Message{}, r.messages[threadID]...)
	threads.SortMessages(out)
	return out, nil
}

func (r *threadRepo) Subscribe(ctx context.Context, threadID string) (threads.Subscription, error) {
	if _, err := r.GetByID(ctx, threadID); err != nil {
		return nil, err
	}
	sub, err := r.hub.Subscribe(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
