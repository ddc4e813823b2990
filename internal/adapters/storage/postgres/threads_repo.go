package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"pet-adoption/internal/adapters/storage/feedhub"
	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/logger"
)

// ThreadsRepo guarda threads y mensajes. El feed en vivo sale de un hub en
// proceso; Listen lo alimenta con LISTEN/NOTIFY para cambios de otras instancias.
type ThreadsRepo struct {
	db  *sql.DB
	hub *feedhub.Hub
}

func NewThreadsRepo(db *sql.DB, log logger.Logger) *ThreadsRepo {
	r := &ThreadsRepo{db: db}
	r.hub = feedhub.New(r.ListMessages, log)
	return r
}

// Hub expone el hub para conectar el listener.
func (r *ThreadsRepo) Hub() *feedhub.Hub { return r.hub }

func (r *ThreadsRepo) FindByIDs(ctx context.Context, ids []string) ([]threads.Thread, error) {
	if len(ids) == 0 {
		return []threads.Thread{}, nil
	}
	return r.load(ctx, ids)
}

func (r *ThreadsRepo) CreateIfAbsent(ctx context.Context, t threads.Thread) (threads.Thread, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return threads.Thread{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO threads (id, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, t.ID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return threads.Thread{}, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Otro resolver lo creó primero.
		_ = tx.Rollback()
		existing, err := r.GetByID(ctx, t.ID)
		return existing, false, err
	}

	for i, p := range t.Participants {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO thread_participants (thread_id, email, name, avatar_url, position)
			VALUES ($1, $2, $3, $4, $5)
		`, t.ID, p.Email, p.Name, p.AvatarURL, i); err != nil {
			return threads.Thread{}, false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return threads.Thread{}, false, err
	}
	return t, true, nil
}

func (r *ThreadsRepo) GetByID(ctx context.Context, id string) (threads.Thread, error) {
	items, err := r.load(ctx, []string{id})
	if err != nil {
		return threads.Thread{}, err
	}
	if len(items) == 0 {
		return threads.Thread{}, threads.ErrNotFound
	}
	return items[0], nil
}

func (r *ThreadsRepo) ListByParticipant(ctx context.Context, email string) ([]threads.Thread, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT thread_id FROM thread_participants WHERE email = $1
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []threads.Thread{}, nil
	}
	return r.load(ctx, ids)
}

// load trae threads con sus participantes en dos consultas.
func (r *ThreadsRepo) load(ctx context.Context, ids []string) ([]threads.Thread, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at FROM threads WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*threads.Thread)
	order := make([]string, 0, len(ids))
	for rows.Next() {
		var t threads.Thread
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		byID[t.ID] = &t
		order = append(order, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return []threads.Thread{}, nil
	}

	prows, err := r.db.QueryContext(ctx, `
		SELECT thread_id, email, name, avatar_url
		FROM thread_participants
		WHERE thread_id = ANY($1)
		ORDER BY thread_id, position
	`, order)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var (
			threadID string
			p        threads.Participant
		)
		if err := prows.Scan(&threadID, &p.Email, &p.Name, &p.AvatarURL); err != nil {
			return nil, err
		}
		if t, ok := byID[threadID]; ok {
			t.Participants = append(t.Participants, p)
			t.Emails = append(t.Emails, p.Email)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	out := make([]threads.Thread, 0, len(order))
	for _, id := range order {
		t := byID[id]
		sort.Strings(t.Emails)
		out = append(out, *t)
	}
	return out, nil
}

func (r *ThreadsRepo) AppendMessage(ctx context.Context, m threads.Message) (threads.Message, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return threads.Message{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM threads WHERE id = $1)`, m.ThreadID).Scan(&exists); err != nil {
		return threads.Message{}, false, err
	}
	if !exists {
		return threads.Message{}, false, threads.ErrNotFound
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO thread_messages (
			id, thread_id, client_id,
			sender_email, sender_name, sender_avatar_url,
			body, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT DO NOTHING
	`,
		m.ID,
		m.ThreadID,
		m.ClientID,
		m.Sender.Email,
		m.Sender.Name,
		m.Sender.AvatarURL,
		m.Body,
		m.CreatedAt,
	)
	if err != nil {
		return threads.Message{}, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		existing, err := r.getMessage(ctx, m.ThreadID, m.ID, m.ClientID)
		return existing, false, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE threads SET updated_at = GREATEST(updated_at, $2) WHERE id = $1
	`, m.ThreadID, m.CreatedAt); err != nil {
		return threads.Message{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return threads.Message{}, false, err
	}

	// Suscriptores locales ven el cambio sin esperar al NOTIFY.
	r.hub.Notify(ctx, m.ThreadID)
	return m, true, nil
}

func (r *ThreadsRepo) getMessage(ctx context.Context, threadID, id, clientID string) (threads.Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM thread_messages
		WHERE thread_id = $1 AND (id = $2 OR client_id = $3)
		LIMIT 1
	`, threadID, id, clientID)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return threads.Message{}, threads.ErrNotFound
	}
	return m, err
}

const messageColumns = `
	id, thread_id, client_id,
	sender_email, sender_name, sender_avatar_url,
	body, created_at`

func (r *ThreadsRepo) ListMessages(ctx context.Context, threadID string) ([]threads.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM thread_messages
		WHERE thread_id = $1
		ORDER BY created_at, id
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]threads.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(row rowScanner) (threads.Message, error) {
	var m threads.Message
	err := row.Scan(
		&m.ID,
		&m.ThreadID,
		&m.ClientID,
		&m.Sender.Email,
		&m.Sender.Name,
		&m.Sender.AvatarURL,
		&m.Body,
		&m.CreatedAt,
	)
	if err != nil {
		return threads.Message{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *ThreadsRepo) Subscribe(ctx context.Context, threadID string) (threads.Subscription, error) {
	sub, err := r.hub.Subscribe(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
