package threads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testSub struct {
	ch   chan Snapshot
	once sync.Once
}

func (s *testSub) Snapshots() <-chan Snapshot { return s.ch }
func (s *testSub) Close()                     { s.once.Do(func() { close(s.ch) }) }

type testRepo struct {
	mu       sync.Mutex
	threads  map[string]Thread
	messages map[string][]Message
	subs     map[string][]*testSub

	findErr  error
	sendErr  error
	creates  int
	appended int
}

func newTestRepo() *testRepo {
	return &testRepo{
		threads:  map[string]Thread{},
		messages: map[string][]Message{},
		subs:     map[string][]*testSub{},
	}
}

func (r *testRepo) FindByIDs(ctx context.Context, ids []string) ([]Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := []Thread{}
	for _, id := range ids {
		if t, ok := r.threads[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *testRepo) CreateIfAbsent(ctx context.Context, t Thread) (Thread, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.threads[t.ID]; ok {
		return existing, false, nil
	}
	r.creates++
	r.threads[t.ID] = t
	return t, true, nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return Thread{}, ErrNotFound
	}
	return t, nil
}

func (r *testRepo) ListByParticipant(ctx context.Context, email string) ([]Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Thread{}
	for _, t := range r.threads {
		if t.HasParticipant(email) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *testRepo) AppendMessage(ctx context.Context, m Message) (Message, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sendErr != nil {
		return Message{}, false, r.sendErr
	}
	for _, existing := range r.messages[m.ThreadID] {
		if existing.ID == m.ID {
			return existing, false, nil
		}
	}
	r.appended++
	r.messages[m.ThreadID] = append(r.messages[m.ThreadID], m)
	t := r.threads[m.ThreadID]
	t.UpdatedAt = m.CreatedAt
	r.threads[m.ThreadID] = t
	r.broadcastLocked(m.ThreadID)
	return m, true, nil
}

func (r *testRepo) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Message(nil), r.messages[threadID]...)
	SortMessages(out)
	return out, nil
}

func (r *testRepo) Subscribe(ctx context.Context, threadID string) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &testSub{ch: make(chan Snapshot, 1)}
	r.subs[threadID] = append(r.subs[threadID], s)
	s.ch <- Snapshot{ThreadID: threadID, Messages: append([]Message(nil), r.messages[threadID]...)}
	return s, nil
}

// broadcastLocked entrega el último snapshot (reemplaza si no fue leído).
func (r *testRepo) broadcastLocked(threadID string) {
	snap := Snapshot{ThreadID: threadID, Messages: append([]Message(nil), r.messages[threadID]...)}
	for _, s := range r.subs[threadID] {
		func() {
			defer func() { _ = recover() }() // sub cerrada
			select {
			case <-s.ch:
			default:
			}
			s.ch <- snap
		}()
	}
}

var (
	ana = Participant{Email: "a@x.com", Name: "Ana", AvatarURL: "https://img/a.png"}
	bob = Participant{Email: "b@y.com", Name: "Bob"}
)

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return svc, repo
}

func TestCanonicalID(t *testing.T) {
	id1, err := CanonicalID("a@x.com", "b@y.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	id2, _ := CanonicalID(" B@Y.com", "A@x.COM ")
	if id1 != "a@x.com_b@y.com" || id1 != id2 {
		t.Fatalf("expected symmetric canonical id, got %q and %q", id1, id2)
	}

	if _, err := CanonicalID("a@x.com", "A@X.com"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for same participant, got %v", err)
	}
	if _, err := CanonicalID("", "b@y.com"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty participant, got %v", err)
	}
}

func TestResolveThread_SymmetricAndCreatesOnce(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	t1, created, err := svc.ResolveThread(ctx, ana, bob)
	if err != nil || !created {
		t.Fatalf("expected created thread, got created=%v err=%v", created, err)
	}
	t2, created, err := svc.ResolveThread(ctx, bob, ana)
	if err != nil || created {
		t.Fatalf("expected existing thread, got created=%v err=%v", created, err)
	}
	if t1.ID != "a@x.com_b@y.com" || t2.ID != t1.ID {
		t.Fatalf("expected same canonical id, got %q and %q", t1.ID, t2.ID)
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", repo.creates)
	}
	if len(t1.Participants) != 2 || t1.Participants[0].Name != "Ana" || t1.Emails[0] != "a@x.com" {
		t.Fatalf("unexpected participants %+v", t1)
	}
}

func TestResolveThread_ConcurrentResolversConverge(t *testing.T) {
	svc, repo := newTestService()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			self, other := ana, bob
			if i%2 == 1 {
				self, other = bob, ana
			}
			th, _, err := svc.ResolveThread(context.Background(), self, other)
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			ids[i] = th.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("resolvers diverged: %v", ids)
		}
	}
	if repo.creates != 1 {
		t.Fatalf("expected one thread, got %d creates", repo.creates)
	}
}

func TestResolveThread_ReusesLegacyID(t *testing.T) {
	svc, repo := newTestService()
	legacy := Thread{ID: "b@y.com_a@x.com", Participants: []Participant{bob, ana}, Emails: []string{"a@x.com", "b@y.com"}}
	repo.threads[legacy.ID] = legacy

	th, created, err := svc.ResolveThread(context.Background(), ana, bob)
	if err != nil || created {
		t.Fatalf("expected reuse, got created=%v err=%v", created, err)
	}
	if th.ID != legacy.ID {
		t.Fatalf("expected legacy id, got %q", th.ID)
	}
}

func TestResolveThread_ReusesMixedCaseLegacyID(t *testing.T) {
	svc, repo := newTestService()
	legacy := Thread{
		ID:           "Bob@Y.com_a@x.com",
		Participants: []Participant{{Email: "Bob@Y.com", Name: "Bob"}, ana},
		Emails:       []string{"Bob@Y.com", "a@x.com"},
	}
	repo.threads[legacy.ID] = legacy

	th, created, err := svc.ResolveThread(context.Background(), ana, Participant{Email: " Bob@Y.com "})
	if err != nil || created {
		t.Fatalf("expected reuse, got created=%v err=%v", created, err)
	}
	if th.ID != legacy.ID {
		t.Fatalf("expected mixed-case legacy id, got %q", th.ID)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no new thread")
	}

	// el participante con casing distinto sigue siendo participante
	if _, err := svc.GetThread(context.Background(), legacy.ID, "bob@y.com"); err != nil {
		t.Fatalf("expected bob to read legacy thread, got %v", err)
	}
}

func TestResolveThread_PrefersCanonicalOverLegacy(t *testing.T) {
	svc, repo := newTestService()
	repo.threads["b@y.com_a@x.com"] = Thread{ID: "b@y.com_a@x.com", Emails: []string{"a@x.com", "b@y.com"}}
	repo.threads["a@x.com_b@y.com"] = Thread{ID: "a@x.com_b@y.com", Emails: []string{"a@x.com", "b@y.com"}}

	th, _, err := svc.ResolveThread(context.Background(), bob, ana)
	if err != nil || th.ID != "a@x.com_b@y.com" {
		t.Fatalf("expected canonical thread, got %q err=%v", th.ID, err)
	}
}

func TestResolveThread_LookupFailureCreatesNothing(t *testing.T) {
	svc, repo := newTestService()
	repo.findErr = errors.New("store unavailable")

	_, _, err := svc.ResolveThread(context.Background(), ana, bob)
	if err == nil || !strings.Contains(err.Error(), "store unavailable") {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no thread created")
	}
}

func TestGetThreadAndTitle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	th, _, _ := svc.ResolveThread(ctx, ana, bob)

	if _, err := svc.GetThread(ctx, th.ID, "eve@z.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetThread(ctx, "nope", "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if got := svc.Title(ctx, th.ID, "a@x.com"); got != "Bob" {
		t.Fatalf("expected Bob, got %q", got)
	}
	if got := svc.Title(ctx, th.ID, "b@y.com"); got != "Ana" {
		t.Fatalf("expected Ana, got %q", got)
	}
	if got := svc.Title(ctx, th.ID, "eve@z.com"); got != DefaultTitle {
		t.Fatalf("expected default title for outsider, got %q", got)
	}
	if got := svc.Title(ctx, "missing", "a@x.com"); got != DefaultTitle {
		t.Fatalf("expected default title, got %q", got)
	}
	solo := Thread{ID: "x", Participants: []Participant{ana}}
	if got := TitleFor(solo, "a@x.com"); got != DefaultTitle {
		t.Fatalf("expected default title without other participant, got %q", got)
	}
}

func TestSendMessage(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	th, _, _ := svc.ResolveThread(ctx, ana, bob)

	m, err := svc.SendMessage(ctx, th.ID, ana, SendInput{ClientID: "c1", Body: " hola Bob\r\n "})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Body != "hola Bob" {
		t.Fatalf("expected trimmed body, got %q", m.Body)
	}
	if m.DisplayTime() != "03-09-2024 14:05:07" {
		t.Fatalf("unexpected display time %q", m.DisplayTime())
	}
	if m.ID != MessageID(th.ID, "c1") {
		t.Fatalf("expected deterministic id")
	}

	// reintento con el mismo client id: no duplica
	again, err := svc.SendMessage(ctx, th.ID, ana, SendInput{ClientID: "c1", Body: "hola Bob"})
	if err != nil || again.ID != m.ID || repo.appended != 1 {
		t.Fatalf("expected idempotent retry, got %v appended=%d", err, repo.appended)
	}

	if _, err := svc.SendMessage(ctx, th.ID, ana, SendInput{Body: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty body, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, th.ID, ana, SendInput{Body: strings.Repeat("é", MaxBodyRunes+1)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for long body, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, th.ID, Participant{Email: "eve@z.com"}, SendInput{Body: "hi"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non participant, got %v", err)
	}
}

func TestSendMessage_AngleBracketsKept(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	th, _, _ := svc.ResolveThread(ctx, ana, bob)

	for i, body := range []string{"if a<b then ok", "<Rex>", "my dog is <Rex> the best", "<b>no es html</b>"} {
		m, err := svc.SendMessage(ctx, th.ID, ana, SendInput{ClientID: fmt.Sprintf("lt-%d", i), Body: body})
		if err != nil {
			t.Fatalf("send %q: %v", body, err)
		}
		if m.Body != body {
			t.Fatalf("expected body stored as typed %q, got %q", body, m.Body)
		}
	}

	msgs, err := svc.ListMessages(ctx, th.ID, bob.Email)
	if err != nil || len(msgs) != 4 {
		t.Fatalf("unexpected messages %+v err=%v", msgs, err)
	}
	seen := map[string]bool{}
	for _, m := range msgs {
		seen[m.Body] = true
	}
	if !seen["<Rex>"] || !seen["if a<b then ok"] {
		t.Fatalf("expected bodies with '<' listed intact, got %+v", msgs)
	}
}

func TestListThreads_NewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	carl := Participant{Email: "c@z.com", Name: "Carl"}

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	t1, _, _ := svc.ResolveThread(ctx, ana, bob)
	t2, _, _ := svc.ResolveThread(ctx, ana, carl)

	now = now.Add(time.Hour)
	if _, err := svc.SendMessage(ctx, t1.ID, bob, SendInput{Body: "hola"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	inbox, err := svc.ListThreads(ctx, "A@X.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(inbox) != 2 || inbox[0].ID != t1.ID || inbox[1].ID != t2.ID {
		t.Fatalf("unexpected inbox order %+v", inbox)
	}
}

func TestListMessages_Ordered(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	th, _, _ := svc.ResolveThread(ctx, ana, bob)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, who := range []Participant{ana, bob, ana} {
		at := base.Add(time.Duration(3-i) * time.Minute)
		svc.now = func() time.Time { return at }
		if _, err := svc.SendMessage(ctx, th.ID, who, SendInput{Body: "m"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	msgs, err := svc.ListMessages(ctx, th.ID, "b@y.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("messages out of order: %+v", msgs)
		}
	}
	if _, err := svc.ListMessages(ctx, th.ID, "eve@z.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestOpenThreadFeed_ParticipantOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	th, _, _ := svc.ResolveThread(ctx, ana, bob)

	if _, err := svc.OpenThreadFeed(ctx, th.ID, "eve@z.com"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	sub, err := svc.OpenThreadFeed(ctx, th.ID, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	snap := <-sub.Snapshots()
	if snap.ThreadID != th.ID || len(snap.Messages) != 0 {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
	sub.Close()
	sub.Close()
}
