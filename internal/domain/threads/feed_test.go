package threads

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// waitFeed lee Updates hasta que cond se cumpla o venza el timeout.
func waitFeed(t *testing.T, f *Feed, cond func([]Entry) bool) []Entry {
	t.Helper()
	if view := f.Messages(); cond(view) {
		return view
	}
	timeout := time.After(2 * time.Second)
	for {
		select {
		case view, ok := <-f.Updates():
			if !ok {
				t.Fatalf("feed closed while waiting")
			}
			if cond(view) {
				return view
			}
		case <-timeout:
			t.Fatalf("timeout waiting for feed; last view: %+v", f.Messages())
			return nil
		}
	}
}

func countState(view []Entry, s EntryState) int {
	n := 0
	for _, e := range view {
		if e.State == s {
			n++
		}
	}
	return n
}

func openTestFeed(t *testing.T) (*Feed, *Service, *testRepo, Thread) {
	t.Helper()
	svc, repo := newTestService()
	th, _, err := svc.ResolveThread(context.Background(), ana, bob)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	f, err := OpenFeed(context.Background(), ServiceBackend{Svc: svc, Self: ana}, th.ID, ana)
	if err != nil {
		t.Fatalf("open feed: %v", err)
	}
	t.Cleanup(f.Close)
	return f, svc, repo, th
}

func TestFeed_SettlesWithoutDuplicates(t *testing.T) {
	f, _, _, _ := openTestFeed(t)
	ctx := context.Background()

	const n = 10
	for i := 0; i < n; i++ {
		if _, err := f.Send(ctx, fmt.Sprintf("mensaje %d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	view := waitFeed(t, f, func(v []Entry) bool {
		return len(v) == n && countState(v, StateSent) == n
	})

	seen := map[string]bool{}
	for _, e := range view {
		if seen[e.ClientID] {
			t.Fatalf("duplicated client id %q in view", e.ClientID)
		}
		seen[e.ClientID] = true
	}
}

func TestFeed_ReceivesOtherParticipantMessages(t *testing.T) {
	f, svc, _, th := openTestFeed(t)

	if _, err := svc.SendMessage(context.Background(), th.ID, bob, SendInput{ClientID: "b1", Body: "hola Ana"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	view := waitFeed(t, f, func(v []Entry) bool { return len(v) == 1 })
	if view[0].Sender.Email != "b@y.com" || view[0].Body != "hola Ana" || view[0].State != StateSent {
		t.Fatalf("unexpected entry %+v", view[0])
	}
}

func TestFeed_FailedSendRetryAndDiscard(t *testing.T) {
	f, _, repo, _ := openTestFeed(t)
	ctx := context.Background()

	repo.mu.Lock()
	repo.sendErr = errors.New("offline")
	repo.mu.Unlock()

	id1, err := f.Send(ctx, "primero")
	if err == nil {
		t.Fatalf("expected send error")
	}
	id2, _ := f.Send(ctx, "segundo")

	view := f.Messages()
	if countState(view, StateFailed) != 2 {
		t.Fatalf("expected two failed entries, got %+v", view)
	}

	if !f.Discard(id2) {
		t.Fatalf("expected discard of failed entry")
	}
	if f.Discard(id2) {
		t.Fatalf("discard should not find entry twice")
	}

	repo.mu.Lock()
	repo.sendErr = nil
	repo.mu.Unlock()

	if err := f.Retry(ctx, id1); err != nil {
		t.Fatalf("retry: %v", err)
	}
	view = waitFeed(t, f, func(v []Entry) bool {
		return len(v) == 1 && v[0].State == StateSent
	})
	if view[0].ClientID != id1 {
		t.Fatalf("expected retried message, got %+v", view[0])
	}
	if repo.appended != 1 {
		t.Fatalf("expected one stored message, got %d", repo.appended)
	}

	if err := f.Retry(ctx, "nope"); !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected unknown message, got %v", err)
	}
}

func TestFeed_RejectsEmptyBody(t *testing.T) {
	f, _, _, _ := openTestFeed(t)
	if _, err := f.Send(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFeed_CloseIsIdempotent(t *testing.T) {
	f, _, _, _ := openTestFeed(t)
	f.Close()
	f.Close()

	for range f.Updates() {
		// vacía la última vista pendiente; termina al cerrarse
	}
	if _, err := f.Send(context.Background(), "hola"); !errors.Is(err, ErrFeedClosed) {
		t.Fatalf("expected feed closed, got %v", err)
	}

	var nilFeed *Feed
	nilFeed.Close()
	if nilFeed.Messages() != nil {
		t.Fatalf("expected nil view for nil feed")
	}
	var zero Feed
	zero.Close()
}

func TestOpenFeed_ForbiddenForOutsider(t *testing.T) {
	svc, _ := newTestService()
	th, _, _ := svc.ResolveThread(context.Background(), ana, bob)

	eve := Participant{Email: "eve@z.com"}
	_, err := OpenFeed(context.Background(), ServiceBackend{Svc: svc, Self: eve}, th.ID, eve)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
