package fsstore

import (
	"context"
	"os"
	"testing"
	"time"

	"pet-adoption/internal/domain/favorites"
	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/logger"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Estos tests corren solo contra el emulador (FIRESTORE_EMULATOR_HOST).
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	c, err := Open(context.Background(), "demo-pet-adoption")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpen_RequiresProject(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrProjectRequired)
}

func TestFavoritesRepo_Emulator(t *testing.T) {
	c := newEmulatorClient(t)
	ctx := context.Background()
	r := NewFavoritesRepo(c)
	email := uuid.NewString() + "@x.com"
	now := time.Now().UTC()

	_, err := r.Get(ctx, email)
	require.ErrorIs(t, err, favorites.ErrNotFound)

	require.NoError(t, r.Create(ctx, favorites.Record{Email: email, CreatedAt: now, UpdatedAt: now}))
	assert.ErrorIs(t, r.Create(ctx, favorites.Record{Email: email}), favorites.ErrAlreadyExists)

	_, err = r.AddPet(ctx, email, "p1", now)
	require.NoError(t, err)
	rec, err := r.AddPet(ctx, email, "p1", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, rec.PetIDs)

	rec, err = r.RemovePet(ctx, email, "p1", now)
	require.NoError(t, err)
	assert.Empty(t, rec.PetIDs)
}

func TestThreadsRepo_Emulator(t *testing.T) {
	c := newEmulatorClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := threads.NewService(NewThreadsRepo(c, logger.Nop()))
	suffix := uuid.NewString()[:8]
	ana := threads.Participant{Email: "ana-" + suffix + "@x.com", Name: "Ana"}
	bob := threads.Participant{Email: "bob-" + suffix + "@y.com", Name: "Bob"}

	th, created, err := svc.ResolveThread(ctx, ana, bob)
	require.NoError(t, err)
	require.True(t, created)
	_, created, err = svc.ResolveThread(ctx, bob, ana)
	require.NoError(t, err)
	assert.False(t, created)

	sub, err := svc.OpenThreadFeed(ctx, th.ID, ana.Email)
	require.NoError(t, err)
	defer sub.Close()
	<-sub.Snapshots()

	_, err = svc.SendMessage(ctx, th.ID, bob, threads.SendInput{ClientID: "c1", Body: "hola"})
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-sub.Snapshots():
			if len(snap.Messages) == 1 {
				assert.Equal(t, "hola", snap.Messages[0].Body)
				return
			}
		case <-deadline:
			t.Fatal("no snapshot with the new message")
		}
	}
}
