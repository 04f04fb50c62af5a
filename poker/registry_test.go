package poker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T, cfg Config) (*Registry, *fakeNotifier, *fakeStore) {
	t.Helper()
	notifier := newFakeNotifier()
	store := newFakeStore(nil)
	r, err := NewRegistry(cfg, notifier, store, &stubEvaluator{}, zap.NewNop())
	require.NoError(t, err)
	return r, notifier, store
}

func TestRegistry_OneSeatPerPlayerAcrossRooms(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultConfig())
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "room-a", 1, "Alice"))
	require.ErrorIs(t, r.Create(ctx, "room-a", 2, "Bob"), ErrGameExists)
	require.ErrorIs(t, r.Create(ctx, "room-b", 1, "Alice"), ErrSeatedElsewhere)
	require.ErrorIs(t, r.Join(ctx, "room-a", 1, "Alice"), ErrAlreadySeated)
	require.ErrorIs(t, r.Join(ctx, "missing", 2, "Bob"), ErrNoGame)

	require.NoError(t, r.Join(ctx, "room-a", 2, "Bob"))
	require.NoError(t, r.Create(ctx, "room-b", 3, "Carol"))
	require.ErrorIs(t, r.Join(ctx, "room-b", 2, "Bob"), ErrSeatedElsewhere)

	room, seated := r.Seated(2)
	require.True(t, seated)
	require.Equal(t, "room-a", room)
}

func TestRegistry_JoinRejectedWhileHandInProgress(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultConfig())
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "room", 1, "Alice"))
	require.NoError(t, r.Join(ctx, "room", 2, "Bob"))
	require.NoError(t, r.Start("room", 1))

	require.ErrorIs(t, r.Join(ctx, "room", 3, "Carol"), ErrHandInProgress)
}

func TestRegistry_TableFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 2
	r, _, _ := newTestRegistry(t, cfg)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "room", 1, "Alice"))
	require.NoError(t, r.Join(ctx, "room", 2, "Bob"))
	require.ErrorIs(t, r.Join(ctx, "room", 3, "Carol"), ErrTableFull)
}

func TestRegistry_LeaveDestroysEmptyRoom(t *testing.T) {
	r, notifier, _ := newTestRegistry(t, DefaultConfig())
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "room", 1, "Alice"))
	require.NoError(t, r.Join(ctx, "room", 2, "Bob"))
	require.ErrorIs(t, r.Leave("room", 99), ErrNotSeated)

	require.NoError(t, r.Leave("room", 1))
	_, exists := r.Game("room")
	require.True(t, exists, "room stays open while seats are taken")

	require.NoError(t, r.Leave("room", 2))
	_, exists = r.Game("room")
	require.False(t, exists)
	require.Equal(t, 1, notifier.roomMessagesContaining("Table is empty"))

	_, seated := r.Seated(1)
	require.False(t, seated)
	require.ErrorIs(t, r.Start("room", 1), ErrNoGame)

	// The freed seat can open a new game immediately.
	require.NoError(t, r.Create(ctx, "room", 1, "Alice"))
}

func TestRegistry_ActionsRequireAGame(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultConfig())

	require.ErrorIs(t, r.Start("nowhere", 1), ErrNoGame)
	require.ErrorIs(t, r.Check("nowhere", 1), ErrNoGame)
	require.ErrorIs(t, r.Bet("nowhere", 1, 100), ErrNoGame)
	require.ErrorIs(t, r.Fold("nowhere", 1), ErrNoGame)
	require.ErrorIs(t, r.TableInfo("nowhere"), ErrNoGame)
}

func TestRegistry_TimeoutReleasesSeatReservation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TurnTicks = 2
	cfg.TickInterval = time.Millisecond
	r, _, _ := newTestRegistry(t, cfg)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "room", 1, "Alice"))
	require.NoError(t, r.Join(ctx, "room", 2, "Bob"))
	require.NoError(t, r.Start("room", 1))

	// Player 1 idles out of the hand; the registry must free the seat so
	// the player can sit down elsewhere.
	require.Eventually(t, func() bool {
		_, seated := r.Seated(1)
		return !seated
	}, time.Second, 2*time.Millisecond)

	require.NoError(t, r.Create(ctx, "elsewhere", 1, "Alice"))

	d, exists := r.Game("room")
	require.True(t, exists, "room survives with one player seated")
	require.True(t, d.HasPlayer(2))
}

func TestRegistry_ConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinBalance = cfg.BigBlind - 1
	_, err := NewRegistry(cfg, newFakeNotifier(), newFakeStore(nil), &stubEvaluator{}, zap.NewNop())
	require.Error(t, err)
}
