package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deiteris/kurisu-bot/card"
	"github.com/deiteris/kurisu-bot/internal/store"
	"github.com/deiteris/kurisu-bot/poker"
)

type flatEvaluator struct{}

func (flatEvaluator) Rank(_, _ []card.Card) (int, string, error) {
	return 1, "High Card", nil
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw := New(zap.NewNop(), store.NewMemoryStore())
	registry, err := poker.NewRegistry(poker.DefaultConfig(), gw, gw.store, flatEvaluator{}, zap.NewNop())
	require.NoError(t, err)
	gw.SetRegistry(registry)
	return gw
}

func TestExecute_TableLifecycle(t *testing.T) {
	gw := newTestGateway(t)

	reply, err := gw.execute(1, "Alice", Command{Cmd: "create", Room: "room"})
	require.NoError(t, err)
	require.Contains(t, reply, "Table created")

	_, err = gw.execute(1, "Alice", Command{Cmd: "create", Room: "room"})
	require.ErrorIs(t, err, poker.ErrGameExists)

	reply, err = gw.execute(2, "Bob", Command{Cmd: "join", Room: "room"})
	require.NoError(t, err)
	require.Contains(t, reply, "joined")

	_, err = gw.execute(2, "Bob", Command{Cmd: "table-info", Room: "room"})
	require.NoError(t, err)

	reply, err = gw.execute(2, "Bob", Command{Cmd: "leave", Room: "room"})
	require.NoError(t, err)
	require.Contains(t, reply, "left")

	_, err = gw.execute(2, "Bob", Command{Cmd: "fold", Room: "room"})
	require.ErrorIs(t, err, poker.ErrNotSeated)
}

func TestExecute_CommandNamesAreCaseInsensitive(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.execute(1, "Alice", Command{Cmd: " CREATE ", Room: "room"})
	require.NoError(t, err)

	_, err = gw.execute(1, "Alice", Command{Cmd: "shuffle", Room: "room"})
	require.Error(t, err, "unknown commands are rejected")
}

func TestExecute_BalanceAndWins(t *testing.T) {
	gw := newTestGateway(t)

	reply, err := gw.execute(1, "Alice", Command{Cmd: "balance"})
	require.NoError(t, err)
	require.Contains(t, reply, "5000")

	reply, err = gw.execute(1, "Alice", Command{Cmd: "wins"})
	require.NoError(t, err)
	require.Contains(t, reply, "0")
}

func TestExecute_ClaimAndTransferBlockedWhileSeated(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.execute(1, "Alice", Command{Cmd: "create", Room: "room"})
	require.NoError(t, err)

	_, err = gw.execute(1, "Alice", Command{Cmd: "claim"})
	require.Error(t, err, "claiming with an active seat")

	_, err = gw.execute(1, "Alice", Command{Cmd: "transfer", To: 2, Amount: 100})
	require.Error(t, err, "transferring with an active seat")

	_, err = gw.execute(2, "Bob", Command{Cmd: "transfer", To: 1, Amount: 100})
	require.Error(t, err, "transferring to a seated recipient")

	_, err = gw.execute(1, "Alice", Command{Cmd: "leave", Room: "room"})
	require.NoError(t, err)

	reply, err := gw.execute(1, "Alice", Command{Cmd: "claim"})
	require.NoError(t, err)
	require.Contains(t, reply, "daily prize")

	reply, err = gw.execute(1, "Alice", Command{Cmd: "transfer", To: 2, Amount: 100})
	require.NoError(t, err)
	require.Contains(t, reply, "Transferred 100")
}
