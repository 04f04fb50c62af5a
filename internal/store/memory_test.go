package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LoadCreatesDefaultBankroll(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	balance, err := s.Load(ctx, 1, "Alice")
	require.NoError(t, err)
	require.Equal(t, int64(DefaultBankroll), balance)

	require.NoError(t, s.Save(ctx, 1, 4200))
	balance, err = s.Load(ctx, 1, "Alice")
	require.NoError(t, err)
	require.Equal(t, int64(4200), balance)
}

func TestMemoryStore_WinCounter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	wins, err := s.WinCount(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, wins)

	require.NoError(t, s.AddWin(ctx, 1))
	require.NoError(t, s.AddWin(ctx, 1))
	wins, err = s.WinCount(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), wins)
}

func TestMemoryStore_ClaimHonorsCooldown(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	prize, err := s.Claim(ctx, 1, "Alice")
	require.NoError(t, err)
	require.Contains(t, []int64{1000, 5000, 10000}, prize)

	balance, err := s.Load(ctx, 1, "Alice")
	require.NoError(t, err)
	require.Equal(t, int64(DefaultBankroll)+prize, balance)

	_, err = s.Claim(ctx, 1, "Alice")
	require.ErrorIs(t, err, ErrClaimNotReady)

	now = now.Add(23 * time.Hour)
	_, err = s.Claim(ctx, 1, "Alice")
	require.ErrorIs(t, err, ErrClaimNotReady)

	now = now.Add(2 * time.Hour)
	_, err = s.Claim(ctx, 1, "Alice")
	require.NoError(t, err)
}

func TestMemoryStore_TransferMovesChipsAtomically(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.ErrorIs(t, s.Transfer(ctx, 1, 1, 100), ErrSelfTransfer)
	require.ErrorIs(t, s.Transfer(ctx, 1, 2, 0), ErrInvalidAmount)
	require.ErrorIs(t, s.Transfer(ctx, 1, 2, -50), ErrInvalidAmount)
	require.ErrorIs(t, s.Transfer(ctx, 1, 2, DefaultBankroll+1), ErrInsufficientFunds)

	require.NoError(t, s.Transfer(ctx, 1, 2, 1500))

	sender, err := s.Load(ctx, 1, "")
	require.NoError(t, err)
	receiver, err := s.Load(ctx, 2, "")
	require.NoError(t, err)
	require.Equal(t, int64(DefaultBankroll-1500), sender)
	require.Equal(t, int64(DefaultBankroll+1500), receiver)
}
