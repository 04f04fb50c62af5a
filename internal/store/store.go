// Package store persists player bankrolls, win counters and daily prize
// claims. Three backends share the same contract: in-memory for tests,
// sqlite for single-node deployments and postgres for shared ones.
package store

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	// DefaultBankroll is granted to every player on first contact.
	DefaultBankroll = 5000

	claimInterval = 24 * time.Hour
)

var (
	ErrClaimNotReady     = errors.New("store: daily prize already claimed")
	ErrInsufficientFunds = errors.New("store: insufficient funds")
	ErrInvalidAmount     = errors.New("store: amount must be positive")
	ErrSelfTransfer      = errors.New("store: cannot transfer to yourself")
)

// Store is the persistence contract the game engine and the gateway share.
// Load creates the player record on first sight.
type Store interface {
	Load(ctx context.Context, playerID uint64, name string) (int64, error)
	Save(ctx context.Context, playerID uint64, balance int64) error
	AddWin(ctx context.Context, playerID uint64) error
	WinCount(ctx context.Context, playerID uint64) (int64, error)
	Claim(ctx context.Context, playerID uint64, name string) (int64, error)
	Transfer(ctx context.Context, from, to uint64, amount int64) error
	Close() error
}

// rollPrize draws today's prize amount. Big wins are rare on purpose.
func rollPrize() int64 {
	switch roll := rand.Intn(101); {
	case roll > 85:
		return 10000
	case roll > 50:
		return 5000
	default:
		return 1000
	}
}
