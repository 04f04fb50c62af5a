package poker

import (
	"context"

	"github.com/deiteris/kurisu-bot/card"
)

// Notifier delivers human-readable status lines to a room or directly to a
// participant. Delivery is best effort: implementations log failures, the
// engine never treats them as fatal.
type Notifier interface {
	NotifyRoom(roomID string, text string)
	NotifyPlayer(playerID uint64, text string)
}

// BalanceStore persists per-participant chip balances, keyed by the stable
// participant id and independent of any one room. The engine writes
// synchronously after every balance-affecting mutation; a failed write is
// logged and the in-memory balance stays authoritative for the hand.
type BalanceStore interface {
	// Load returns the participant's balance, creating the record with the
	// default bankroll when the participant is unknown.
	Load(ctx context.Context, playerID uint64, name string) (int64, error)
	Save(ctx context.Context, playerID uint64, balance int64) error
	// AddWin bumps the participant's lifetime hand-win counter.
	AddWin(ctx context.Context, playerID uint64) error
}

// HandEvaluator ranks a two-card hand against up to five community cards.
// Lower rank values are stronger. The engine consults it between betting
// rounds (to tell players their current combination) and at showdown; it
// never reimplements hand ranking itself.
type HandEvaluator interface {
	Rank(hole []card.Card, community []card.Card) (rank int, class string, err error)
}
