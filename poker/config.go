package poker

import (
	"fmt"
	"time"
)

// Config carries the table rules for one room.
type Config struct {
	// Seats
	MaxPlayers int

	// Blinds, taken from the first two rotation seats when a hand starts.
	SmallBlind int64
	BigBlind   int64

	// MinBalance is the minimum bankroll required to sit at (and stay at) a
	// table when a hand starts.
	MinBalance int64

	// TurnTicks is the per-turn inactivity budget, counted in TickInterval
	// steps. A player who exhausts it is removed from the table.
	TurnTicks    int
	TickInterval time.Duration
}

// DefaultConfig is the standard table: 20/40 blinds, ten seats, $100 minimum
// and a 90-second turn budget.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:   10,
		SmallBlind:   20,
		BigBlind:     40,
		MinBalance:   100,
		TurnTicks:    90,
		TickInterval: time.Second,
	}
}

func (c Config) validate() error {
	if c.MaxPlayers < 2 {
		return fmt.Errorf("MaxPlayers must be >= 2")
	}
	if c.SmallBlind <= 0 || c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("invalid blinds: sb=%d bb=%d", c.SmallBlind, c.BigBlind)
	}
	if c.MinBalance < c.BigBlind {
		return fmt.Errorf("MinBalance %d must cover the big blind %d", c.MinBalance, c.BigBlind)
	}
	if c.TurnTicks <= 0 || c.TickInterval <= 0 {
		return fmt.Errorf("turn timer budget must be positive")
	}
	return nil
}
