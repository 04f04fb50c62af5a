// Package card models a standard 52-card deck with sequential dealing.
package card

import "fmt"

// Rank is a card face value. 2-10 are numeric, 11-14 are J/Q/K/A.
type Rank byte

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	return fmt.Sprintf("%d", byte(r))
}

// Card is immutable once dealt.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}
