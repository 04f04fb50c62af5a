package card

import (
	"fmt"
	"math/rand"
)

// Deck is a shuffled 52-card stock consumed by sequential draws. A drawn
// card is removed and never reused within a hand.
type Deck struct {
	cards []Card
}

// NewDeck returns a full deck in uniformly random order. The permutation is
// not derivable from any observable game state.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for suit := Spade; suit <= Diamond; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// NewStackedDeck builds a deck that deals the given cards in order. Test
// hook; gameplay always goes through NewDeck.
func NewStackedDeck(cards []Card) *Deck {
	stock := make([]Card, len(cards))
	copy(stock, cards)
	return &Deck{cards: stock}
}

// Draw removes and returns n cards. Drawing past the end of the stock is a
// programming error, never reachable from player input.
func (d *Deck) Draw(n int) []Card {
	if n > len(d.cards) {
		panic(fmt.Sprintf("card: draw %d exceeds %d remaining", n, len(d.cards)))
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn
}

// Remaining reports how many cards are left in the stock.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
