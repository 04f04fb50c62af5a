// Package eval ranks poker hands for the game engine by adapting the
// github.com/paulhankin/poker evaluator. The engine treats hand ranking as
// an external collaborator; this is the shipped implementation.
package eval

import (
	"fmt"
	"math"

	"github.com/paulhankin/poker"

	"github.com/deiteris/kurisu-bot/card"
)

// Evaluator implements the engine's HandEvaluator contract: lower returned
// rank = stronger hand.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// Rank scores the best five-card hand from two hole cards and three to five
// community cards, returning the inverted score (lower is stronger) and a
// human-readable hand class.
func (e *Evaluator) Rank(hole []card.Card, community []card.Card) (int, string, error) {
	if len(hole) != 2 {
		return 0, "", fmt.Errorf("eval: want 2 hole cards, got %d", len(hole))
	}
	if len(community) < 3 || len(community) > 5 {
		return 0, "", fmt.Errorf("eval: want 3-5 community cards, got %d", len(community))
	}

	cards := make([]poker.Card, 0, 7)
	for _, c := range append(append([]card.Card{}, hole...), community...) {
		pc, err := toPokerCard(c)
		if err != nil {
			return 0, "", err
		}
		cards = append(cards, pc)
	}

	best, score := bestFive(cards)
	class, err := poker.Describe(best[:])
	if err != nil {
		return 0, "", fmt.Errorf("eval: describe hand: %w", err)
	}

	// The library scores higher-is-stronger; the engine ranks
	// lower-is-stronger, after the deuces convention.
	return math.MaxInt16 - int(score), class, nil
}

// bestFive finds the strongest five-card subset of 5-7 cards.
func bestFive(cards []poker.Card) ([5]poker.Card, int16) {
	var best [5]poker.Card
	bestScore := int16(math.MinInt16)

	n := len(cards)
	pick := make([]poker.Card, 0, 5)
	var walk func(start, need int)
	walk = func(start, need int) {
		if need == 0 {
			var hand [5]poker.Card
			copy(hand[:], pick)
			if score := poker.Eval5(&hand); score > bestScore {
				bestScore = score
				best = hand
			}
			return
		}
		for i := start; i <= n-need; i++ {
			pick = append(pick, cards[i])
			walk(i+1, need-1)
			pick = pick[:len(pick)-1]
		}
	}
	walk(0, 5)
	return best, bestScore
}

func toPokerCard(c card.Card) (poker.Card, error) {
	var zero poker.Card
	var suit poker.Suit
	switch c.Suit {
	case card.Spade:
		suit = poker.Spade
	case card.Heart:
		suit = poker.Heart
	case card.Club:
		suit = poker.Club
	case card.Diamond:
		suit = poker.Diamond
	default:
		return zero, fmt.Errorf("eval: unknown suit %v", c.Suit)
	}

	// The library numbers aces low.
	rank := poker.Rank(c.Rank)
	if c.Rank == card.Ace {
		rank = poker.Rank(1)
	}
	pc, err := poker.MakeCard(suit, rank)
	if err != nil {
		return zero, fmt.Errorf("eval: convert %s: %w", c, err)
	}
	return pc, nil
}
