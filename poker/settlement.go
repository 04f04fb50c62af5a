package poker

import (
	"fmt"
	"sort"

	"github.com/deiteris/kurisu-bot/card"
)

// PotOutcome is one settled layer: a contested pot with its winners, or an
// uncontested refund of a player's unmatched stake.
type PotOutcome struct {
	Amount    int64
	Winners   []*Player // in seat order; empty for refunds
	HandClass string
	Refund    *Player // non-nil when the layer is a refund
}

// settleStakes computes the layered main/side pot distribution for a hand.
//
// All hand participants take part, folded included: their chips fund the
// pots even though they are excluded from winner evaluation. Players are
// processed in ascending order of total stake; each layer forms a pot of
// lowest*n contested by the non-folded players in the layer, ties split the
// pot, and a final sole player is refunded their unmatched excess without
// any hand comparison. A layer whose contributors have all folded is dead
// money and goes to the best live hand among all participants. The function is pure: it only reads player state and
// reports outcomes for the director to apply.
func settleStakes(participants []*Player, community []card.Card, evaluator HandEvaluator) ([]PotOutcome, error) {
	seat := make(map[*Player]int, len(participants))
	for i, p := range participants {
		seat[p] = i
	}

	players := make([]*Player, len(participants))
	copy(players, participants)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].totalStake < players[j].totalStake
	})

	stakes := make(map[*Player]int64, len(players))
	for _, p := range players {
		stakes[p] = p.totalStake
	}

	// Ranks are stable within a hand; evaluate each contender once.
	type evaluated struct {
		rank  int
		class string
	}
	ranks := make(map[*Player]evaluated, len(players))
	best := func(candidates []*Player) ([]*Player, string, error) {
		var winners []*Player
		bestRank := 0
		bestClass := ""
		for _, p := range candidates {
			if p.status == StatusFolded {
				continue
			}
			ev, ok := ranks[p]
			if !ok {
				rank, class, err := evaluator.Rank(p.hand, community)
				if err != nil {
					return nil, "", fmt.Errorf("rank hand of %s: %w", p.name, err)
				}
				ev = evaluated{rank: rank, class: class}
				ranks[p] = ev
			}
			switch {
			case len(winners) == 0 || ev.rank < bestRank:
				winners = []*Player{p}
				bestRank = ev.rank
				bestClass = ev.class
			case ev.rank == bestRank:
				winners = append(winners, p)
			}
		}
		return winners, bestClass, nil
	}

	var outcomes []PotOutcome
	for len(players) > 0 {
		if len(players) == 1 {
			p := players[0]
			if stakes[p] > 0 {
				outcomes = append(outcomes, PotOutcome{Amount: stakes[p], Refund: p})
			}
			break
		}

		lowest := stakes[players[0]]
		if lowest == 0 {
			players = players[1:]
			continue
		}
		pot := lowest * int64(len(players))

		winners, bestClass, err := best(players)
		if err != nil {
			return nil, err
		}
		if len(winners) == 0 {
			// Every contributor to this layer folded. The chips are dead
			// money and go to the best live hand among all participants.
			winners, bestClass, err = best(participants)
			if err != nil {
				return nil, err
			}
		}
		if len(winners) == 0 {
			return nil, InvalidStateError("pot layer with no contesting players")
		}
		sort.Slice(winners, func(i, j int) bool { return seat[winners[i]] < seat[winners[j]] })

		outcomes = append(outcomes, PotOutcome{Amount: pot, Winners: winners, HandClass: bestClass})

		for _, p := range players {
			stakes[p] -= lowest
		}
		players = players[1:]
	}
	return outcomes, nil
}
