package poker

import "github.com/deiteris/kurisu-bot/card"

// Table holds the shared state of exactly one hand of play: the seated
// players in rotation order, the community cards, and the bank. It is
// created when a hand starts and discarded when the hand ends; the bank is
// owned exclusively by the table and disbursed only at settlement.
type Table struct {
	players  []*Player // everyone dealt into the hand, folded included
	rotation []*Player // circular queue of players still contesting
	deck     *card.Deck
	cards    []card.Card // community cards: 0, 3, 4 or 5
	bank     int64
}

func newTable(players []*Player) *Table {
	seated := make([]*Player, len(players))
	copy(seated, players)
	return &Table{
		players: seated,
		deck:    card.NewDeck(),
	}
}

func (t *Table) Players() []*Player          { return t.players }
func (t *Table) Rotation() []*Player         { return t.rotation }
func (t *Table) CommunityCards() []card.Card { return t.cards }
func (t *Table) Bank() int64                 { return t.bank }

func (t *Table) addBank(amount int64) { t.bank += amount }

func (t *Table) withdrawBank(amount int64) {
	if amount > t.bank {
		panic(InvalidStateError("bank withdrawal exceeds bank"))
	}
	t.bank -= amount
}

// dealHoleCards gives two cards to every seated player.
func (t *Table) dealHoleCards() {
	for _, p := range t.players {
		p.addHandCards(t.deck.Draw(2)...)
	}
}

// placeCommunityCards reveals the flop when the board is empty, otherwise
// the turn or river card.
func (t *Table) placeCommunityCards() {
	if len(t.cards) == 0 {
		t.cards = append(t.cards, t.deck.Draw(3)...)
		return
	}
	t.cards = append(t.cards, t.deck.Draw(1)...)
}

func (t *Table) setRotation(players []*Player) {
	t.rotation = make([]*Player, len(players))
	copy(t.rotation, players)
}

// popRotation removes and returns the head of the rotation.
func (t *Table) popRotation() *Player {
	p := t.rotation[0]
	t.rotation = t.rotation[1:]
	return p
}

func (t *Table) pushRotation(p *Player) {
	t.rotation = append(t.rotation, p)
}

func (t *Table) removeFromRotation(p *Player) bool {
	for i, other := range t.rotation {
		if other == p {
			t.rotation = append(t.rotation[:i], t.rotation[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Table) inRotation(p *Player) bool {
	for _, other := range t.rotation {
		if other == p {
			return true
		}
	}
	return false
}
