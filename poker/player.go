package poker

import "github.com/deiteris/kurisu-bot/card"

// Player is one participant's state for the lifetime of a registry seat.
// The balance persists across hands; hand, stakes, status and fold position
// reset when a hand ends. A Player always carries its balance whether or not
// a hand is in progress; seat membership is a relation held by the director
// and registry, not a separate type.
type Player struct {
	id   uint64
	name string

	balance int64

	hand         []card.Card
	currentStake int64
	totalStake   int64
	status       PlayerStatus

	// foldPosition orders folds within a hand, for audit and deterministic
	// settlement ordering. Zero while contesting.
	foldPosition int
}

// NewPlayer seats a participant with a loaded balance.
func NewPlayer(id uint64, name string, balance int64) *Player {
	return &Player{id: id, name: name, balance: balance}
}

func (p *Player) ID() uint64           { return p.id }
func (p *Player) Name() string         { return p.name }
func (p *Player) Balance() int64       { return p.balance }
func (p *Player) Hand() []card.Card    { return p.hand }
func (p *Player) CurrentStake() int64  { return p.currentStake }
func (p *Player) TotalStake() int64    { return p.totalStake }
func (p *Player) Status() PlayerStatus { return p.status }
func (p *Player) FoldPosition() int    { return p.foldPosition }

func (p *Player) addBalance(amount int64) { p.balance += amount }

func (p *Player) withdrawBalance(amount int64) {
	if amount > p.balance {
		panic(InvalidStateError("balance withdrawal exceeds balance"))
	}
	p.balance -= amount
}

func (p *Player) addHandCards(cards ...card.Card) { p.hand = append(p.hand, cards...) }

func (p *Player) setStatus(status PlayerStatus) { p.status = status }
func (p *Player) setCurrentStake(stake int64)   { p.currentStake = stake }
func (p *Player) addTotalStake(amount int64)    { p.totalStake += amount }
func (p *Player) setFoldPosition(position int)  { p.foldPosition = position }

// resetForNewHand clears all per-hand state. The balance is untouched.
func (p *Player) resetForNewHand() {
	p.hand = nil
	p.currentStake = 0
	p.totalStake = 0
	p.status = StatusWaiting
	p.foldPosition = 0
}
