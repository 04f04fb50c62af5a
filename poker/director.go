package poker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deiteris/kurisu-bot/card"
)

// Director drives one room's game: the betting state machine, turn rotation,
// stake arithmetic, timeout enforcement and end-of-hand settlement.
//
// Actions are processed one at a time under a single mutex; each runs to
// completion before the next is accepted. The only concurrent activity is
// the per-turn timeout, which injects a removal the same way an explicit
// action would and is disarmed by idempotent cancellation.
type Director struct {
	mu sync.Mutex

	roomID    string
	cfg       Config
	log       *zap.Logger
	notifier  Notifier
	store     BalanceStore
	evaluator HandEvaluator

	phase             Phase
	table             *Table // nil while no hand is in progress
	players           []*Player
	roundHighestStake int64
	foldPosition      int
	turnTimer         *turnTimer
	handID            string

	// onRemoved is called, outside the lock, whenever the director drops a
	// participant on its own (turn timeout, balance cut at hand start). The
	// registry uses it to release the participant's seat reservation.
	onRemoved func(playerID uint64)
}

func newDirector(roomID string, cfg Config, notifier Notifier, store BalanceStore, evaluator HandEvaluator, log *zap.Logger) *Director {
	return &Director{
		roomID:    roomID,
		cfg:       cfg,
		log:       log.With(zap.String("room", roomID)),
		notifier:  notifier,
		store:     store,
		evaluator: evaluator,
		phase:     PhasePending,
	}
}

func (d *Director) Room() string { return d.roomID }

func (d *Director) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *Director) PlayerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.players)
}

func (d *Director) HasPlayer(playerID uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findPlayer(playerID) != nil
}

// Table exposes the current hand state, nil between hands. Read-only use.
func (d *Director) Table() *Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table
}

func (d *Director) Player(playerID uint64) *Player {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findPlayer(playerID)
}

func (d *Director) findPlayer(playerID uint64) *Player {
	for _, p := range d.players {
		if p.id == playerID {
			return p
		}
	}
	return nil
}

// AddPlayer seats a participant in the lobby, loading their persisted
// balance. Join is lobby-only: a hand in progress rejects it.
func (d *Director) AddPlayer(ctx context.Context, playerID uint64, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.findPlayer(playerID) != nil {
		return ErrAlreadySeated
	}
	if d.phase != PhasePending {
		return ErrHandInProgress
	}
	if len(d.players) >= d.cfg.MaxPlayers {
		return ErrTableFull
	}

	balance, err := d.store.Load(ctx, playerID, name)
	if err != nil {
		return fmt.Errorf("load balance: %w", err)
	}
	if balance < d.cfg.MinBalance {
		return ErrLowBalance
	}

	d.players = append(d.players, NewPlayer(playerID, name, balance))
	return nil
}

// RemovePlayer takes a participant off the table. Mid-hand this is a forced
// fold: the player stays in the settlement set but leaves the rotation, and
// the hand may end immediately if only one contestant remains.
func (d *Director) RemovePlayer(playerID uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.findPlayer(playerID)
	if p == nil {
		return ErrNotSeated
	}
	d.removePlayerLocked(p)
	return nil
}

func (d *Director) removePlayerLocked(p *Player) {
	for i, other := range d.players {
		if other == p {
			d.players = append(d.players[:i], d.players[i+1:]...)
			break
		}
	}

	if d.phase == PhasePending || d.table == nil {
		return
	}

	wasActing := p.status == StatusActing
	if d.table.inRotation(p) {
		d.table.removeFromRotation(p)
		p.setStatus(StatusFolded)
		d.foldPosition++
		p.setFoldPosition(d.foldPosition)
	}

	// Hand control back only when the leaver held the turn, or when the
	// rotation collapsed to a sole contestant.
	if wasActing || len(d.table.rotation) == 1 {
		d.advanceTurnLocked()
	}
}

// Start begins a hand: drops participants below the minimum balance, takes
// blinds from the first two rotation seats, deals hole cards and opens
// PREFLOP.
func (d *Director) Start(playerID uint64) error {
	d.mu.Lock()
	kicked, err := d.startLocked(playerID)
	d.mu.Unlock()

	for _, id := range kicked {
		if d.onRemoved != nil {
			d.onRemoved(id)
		}
	}
	return err
}

func (d *Director) startLocked(playerID uint64) ([]uint64, error) {
	if d.findPlayer(playerID) == nil {
		return nil, ErrNotSeated
	}
	if d.phase != PhasePending {
		return nil, ErrHandInProgress
	}
	if len(d.players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	// Cut everyone who can no longer afford to play.
	var kicked []uint64
	remaining := d.players[:0]
	for _, p := range d.players {
		if p.balance < d.cfg.MinBalance {
			kicked = append(kicked, p.id)
			d.notifier.NotifyRoom(d.roomID, fmt.Sprintf("%s has been removed from the table: balance below $%d.", p.name, d.cfg.MinBalance))
			continue
		}
		remaining = append(remaining, p)
	}
	d.players = remaining

	if d.findPlayer(playerID) == nil {
		return kicked, ErrLowBalance
	}
	if len(d.players) < 2 {
		return kicked, ErrNotEnoughPlayers
	}

	d.handID = uuid.NewString()
	d.table = newTable(d.players)
	d.phase = PhasePreflop
	d.takeBlindsLocked()
	d.table.dealHoleCards()
	d.table.setRotation(d.table.players)

	for _, p := range d.table.players {
		d.notifier.NotifyPlayer(p.id, fmt.Sprintf("Your cards are: %s", joinCards(p.hand, " and ")))
	}
	d.notifier.NotifyRoom(d.roomID, "Setting up the table and starting the game!")
	d.log.Info("hand started",
		zap.String("hand", d.handID),
		zap.Int("players", len(d.table.players)))

	d.advanceTurnLocked()
	return kicked, nil
}

func (d *Director) takeBlindsLocked() {
	small, big := d.cfg.SmallBlind, d.cfg.BigBlind
	d.roundHighestStake = big
	d.processStakeLocked(d.table.players[0], small, small, StatusBlinded)
	d.processStakeLocked(d.table.players[1], big, big, StatusBlinded)
}

// processStakeLocked performs the stake mutation sequence atomically with
// respect to the game loop: balance debit, bank credit, persisted-balance
// write, then status update.
func (d *Director) processStakeLocked(p *Player, amount, stake int64, status PlayerStatus) {
	p.withdrawBalance(amount)
	p.addTotalStake(amount)
	d.table.addBank(amount)
	d.persistBalanceLocked(p)
	p.setCurrentStake(stake)
	p.setStatus(status)
}

func (d *Director) persistBalanceLocked(p *Player) {
	if err := d.store.Save(context.Background(), p.id, p.balance); err != nil {
		// In-memory state stays authoritative for the rest of the hand.
		d.log.Warn("persist balance failed",
			zap.Uint64("player", p.id),
			zap.Int64("balance", p.balance),
			zap.Error(err))
	}
}

func (d *Director) giveMoneyLocked(p *Player, amount int64) {
	d.table.withdrawBank(amount)
	p.addBalance(amount)
	d.persistBalanceLocked(p)
}

// actingPlayerLocked validates that the caller holds the turn.
func (d *Director) actingPlayerLocked(playerID uint64) (*Player, error) {
	p := d.findPlayer(playerID)
	if p == nil {
		return nil, ErrNotSeated
	}
	if d.phase == PhasePending {
		return nil, ErrGameNotRunning
	}
	if !canAct(d.phase, p.status) {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// Check passes the turn without staking. Legal only when there is no live
// stake to match, or when the player has no chips left to match it with.
func (d *Director) Check(playerID uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if p.balance != 0 && p.currentStake < d.roundHighestStake {
		return ErrCheckNotAllowed
	}
	p.setStatus(StatusChecked)
	d.advanceTurnLocked()
	return nil
}

// Call matches the round's highest stake. With no live stake it degrades to
// a check.
func (d *Director) Call(playerID uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if d.roundHighestStake == 0 {
		p.setStatus(StatusChecked)
		d.advanceTurnLocked()
		return nil
	}
	shortfall := d.roundHighestStake - p.currentStake
	if p.balance < shortfall {
		return ErrInsufficientBalance
	}
	d.processStakeLocked(p, shortfall, d.roundHighestStake, StatusCalled)
	d.advanceTurnLocked()
	return nil
}

// Bet opens the round's stake.
func (d *Director) Bet(playerID uint64, amount int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if d.roundHighestStake != 0 {
		return ErrBetNotAllowed
	}
	if p.balance < amount {
		return ErrInsufficientBalance
	}
	d.roundHighestStake = amount
	d.processStakeLocked(p, amount, amount, StatusBet)
	d.advanceTurnLocked()
	return nil
}

// Raise increases the round's highest stake BY the given amount.
func (d *Director) Raise(playerID uint64, amount int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if d.roundHighestStake == 0 {
		return ErrRaiseNotAllowed
	}
	// Raising by amount costs at least amount on top of matching the stake;
	// bounding it by the balance first also keeps the sum below overflow.
	if amount > p.balance {
		return ErrInsufficientBalance
	}
	raised := d.roundHighestStake + amount
	if p.balance+p.currentStake < raised {
		return ErrInsufficientBalance
	}
	d.roundHighestStake = raised
	d.processStakeLocked(p, raised-p.currentStake, raised, StatusRaised)
	d.advanceTurnLocked()
	return nil
}

// AllIn stakes the player's entire balance, raising the round's highest
// stake when the resulting stake exceeds it.
func (d *Director) AllIn(playerID uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if p.balance == 0 {
		return ErrInsufficientBalance
	}
	stake := p.balance + p.currentStake
	if stake > d.roundHighestStake {
		d.roundHighestStake = stake
	}
	d.processStakeLocked(p, p.balance, stake, StatusAllIn)
	d.advanceTurnLocked()
	return nil
}

// Fold removes the player from the rotation. The hand is kept for audit but
// excluded from showdown.
func (d *Director) Fold(playerID uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	p.setStatus(StatusFolded)
	d.foldPosition++
	p.setFoldPosition(d.foldPosition)
	d.table.removeFromRotation(p)
	d.advanceTurnLocked()
	return nil
}

// advanceTurnLocked cancels the previous turn timer, advances the betting
// round if it completed, and hands the turn to the next player owing a
// decision.
func (d *Director) advanceTurnLocked() {
	d.turnTimer.Cancel()

	d.maybeAdvanceRoundLocked()
	if d.phase == PhasePending {
		// The hand terminated during round evaluation.
		return
	}

	var next *Player
	for i := 0; i < len(d.table.rotation); i++ {
		p := d.table.popRotation()
		d.table.pushRotation(p)
		if p.status == StatusWaiting {
			next = p
			break
		}
	}
	if next == nil {
		panic(InvalidStateError("no player owes an action in an incomplete round"))
	}

	next.setStatus(StatusActing)
	timer := newTurnTimer()
	d.turnTimer = timer
	timer.start(d.cfg.TurnTicks, d.cfg.TickInterval, func() {
		d.handleTurnTimeout(next, timer)
	})

	d.notifier.NotifyRoom(d.roomID, fmt.Sprintf(
		"%s's turn.\n\n**Available actions:**\n%s\nCurrent table bank is: $%d",
		next.name, d.availableActionsLocked(next), d.table.bank))
}

func (d *Director) handleTurnTimeout(p *Player, timer *turnTimer) {
	d.mu.Lock()
	if d.turnTimer != timer || p.status != StatusActing {
		// The real action won the race; this firing is a no-op.
		d.mu.Unlock()
		return
	}
	d.notifier.NotifyRoom(d.roomID, fmt.Sprintf("%s has been removed from table due to inactivity.", p.name))
	d.log.Info("turn timed out", zap.Uint64("player", p.id), zap.String("hand", d.handID))
	d.removePlayerLocked(p)
	d.mu.Unlock()

	if d.onRemoved != nil {
		d.onRemoved(p.id)
	}
}

// maybeAdvanceRoundLocked evaluates round completion and advances phases
// until someone owes a decision, settlement runs, or the hand collapses to a
// single contestant.
func (d *Director) maybeAdvanceRoundLocked() {
	for {
		if len(d.table.rotation) == 1 {
			last := d.table.popRotation()
			bank := d.table.bank
			d.giveMoneyLocked(last, bank)
			d.addWinLocked(last)
			d.notifier.NotifyRoom(d.roomID, fmt.Sprintf(
				"As the last man standing, %s wins and gets the bank ($%d)!\nType \"start\" to play again.", last.name, bank))
			d.log.Info("hand won by fold-out",
				zap.String("hand", d.handID),
				zap.Uint64("winner", last.id),
				zap.Int64("bank", bank))
			d.resetGameLocked()
			return
		}

		complete := true
		for _, p := range d.table.rotation {
			// Stakes below the round's highest must be answered, unless the
			// player is already all in.
			if p.currentStake < d.roundHighestStake && p.balance != 0 {
				p.setStatus(StatusWaiting)
			}
			if p.status == StatusWaiting {
				complete = false
				break
			}
		}
		if !complete {
			return
		}

		next := d.phase.next()
		if next == PhaseSettling {
			d.settleLocked()
			return
		}
		d.dealNextRoundLocked(next)
		// Loop again: with everyone all in, streets keep dealing until
		// showdown.
	}
}

func (d *Director) dealNextRoundLocked(next Phase) {
	d.table.placeCommunityCards()
	d.phase = next
	d.roundHighestStake = 0

	for _, p := range d.table.rotation {
		p.setCurrentStake(0)
		// All-in players stay all in; they take no further actions.
		if p.balance > 0 {
			p.setStatus(StatusWaiting)
		}
	}

	for _, p := range d.table.rotation {
		rank, class, err := d.evaluator.Rank(p.hand, d.table.cards)
		if err != nil {
			d.log.Warn("combination evaluation failed", zap.Uint64("player", p.id), zap.Error(err))
			continue
		}
		_ = rank
		d.notifier.NotifyPlayer(p.id, fmt.Sprintf("Current combination: **%s**", class))
	}
	d.notifier.NotifyRoom(d.roomID, fmt.Sprintf("Cards on table:\n%s", joinCards(d.table.cards, "\n")))
}

func (d *Director) settleLocked() {
	d.phase = PhaseSettling

	outcomes, err := settleStakes(d.table.players, d.table.cards, d.evaluator)
	if err != nil {
		// No safe fallback ranking exists; void the hand instead of
		// mis-awarding the pot.
		d.log.Error("showdown evaluation failed, voiding hand",
			zap.String("hand", d.handID), zap.Error(err))
		for _, p := range d.table.players {
			if p.totalStake > 0 {
				d.giveMoneyLocked(p, p.totalStake)
			}
		}
		d.notifier.NotifyRoom(d.roomID, "Hand evaluation failed. The hand is void and all stakes have been returned.")
		d.resetGameLocked()
		return
	}

	var msg strings.Builder
	wonByID := make(map[uint64]*Player)
	potIndex := 0
	for _, out := range outcomes {
		if out.Refund != nil {
			d.giveMoneyLocked(out.Refund, out.Amount)
			fmt.Fprintf(&msg, "$%d were returned to %s.\n", out.Amount, out.Refund.name)
			continue
		}

		potName := fmt.Sprintf("side pot %d", potIndex)
		if potIndex == 0 {
			potName = "main pot"
		}
		potIndex++

		share := out.Amount / int64(len(out.Winners))
		remainder := out.Amount % int64(len(out.Winners))
		for i, w := range out.Winners {
			amount := share
			if i == 0 {
				// Deterministic destination for the uneven remainder: the
				// first winner in seat order.
				amount += remainder
			}
			d.giveMoneyLocked(w, amount)
			wonByID[w.id] = w
		}

		if len(out.Winners) == 1 {
			fmt.Fprintf(&msg, "Player %s wins the %s ($%d) with %s.\n", out.Winners[0].name, potName, out.Amount, out.HandClass)
		} else {
			names := make([]string, len(out.Winners))
			for i, w := range out.Winners {
				names[i] = w.name
			}
			fmt.Fprintf(&msg, "Players %s are tied for the %s ($%d) with %s.\n", strings.Join(names, ", "), potName, out.Amount, out.HandClass)
		}
	}

	for _, w := range wonByID {
		d.addWinLocked(w)
	}

	msg.WriteString("\n**Players' hands:**\n")
	for _, p := range d.table.players {
		if p.status == StatusFolded {
			continue
		}
		fmt.Fprintf(&msg, "%s's hand: %s\n", p.name, joinCards(p.hand, " and "))
	}
	msg.WriteString("\nEnd of game. Type \"start\" to play again.")

	d.log.Info("hand settled", zap.String("hand", d.handID), zap.Int("pots", potIndex))
	d.resetGameLocked()
	d.notifier.NotifyRoom(d.roomID, msg.String())
}

func (d *Director) addWinLocked(p *Player) {
	if err := d.store.AddWin(context.Background(), p.id); err != nil {
		d.log.Warn("record win failed", zap.Uint64("player", p.id), zap.Error(err))
	}
}

// resetGameLocked returns the room to the lobby. Balances are kept; the
// table is discarded.
func (d *Director) resetGameLocked() {
	for _, p := range d.players {
		p.resetForNewHand()
	}
	d.roundHighestStake = 0
	d.foldPosition = 0
	d.turnTimer = nil
	d.table = nil
	d.handID = ""
	d.phase = PhasePending
}

// Close cancels any pending timer. Called when the registry destroys the
// room.
func (d *Director) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.turnTimer.Cancel()
	d.turnTimer = nil
}

func (d *Director) availableActionsLocked(p *Player) string {
	var b strings.Builder
	switch {
	case d.roundHighestStake != 0 && p.balance >= d.roundHighestStake-p.currentStake:
		b.WriteString("Raise stake - raise <amount>\n")
		fmt.Fprintf(&b, "Call to $%d - call\n", d.roundHighestStake)
		b.WriteString("Go all-in - all-in\n")
		b.WriteString("Fold - fold\n")
	case d.roundHighestStake == 0 && p.balance > 0:
		b.WriteString("Bet money - bet <amount>\n")
		b.WriteString("Check - check\n")
		b.WriteString("Go all-in - all-in\n")
		b.WriteString("Fold - fold\n")
	case p.balance == 0:
		b.WriteString("Check - check\n")
		b.WriteString("Fold - fold\n")
	default:
		b.WriteString("Go all-in - all-in\n")
		b.WriteString("Fold - fold\n")
	}
	return b.String()
}

// NotifyTableInfo reports the room's seats, phase, bank and player states.
func (d *Director) NotifyTableInfo() {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	b.WriteString("**Table Info**\n")
	fmt.Fprintf(&b, "Total players: %d/%d\n", len(d.players), d.cfg.MaxPlayers)
	fmt.Fprintf(&b, "Game status: %s\n", d.phase)
	if d.table != nil {
		fmt.Fprintf(&b, "Table bank: $%d\n", d.table.bank)
	}
	for _, p := range d.players {
		fmt.Fprintf(&b, "%s - Balance: $%d, Status: %s\n", p.name, p.balance, p.status)
	}
	d.notifier.NotifyRoom(d.roomID, b.String())
}

func joinCards(cards []card.Card, sep string) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}
