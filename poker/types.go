// Package poker implements the multiplayer Texas Hold'em engine: seating,
// the betting state machine, turn rotation with per-turn timeouts, and
// pot/side-pot settlement. Message delivery, balance persistence and hand
// ranking are consumed through the Notifier, BalanceStore and HandEvaluator
// boundary interfaces.
package poker

// Phase is the betting-round phase of a game. It advances strictly in
// declaration order; there is no transition out of PhaseRiver except into
// settlement, which always returns the game to PhasePending.
type Phase byte

const (
	PhasePending Phase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseSettling
)

func (p Phase) next() Phase { return p + 1 }

var phaseDictionary = map[Phase]string{
	PhasePending:  "PENDING",
	PhasePreflop:  "PREFLOP",
	PhaseFlop:     "FLOP",
	PhaseTurn:     "TURN",
	PhaseRiver:    "RIVER",
	PhaseSettling: "SETTLING",
}

func (p Phase) String() string {
	if s, ok := phaseDictionary[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// PlayerStatus is a closed set of per-hand player states. It doubles as the
// control signal for the rotation: exactly one player holds StatusActing
// during active play, and StatusWaiting marks players who still owe a
// decision this betting round.
type PlayerStatus byte

const (
	StatusWaiting PlayerStatus = iota
	StatusBlinded
	StatusCalled
	StatusChecked
	StatusBet
	StatusRaised
	StatusAllIn
	StatusActing
	StatusFolded
)

var statusDictionary = map[PlayerStatus]string{
	StatusWaiting: "WAITING",
	StatusBlinded: "BLINDED",
	StatusCalled:  "CALLED",
	StatusChecked: "CHECKED",
	StatusBet:     "BET",
	StatusRaised:  "RAISED",
	StatusAllIn:   "ALLIN",
	StatusActing:  "ACTING",
	StatusFolded:  "FOLDED",
}

func (s PlayerStatus) String() string {
	if str, ok := statusDictionary[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// canAct reports whether a player in this status may submit an action while
// the given phase is live. Pure projection of {phase, status}; rotation
// membership is checked by the director.
func canAct(phase Phase, status PlayerStatus) bool {
	if phase < PhasePreflop || phase > PhaseRiver {
		return false
	}
	return status == StatusActing
}
