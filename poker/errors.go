package poker

import "errors"

// Validation rejections. Reported to the caller, never fatal; game state is
// left untouched.
var (
	ErrNoGame              = errors.New("no ongoing game in this room")
	ErrGameExists          = errors.New("a game already exists in this room")
	ErrAlreadySeated       = errors.New("already participating in this game")
	ErrSeatedElsewhere     = errors.New("already participating in another game")
	ErrNotSeated           = errors.New("not participating in this game")
	ErrTableFull           = errors.New("table limit reached")
	ErrHandInProgress      = errors.New("the game is in process")
	ErrGameNotRunning      = errors.New("game is not running")
	ErrNotEnoughPlayers    = errors.New("not enough players to start")
	ErrNotYourTurn         = errors.New("not allowed to act now")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLowBalance          = errors.New("balance too low to participate")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrCheckNotAllowed     = errors.New("check not allowed against a live stake")
	ErrBetNotAllowed       = errors.New("bet not allowed, the stake is open")
	ErrRaiseNotAllowed     = errors.New("raise not allowed, nothing to raise")
)

// InvalidStateError marks conditions that should be unreachable from player
// input.
type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }
