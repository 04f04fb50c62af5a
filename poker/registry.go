package poker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry maps each game room to at most one active Director and enforces
// single-game membership: a participant holds at most one seat across all
// rooms. Room entries have an explicit lifecycle; a room is destroyed when
// its last participant leaves, so no timer can outlive its game.
type Registry struct {
	mu sync.Mutex

	cfg       Config
	log       *zap.Logger
	notifier  Notifier
	store     BalanceStore
	evaluator HandEvaluator

	games map[string]*Director
	seats map[uint64]string // participant id -> room id
}

func NewRegistry(cfg Config, notifier Notifier, store BalanceStore, evaluator HandEvaluator, log *zap.Logger) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Registry{
		cfg:       cfg,
		log:       log,
		notifier:  notifier,
		store:     store,
		evaluator: evaluator,
		games:     make(map[string]*Director),
		seats:     make(map[uint64]string),
	}, nil
}

// Create opens a new game in the room and seats the creator.
func (r *Registry) Create(ctx context.Context, roomID string, playerID uint64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[roomID]; exists {
		return ErrGameExists
	}
	if _, seated := r.seats[playerID]; seated {
		return ErrSeatedElsewhere
	}

	d := newDirector(roomID, r.cfg, r.notifier, r.store, r.evaluator, r.log)
	d.onRemoved = func(removedID uint64) { r.releaseSeat(roomID, removedID) }
	if err := d.AddPlayer(ctx, playerID, name); err != nil {
		return err
	}

	r.games[roomID] = d
	r.seats[playerID] = roomID
	r.log.Info("game created", zap.String("room", roomID), zap.Uint64("creator", playerID))
	return nil
}

// Join seats a participant at the room's table. Lobby-only.
func (r *Registry) Join(ctx context.Context, roomID string, playerID uint64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, exists := r.games[roomID]
	if !exists {
		return ErrNoGame
	}
	if seatedRoom, seated := r.seats[playerID]; seated {
		if seatedRoom == roomID {
			return ErrAlreadySeated
		}
		return ErrSeatedElsewhere
	}
	if err := d.AddPlayer(ctx, playerID, name); err != nil {
		return err
	}
	r.seats[playerID] = roomID
	return nil
}

// Leave removes the participant from the room's game. Mid-hand this acts as
// a forced fold; the room is destroyed when it empties.
func (r *Registry) Leave(roomID string, playerID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, exists := r.games[roomID]
	if !exists {
		return ErrNoGame
	}
	if err := d.RemovePlayer(playerID); err != nil {
		return err
	}
	delete(r.seats, playerID)
	r.destroyIfEmptyLocked(roomID, d)
	return nil
}

// Start begins a hand in the room.
func (r *Registry) Start(roomID string, playerID uint64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.Start(playerID)
}

func (r *Registry) Check(roomID string, playerID uint64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.Check(playerID)
}

func (r *Registry) Call(roomID string, playerID uint64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.Call(playerID)
}

func (r *Registry) Bet(roomID string, playerID uint64, amount int64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.Bet(playerID, amount)
}

func (r *Registry) Raise(roomID string, playerID uint64, amount int64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.Raise(playerID, amount)
}

func (r *Registry) AllIn(roomID string, playerID uint64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.AllIn(playerID)
}

func (r *Registry) Fold(roomID string, playerID uint64) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	return d.Fold(playerID)
}

// TableInfo reports the room's current table state through the notifier.
func (r *Registry) TableInfo(roomID string) error {
	d, err := r.game(roomID)
	if err != nil {
		return err
	}
	d.NotifyTableInfo()
	return nil
}

// Game returns the room's director, if any.
func (r *Registry) Game(roomID string) (*Director, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.games[roomID]
	return d, ok
}

// Seated reports the room a participant is currently seated in.
func (r *Registry) Seated(playerID uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.seats[playerID]
	return roomID, ok
}

func (r *Registry) game(roomID string) (*Director, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, exists := r.games[roomID]
	if !exists {
		return nil, ErrNoGame
	}
	return d, nil
}

// releaseSeat is the director's callback for participants it removed on its
// own (turn timeout, balance cut).
func (r *Registry) releaseSeat(roomID string, playerID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seats[playerID] == roomID {
		delete(r.seats, playerID)
	}
	if d, exists := r.games[roomID]; exists {
		r.destroyIfEmptyLocked(roomID, d)
	}
}

func (r *Registry) destroyIfEmptyLocked(roomID string, d *Director) {
	if d.PlayerCount() > 0 {
		return
	}
	d.Close()
	delete(r.games, roomID)
	r.notifier.NotifyRoom(roomID, "Table is empty, the game has been closed.")
	r.log.Info("game destroyed", zap.String("room", roomID))
}
