package poker

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/deiteris/kurisu-bot/card"
)

// fakeNotifier collects room and private messages for assertions.
type fakeNotifier struct {
	mu      sync.Mutex
	room    []string
	private map[uint64][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{private: make(map[uint64][]string)}
}

func (n *fakeNotifier) NotifyRoom(_ string, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.room = append(n.room, text)
}

func (n *fakeNotifier) NotifyPlayer(playerID uint64, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.private[playerID] = append(n.private[playerID], text)
}

func (n *fakeNotifier) roomMessagesContaining(substr string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, msg := range n.room {
		if strings.Contains(msg, substr) {
			count++
		}
	}
	return count
}

// fakeStore keeps balances in memory and records every persisted write.
type fakeStore struct {
	mu       sync.Mutex
	balances map[uint64]int64
	wins     map[uint64]int
}

func newFakeStore(balances map[uint64]int64) *fakeStore {
	if balances == nil {
		balances = make(map[uint64]int64)
	}
	return &fakeStore{balances: balances, wins: make(map[uint64]int)}
}

func (s *fakeStore) Load(_ context.Context, playerID uint64, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[playerID]
	if !ok {
		balance = 5000
		s.balances[playerID] = balance
	}
	return balance, nil
}

func (s *fakeStore) Save(_ context.Context, playerID uint64, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[playerID] = balance
	return nil
}

func (s *fakeStore) AddWin(_ context.Context, playerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins[playerID]++
	return nil
}

func (s *fakeStore) winCount(playerID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wins[playerID]
}

func (s *fakeStore) balance(playerID uint64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[playerID]
}

// stubEvaluator delegates to a swappable ranking function. The zero value
// ranks every hand equally.
type stubEvaluator struct {
	mu sync.Mutex
	fn func(hole, community []card.Card) (int, string, error)
}

func (e *stubEvaluator) set(fn func(hole, community []card.Card) (int, string, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn = fn
}

func (e *stubEvaluator) Rank(hole, community []card.Card) (int, string, error) {
	e.mu.Lock()
	fn := e.fn
	e.mu.Unlock()
	if fn == nil {
		return 100, "High Card", nil
	}
	return fn(hole, community)
}

// rankByFirstHoleCard is the usual way tests pick a winner: hole cards are
// random, so ranks are resolved against cards captured after the deal.
func rankByFirstHoleCard(ranks map[card.Card]int) func(hole, community []card.Card) (int, string, error) {
	return func(hole, _ []card.Card) (int, string, error) {
		if rank, ok := ranks[hole[0]]; ok {
			return rank, "Pair", nil
		}
		return 1000, "High Card", nil
	}
}

func newTestDirector(t *testing.T, cfg Config, balances map[uint64]int64) (*Director, *fakeNotifier, *fakeStore, *stubEvaluator) {
	t.Helper()
	notifier := newFakeNotifier()
	store := newFakeStore(balances)
	evaluator := &stubEvaluator{}
	d := newDirector("room", cfg, notifier, store, evaluator, zap.NewNop())
	return d, notifier, store, evaluator
}

func addPlayers(t *testing.T, d *Director, ids ...uint64) {
	t.Helper()
	names := []string{"", "Alice", "Bob", "Carol", "Dave"}
	for _, id := range ids {
		name := "Player"
		if int(id) < len(names) {
			name = names[id]
		}
		if err := d.AddPlayer(context.Background(), id, name); err != nil {
			t.Fatalf("AddPlayer(%d): %v", id, err)
		}
	}
}
