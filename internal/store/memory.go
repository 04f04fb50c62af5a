package store

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	name      string
	balance   int64
	winCount  int64
	nextClaim time.Time
}

// MemoryStore keeps player records in process memory. Everything is lost on
// restart, which is fine for tests and throwaway servers.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uint64]*memoryRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uint64]*memoryRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) recordLocked(playerID uint64, name string) *memoryRecord {
	rec, ok := s.records[playerID]
	if !ok {
		rec = &memoryRecord{name: name, balance: DefaultBankroll}
		s.records[playerID] = rec
	}
	if name != "" {
		rec.name = name
	}
	return rec
}

func (s *MemoryStore) Load(_ context.Context, playerID uint64, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(playerID, name).balance, nil
}

func (s *MemoryStore) Save(_ context.Context, playerID uint64, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(playerID, "").balance = balance
	return nil
}

func (s *MemoryStore) AddWin(_ context.Context, playerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(playerID, "").winCount++
	return nil
}

func (s *MemoryStore) WinCount(_ context.Context, playerID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(playerID, "").winCount, nil
}

func (s *MemoryStore) Claim(_ context.Context, playerID uint64, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.recordLocked(playerID, name)
	now := s.now()
	if now.Before(rec.nextClaim) {
		return 0, ErrClaimNotReady
	}
	prize := rollPrize()
	rec.balance += prize
	rec.nextClaim = now.Add(claimInterval)
	return prize, nil
}

func (s *MemoryStore) Transfer(_ context.Context, from, to uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSelfTransfer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender := s.recordLocked(from, "")
	if sender.balance < amount {
		return ErrInsufficientFunds
	}
	receiver := s.recordLocked(to, "")
	sender.balance -= amount
	receiver.balance += amount
	return nil
}
