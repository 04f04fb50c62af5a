package store

import (
	"fmt"
	"os"
	"strings"
)

// NewFromEnv picks a backend from POKER_STORE: "memory", "sqlite" (default)
// or "postgres". It returns the backend name for startup logging.
func NewFromEnv() (Store, string, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("POKER_STORE")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "memory":
		return NewMemoryStore(), backend, nil
	case "sqlite":
		s, err := NewSQLiteStoreFromEnv()
		if err != nil {
			return nil, backend, err
		}
		return s, backend, nil
	case "postgres":
		s, err := NewPostgresStoreFromEnv()
		if err != nil {
			return nil, backend, err
		}
		return s, backend, nil
	default:
		return nil, backend, fmt.Errorf("unknown store backend %q", backend)
	}
}
