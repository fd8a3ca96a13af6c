package store

import (
	"context"
	"log"
	"sync"
)

// Manager hands out one lazily-loaded Store per account and serializes all
// access to it, so the stores themselves stay lock-free.
type Manager struct {
	persistence Persistence

	mu       sync.Mutex
	accounts map[int64]*account
}

type account struct {
	mu    sync.Mutex
	store *Store
}

func NewManager(p Persistence) *Manager {
	return &Manager{
		persistence: p,
		accounts:    make(map[int64]*account),
	}
}

// WithStore runs fn with exclusive access to the account's store, loading it
// from persistence on first use. A failed load is logged and the account
// continues with an empty collection.
func (m *Manager) WithStore(ctx context.Context, accountID int64, fn func(*Store) error) error {
	acc := m.account(accountID)

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if acc.store == nil {
		s := New(m.persistence, accountID)
		if err := s.Load(ctx); err != nil {
			log.Printf("failed to load events for account %d, starting empty: %v", accountID, err)
		}
		acc.store = s
	}
	return fn(acc.store)
}

func (m *Manager) account(accountID int64) *account {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		acc = &account{}
		m.accounts[accountID] = acc
	}
	return acc
}
