// Package session persists the wallet session across process restarts.
package session

import (
	"github.com/vadiminshakov/walletctl/internal/domain"
)

// Store caller-supplied key-value persistence for the session token and
// identity. The session manager owns the session; the store only survives
// restarts. Cleared on logout and on expiry.
type Store interface {
	// Load returns the persisted session, or a zero session when none exists.
	Load() (domain.Session, error)
	Save(s domain.Session) error
	Clear() error
}

// MemoryStore keeps the session in process memory. Used in tests and when
// persistence is disabled.
type MemoryStore struct {
	session domain.Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (domain.Session, error) {
	return m.session, nil
}

func (m *MemoryStore) Save(s domain.Session) error {
	m.session = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.session = domain.Session{}
	return nil
}
