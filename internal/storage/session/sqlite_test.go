package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/internal/domain"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	store := newStore(t)

	s, err := store.Load()
	require.NoError(t, err)
	require.False(t, s.Authenticated())
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(domain.Session{Token: "tok", Identity: "alice@example.com"}))

	s, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "tok", s.Token)
	require.Equal(t, "alice@example.com", s.Identity)
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(domain.Session{Token: "first", Identity: "a@b.co"}))
	require.NoError(t, store.Save(domain.Session{Token: "second", Identity: "c@d.ee"}))

	s, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "second", s.Token)
	require.Equal(t, "c@d.ee", s.Identity)
}

func TestSQLiteStore_Clear(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(domain.Session{Token: "tok", Identity: "a@b.co"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // idempotent

	s, err := store.Load()
	require.NoError(t, err)
	require.False(t, s.Authenticated())
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Save(domain.Session{Token: "tok", Identity: "a@b.co"}))

	s, err := store.Load()
	require.NoError(t, err)
	require.True(t, s.Authenticated())

	require.NoError(t, store.Clear())
	s, err = store.Load()
	require.NoError(t, err)
	require.False(t, s.Authenticated())
}
