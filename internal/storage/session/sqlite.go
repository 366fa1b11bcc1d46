package session

import (
	"database/sql"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/vadiminshakov/walletctl/internal/domain"
)

// SQLiteStore persists the session in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open session database")
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			identity TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return errors.Wrap(err, "initialize session database")
	}
	return nil
}

// Load returns the persisted session, or a zero session when none exists.
func (s *SQLiteStore) Load() (domain.Session, error) {
	var session domain.Session
	row := s.db.QueryRow(`SELECT token, identity FROM session WHERE id = 1`)
	if err := row.Scan(&session.Token, &session.Identity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, nil
		}
		return domain.Session{}, errors.Wrap(err, "load session")
	}
	return session, nil
}

// Save upserts the single persisted session row.
func (s *SQLiteStore) Save(session domain.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, identity, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			identity = excluded.identity,
			updated_at = CURRENT_TIMESTAMP
	`, session.Token, session.Identity)
	if err != nil {
		return errors.Wrap(err, "save session")
	}

	s.logger.Debug("session persisted", zap.String("identity", session.Identity))

	return nil
}

// Clear removes the persisted session.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
