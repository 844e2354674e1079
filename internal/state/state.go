package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store persists the client's local state under one directory: the session
// token, the username it belongs to, and small UI restore state such as the
// resident console's last tab. Everything is best effort; a missing or
// empty database behaves like a fresh install.
type Store struct {
	Dir string
}

const dbFileName = "state.sqlite"

// Keys of the meta table.
const (
	keyAuthToken   = "auth_token"
	keyUsername    = "username"
	keyResidentTab = "resident_tab"
)

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("state dir not configured")
	}
	return os.MkdirAll(filepath.Clean(s.Dir), 0o755)
}

func (s Store) dbPath() string {
	return filepath.Join(filepath.Clean(s.Dir), dbFileName)
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) getMeta(ctx context.Context, db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func (s Store) setMeta(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO meta(k, v) VALUES(?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value)
	return err
}

// Session is the persisted credential pair. Empty Token means signed out.
type Session struct {
	Token    string
	Username string
}

// SaveSession stores the token and the username it was issued for.
func (s Store) SaveSession(ctx context.Context, sess Session) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := s.setMeta(ctx, db, keyAuthToken, sess.Token); err != nil {
		return err
	}
	return s.setMeta(ctx, db, keyUsername, sess.Username)
}

// LoadSession returns the stored credentials. Absence is not an error: a
// fresh install simply yields an empty session.
func (s Store) LoadSession(ctx context.Context) (Session, error) {
	if _, err := os.Stat(s.dbPath()); err != nil {
		return Session{}, nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return Session{}, err
	}
	defer db.Close()
	var sess Session
	if sess.Token, err = s.getMeta(ctx, db, keyAuthToken); err != nil {
		return Session{}, err
	}
	if sess.Username, err = s.getMeta(ctx, db, keyUsername); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ClearSession removes stored credentials. Clearing an already-clear store
// is a no-op, so logout is idempotent.
func (s Store) ClearSession(ctx context.Context) error {
	if _, err := os.Stat(s.dbPath()); err != nil {
		return nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM meta WHERE k IN (?, ?)`, keyAuthToken, keyUsername)
	return err
}

// SaveResidentTab remembers the resident console's active tab so relaunch
// restores it. Best effort.
func (s Store) SaveResidentTab(ctx context.Context, tab string) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return s.setMeta(ctx, db, keyResidentTab, tab)
}

// LoadResidentTab returns the remembered tab, or "" when none was saved.
func (s Store) LoadResidentTab(ctx context.Context) string {
	if _, err := os.Stat(s.dbPath()); err != nil {
		return ""
	}
	db, err := s.open(ctx)
	if err != nil {
		return ""
	}
	defer db.Close()
	tab, err := s.getMeta(ctx, db, keyResidentTab)
	if err != nil {
		return ""
	}
	return tab
}
