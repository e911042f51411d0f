package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Persisted is what survives a restart.
type Persisted struct {
	Tokens  Tokens
	Profile *Profile
	SavedAt time.Time
}

// Persister stores the session between runs.
type Persister interface {
	Load(ctx context.Context) (Persisted, bool, error)
	Save(ctx context.Context, p Persisted) error
	Clear(ctx context.Context) error
}

// Preferences stores small UI selections between runs.
type Preferences interface {
	Preference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// MemoryPersister keeps everything in process.
type MemoryPersister struct {
	mu    sync.Mutex
	saved *Persisted
	prefs map[string]string
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{prefs: make(map[string]string)}
}

func (m *MemoryPersister) Load(ctx context.Context) (Persisted, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return Persisted{}, false, nil
	}
	return *m.saved, true, nil
}

func (m *MemoryPersister) Save(ctx context.Context, p Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &p
	return nil
}

func (m *MemoryPersister) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}

func (m *MemoryPersister) Preference(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.prefs[key]
	return v, ok, nil
}

func (m *MemoryPersister) SetPreference(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = value
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	profile       TEXT,
	saved_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLitePersister keeps the session in a local SQLite file.
type SQLitePersister struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (and creates) the session database at path.
func OpenSQLite(path string) (*SQLitePersister, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	// One writer keeps ":memory:" databases on a single connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping session store: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}

	return &SQLitePersister{conn: conn, path: path}, nil
}

// Path returns the database file path.
func (p *SQLitePersister) Path() string { return p.path }

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.conn.Close()
}

// Ping checks the database is reachable.
func (p *SQLitePersister) Ping(ctx context.Context) error {
	return p.conn.PingContext(ctx)
}

func (p *SQLitePersister) Load(ctx context.Context) (Persisted, bool, error) {
	var (
		out     Persisted
		profile sql.NullString
		savedAt string
	)
	err := p.conn.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, profile, saved_at FROM session WHERE id = 1`,
	).Scan(&out.Tokens.AccessToken, &out.Tokens.RefreshToken, &profile, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Persisted{}, false, nil
	}
	if err != nil {
		return Persisted{}, false, fmt.Errorf("load session: %w", err)
	}

	if profile.Valid && profile.String != "" {
		var pr Profile
		if err := json.Unmarshal([]byte(profile.String), &pr); err != nil {
			return Persisted{}, false, fmt.Errorf("decode profile: %w", err)
		}
		out.Profile = &pr
	}
	out.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
	return out, true, nil
}

func (p *SQLitePersister) Save(ctx context.Context, s Persisted) error {
	var profile sql.NullString
	if s.Profile != nil {
		raw, err := json.Marshal(s.Profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		profile = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := p.conn.ExecContext(ctx, `
		INSERT INTO session (id, access_token, refresh_token, profile, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			profile = excluded.profile,
			saved_at = excluded.saved_at`,
		s.Tokens.AccessToken, s.Tokens.RefreshToken, profile, s.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *SQLitePersister) Clear(ctx context.Context) error {
	if _, err := p.conn.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (p *SQLitePersister) Preference(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := p.conn.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load preference %s: %w", key, err)
	}
	return v, true, nil
}

func (p *SQLitePersister) SetPreference(ctx context.Context, key, value string) error {
	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}

var (
	_ Persister   = (*MemoryPersister)(nil)
	_ Preferences = (*MemoryPersister)(nil)
	_ Persister   = (*SQLitePersister)(nil)
	_ Preferences = (*SQLitePersister)(nil)
)
