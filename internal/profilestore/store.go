// Package profilestore persists CAP profiles keyed by session id. Opaque to
// the pipeline: it only needs Save and Get. Postgres-backed when a DSN is
// configured, JSON-file-backed otherwise, with an LRU read cache in front of
// the database path.
package profilestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vantage/internal/types"
)

// ErrNotFound is returned when no profile exists for a session id.
var ErrNotFound = errors.New("profile not found")

const schema = `CREATE TABLE IF NOT EXISTS cap_profiles (
	session_id TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store holds CAP profiles. Exactly one of db/path is active.
type Store struct {
	path string
	db   *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	mu   sync.RWMutex
	byID map[string]types.CAPProfile

	cache *lru.Cache[string, types.CAPProfile]
}

// New returns a file-backed store persisting to path (empty path keeps
// profiles in memory only).
func New(path string) *Store {
	s := &Store{path: path, byID: map[string]types.CAPProfile{}}
	s.loadFile()
	return s
}

// NewPostgres returns a database-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, types.CAPProfile](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv picks Postgres when CAP_STORE_PG_DSN is set, the file store
// otherwise.
func NewFromEnv(path string) (*Store, error) {
	dsn := strings.TrimSpace(os.Getenv("CAP_STORE_PG_DSN"))
	if dsn == "" {
		return New(path), nil
	}
	return NewPostgres(dsn)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, schema)
	})
	return s.schemaErr
}

// Save stores the profile under sessionID, overwriting any previous value.
func (s *Store) Save(ctx context.Context, sessionID string, profile types.CAPProfile) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	if s.db != nil {
		if err := s.ensureSchema(ctx); err != nil {
			return err
		}
		payload, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO cap_profiles (session_id, payload) VALUES ($1, $2)
			 ON CONFLICT (session_id) DO UPDATE SET payload = EXCLUDED.payload`,
			sessionID, payload)
		if err != nil {
			return err
		}
		s.cache.Add(sessionID, profile)
		return nil
	}

	// The lock spans the write and rename so concurrent saves cannot
	// interleave on the shared temp file.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sessionID] = profile
	return s.persistFileLocked()
}

// Get loads the profile for sessionID.
func (s *Store) Get(ctx context.Context, sessionID string) (types.CAPProfile, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return types.CAPProfile{}, fmt.Errorf("session id is required")
	}

	if s.db != nil {
		if profile, ok := s.cache.Get(sessionID); ok {
			return profile, nil
		}
		if err := s.ensureSchema(ctx); err != nil {
			return types.CAPProfile{}, err
		}
		var payload []byte
		err := s.db.QueryRowContext(ctx,
			`SELECT payload FROM cap_profiles WHERE session_id = $1`, sessionID).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			return types.CAPProfile{}, ErrNotFound
		}
		if err != nil {
			return types.CAPProfile{}, err
		}
		var profile types.CAPProfile
		if err := json.Unmarshal(payload, &profile); err != nil {
			return types.CAPProfile{}, err
		}
		s.cache.Add(sessionID, profile)
		return profile, nil
	}

	s.mu.RLock()
	profile, ok := s.byID[sessionID]
	s.mu.RUnlock()
	if !ok {
		return types.CAPProfile{}, ErrNotFound
	}
	return profile, nil
}

// Close releases the database handle, if any.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) loadFile() {
	if s.path == "" {
		return
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var byID map[string]types.CAPProfile
	if err := json.Unmarshal(raw, &byID); err != nil {
		return
	}
	if byID != nil {
		s.byID = byID
	}
}

// persistFileLocked writes the current map through a temp file and rename.
// Callers must hold s.mu.
func (s *Store) persistFileLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.byID, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
