package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/beerlens/backend/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a selection store backed by a SQLite database.
// Selections survive process restarts; sessions idle for longer than TTL are
// hidden from reads and deleted by Prune or a running sweeper.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	ttl    time.Duration
	mu     sync.Mutex
	now    func() time.Time
}

// NewSQLiteStore opens or creates the database at dbPath.
// ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string, ttl time.Duration) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", domain.ErrStoreUnavailable, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		ttl:    ttl,
		now:    time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// TTL returns the idle time after which a session expires.
func (s *SQLiteStore) TTL() time.Duration {
	return s.ttl
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS selection_entries (
		session_id TEXT NOT NULL,
		key TEXT NOT NULL,
		url TEXT NOT NULL,
		img TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_selection_session_position
		ON selection_entries(session_id, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get retrieves one entry of a session
func (s *SQLiteStore) Get(ctx context.Context, sessionID, key string) (*domain.SelectionEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, url, img FROM selection_entries WHERE session_id = ? AND key = ? AND updated_at > ?`,
		sessionID, key, s.cutoff())

	var entry domain.SelectionEntry
	if err := row.Scan(&entry.Key, &entry.SourceURL, &entry.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &entry, nil
}

// Set inserts an entry at the end of the session, or updates it in place when the key exists
func (s *SQLiteStore) Set(ctx context.Context, sessionID string, entry domain.SelectionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixNano()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	// Expired entries must not be revived by the refresh below
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM selection_entries WHERE session_id = ? AND updated_at <= ?`,
		sessionID, s.cutoff()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM selection_entries WHERE session_id = ?`,
		sessionID).Scan(&next); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO selection_entries (session_id, key, url, img, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET url = excluded.url, img = excluded.img, updated_at = excluded.updated_at`,
		sessionID, entry.Key, entry.SourceURL, entry.ImageURL, next, now); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := touch(ctx, tx, sessionID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Remove deletes an entry from a session; removing an absent key is a no-op.
// The session's remaining entries are refreshed like any other write.
func (s *SQLiteStore) Remove(ctx context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	// Expired entries must not be revived by the refresh below
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM selection_entries WHERE session_id = ? AND (key = ? OR updated_at <= ?)`,
		sessionID, key, s.cutoff()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := touch(ctx, tx, sessionID, s.now().UnixNano()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes every entry of a session
func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM selection_entries WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// List returns the session's live entries in insertion order
func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]domain.SelectionEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, url, img FROM selection_entries
		 WHERE session_id = ? AND updated_at > ?
		 ORDER BY position ASC`, sessionID, s.cutoff())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	entries := []domain.SelectionEntry{}
	for rows.Next() {
		var entry domain.SelectionEntry
		if err := rows.Scan(&entry.Key, &entry.SourceURL, &entry.ImageURL); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return entries, nil
}

// Prune deletes every session that has been idle for longer than the TTL
// and returns the number of deleted entries.
func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM selection_entries WHERE updated_at <= ?`, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return res.RowsAffected()
}

// StartSweeper runs Prune every interval in the background until the
// returned stop function is called. onSweep, when set, receives the result
// of each pass. stop waits for a running pass and is safe to call twice.
func (s *SQLiteStore) StartSweeper(interval time.Duration, onSweep func(deleted int64, err error)) (stop func()) {
	if interval <= 0 {
		interval = s.ttl
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.Prune(ctx)
				if ctx.Err() != nil {
					return
				}
				if onSweep != nil {
					onSweep(deleted, err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// cutoff is the newest updated_at (unix nanoseconds) an expired session may carry
func (s *SQLiteStore) cutoff() int64 {
	return s.now().Add(-s.ttl).UnixNano()
}

// touch refreshes the expiry of every entry in a session
func touch(ctx context.Context, tx *sql.Tx, sessionID string, now int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE selection_entries SET updated_at = ? WHERE session_id = ?`, now, sessionID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
