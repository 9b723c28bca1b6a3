package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// SQLiteStore implements Repository on a local SQLite database. Cases are kept as JSON
// payloads so the schema does not follow every model change.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and applies pending migrations
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an already open connection without migrating it
func NewWithDB(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

type pendingRow struct {
	ID        string    `db:"id"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func decode(r pendingRow) (models.Case, error) {
	var c models.Case
	if err := json.Unmarshal([]byte(r.Payload), &c); err != nil {
		return models.Case{}, fmt.Errorf("decoding case %s: %w", r.ID, err)
	}
	c.ID = r.ID
	c.Source = models.OriginLocalPending
	return c, nil
}

// Get returns the pending case with the given id
func (s *SQLiteStore) Get(ctx context.Context, id string) (models.Case, error) {
	var r pendingRow
	err := s.db.GetContext(ctx, &r, "SELECT id, payload, created_at, updated_at FROM pending_cases WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Case{}, ErrNotFound
	}
	if err != nil {
		return models.Case{}, &PersistenceError{Op: "get", ID: id, Err: err}
	}
	c, err := decode(r)
	if err != nil {
		return models.Case{}, &PersistenceError{Op: "get", ID: id, Err: err}
	}
	return c, nil
}

// Put inserts or replaces a pending case
func (s *SQLiteStore) Put(ctx context.Context, c models.Case) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return &PersistenceError{Op: "put", ID: c.ID, Err: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pending_cases (id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		c.ID, string(payload), c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		return &PersistenceError{Op: "put", ID: c.ID, Err: err}
	}
	return nil
}

// Delete removes a pending case. Deleting an absent id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pending_cases WHERE id = ?", id); err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

// List returns all pending cases, oldest first. Rows that no longer decode are skipped
// so one corrupt record cannot hide the rest of the queue.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Case, error) {
	var rows []pendingRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, payload, created_at, updated_at FROM pending_cases ORDER BY created_at, id")
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	cases := make([]models.Case, 0, len(rows))
	for _, r := range rows {
		c, err := decode(r)
		if err != nil {
			continue
		}
		cases = append(cases, c)
	}
	return cases, nil
}
