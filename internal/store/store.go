// Package store provides SQLite-backed persistence for tasklist.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/tasklist/internal/models"
	_ "modernc.org/sqlite"
)

// ErrCorrupt indicates a storage slot holds a value that cannot be decoded
// into a valid task collection.
var ErrCorrupt = errors.New("stored tasks are corrupt")

// Store provides access to the tasklist SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		task_id INTEGER,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON journal(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Slot Operations ---

// Slot is a single key in the kv_slots table holding a JSON task array.
type Slot struct {
	db  *sql.DB
	key string
}

// Slot returns the storage slot for key.
func (s *Store) Slot(key string) *Slot {
	return &Slot{db: s.db, key: key}
}

// Save overwrites the slot with the full task collection.
func (sl *Slot) Save(tasks []models.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}

	tx, err := sl.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sl.key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write slot %s: %w", sl.key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Load returns the saved collection. A missing slot yields an empty
// collection and no error; an undecodable slot yields an empty collection
// and an error wrapping ErrCorrupt.
func (sl *Slot) Load() ([]models.Task, error) {
	var value string
	err := sl.db.QueryRow(`SELECT value FROM kv_slots WHERE key = ?`, sl.key).Scan(&value)
	if err == sql.ErrNoRows {
		return []models.Task{}, nil
	}
	if err != nil {
		return []models.Task{}, fmt.Errorf("read slot %s: %w", sl.key, err)
	}
	return decodeTasks([]byte(value))
}

// Raw writes value to the slot verbatim, bypassing encoding. It exists for
// importing data and for exercising corrupt-slot recovery.
func (sl *Slot) Raw(value string) error {
	_, err := sl.db.Exec(
		`INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sl.key, value, time.Now().UTC(),
	)
	return err
}

func encodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// decodeTasks parses a stored value and checks the collection invariants.
func decodeTasks(data []byte) ([]models.Task, error) {
	if len(data) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return []models.Task{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if tasks == nil {
		// JSON null
		return []models.Task{}, nil
	}

	seen := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return []models.Task{}, fmt.Errorf("%w: duplicate id %d", ErrCorrupt, t.ID)
		}
		seen[t.ID] = true
		if _, err := models.ParseDate(t.Date); err != nil {
			return []models.Task{}, fmt.Errorf("%w: task %d: %v", ErrCorrupt, t.ID, err)
		}
	}
	return tasks, nil
}

// --- Journal Operations ---

// WriteJournal inserts a journal entry.
func (s *Store) WriteJournal(ctx context.Context, entry models.JournalEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal (id, action, inputs_hash, outcome, task_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.InputsHash, entry.Outcome, entry.TaskID, entry.Details, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

// ListJournal returns the most recent journal entries, newest first.
func (s *Store) ListJournal(limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, action, inputs_hash, outcome, task_id, details, timestamp FROM journal ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		var taskID sql.NullInt64
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Action, &e.InputsHash, &e.Outcome, &taskID, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		if taskID.Valid {
			e.TaskID = taskID.Int64
		}
		if details.Valid {
			e.Details = details.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
