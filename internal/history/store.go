// Package history persists formatted dictations in a local libSQL database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/go-libsql"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotFound = errors.New("history entry not found")

type Entry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Text       string    `json:"text"`
	Transcript string    `json:"transcript,omitempty"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path, creating it and its directory if needed,
// and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create history directory: %w", err)
	}

	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load history migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectTurso, db, dir)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run history migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add records a dictation. Blank text is rejected.
func (s *Store) Add(ctx context.Context, text, transcript string) (Entry, error) {
	if text == "" {
		return Entry{}, errors.New("history entry text is empty")
	}

	entry := Entry{
		ID:         uuid.NewString(),
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
		Text:       text,
		Transcript: transcript,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history_entries (id, created_at, text, transcript) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.CreatedAt.UnixMilli(), entry.Text, entry.Transcript)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to add history entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first. A limit of zero or less returns all of
// them.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, created_at, text, transcript FROM history_entries ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &createdAt, &entry.Text, &entry.Transcript); err != nil {
			return nil, fmt.Errorf("failed to read history entry: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM history_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every entry and reports how many there were.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM history_entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// Trim keeps the newest keep entries and removes the rest.
func (s *Store) Trim(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE id NOT IN (
			SELECT id FROM history_entries ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}
