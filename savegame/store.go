package savegame

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/milk9111/frobworld/savegame/migrations"
	_ "modernc.org/sqlite"
)

// Slot is one stored save blob.
type Slot struct {
	Name      string
	Level     string
	Tick      uint64
	Data      []byte
	UpdatedAt time.Time
}

// Store persists save slots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite slot store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("savegame: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("savegame: open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("savegame: ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("savegame: run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts or replaces a slot.
func (s *Store) Put(ctx context.Context, slot Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := strings.TrimSpace(slot.Name)
	if name == "" {
		return fmt.Errorf("savegame: slot name is required")
	}
	data := slot.Data
	if data == nil {
		data = []byte{}
	}
	updated := slot.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO save_slots (slot, level, tick, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   level = excluded.level,
		   tick = excluded.tick,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		name, slot.Level, int64(slot.Tick), data, updated.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("savegame: put slot %q: %w", name, err)
	}
	return nil
}

// Get returns one slot, or ErrSlotNotFound.
func (s *Store) Get(ctx context.Context, name string) (Slot, error) {
	if err := ctx.Err(); err != nil {
		return Slot{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT slot, level, tick, data, updated_at FROM save_slots WHERE slot = ?`, name)

	var (
		slot    Slot
		tick    int64
		updated int64
	)
	if err := row.Scan(&slot.Name, &slot.Level, &tick, &slot.Data, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Slot{}, fmt.Errorf("%w: %q", ErrSlotNotFound, name)
		}
		return Slot{}, fmt.Errorf("savegame: get slot %q: %w", name, err)
	}
	slot.Tick = uint64(tick)
	slot.UpdatedAt = time.UnixMilli(updated).UTC()
	return slot, nil
}

// List returns all slots without their data, most recent first.
func (s *Store) List(ctx context.Context) ([]Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT slot, level, tick, updated_at FROM save_slots ORDER BY updated_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("savegame: list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var (
			slot    Slot
			tick    int64
			updated int64
		)
		if err := rows.Scan(&slot.Name, &slot.Level, &tick, &updated); err != nil {
			return nil, fmt.Errorf("savegame: scan slot: %w", err)
		}
		slot.Tick = uint64(tick)
		slot.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, slot)
	}
	return out, rows.Err()
}

// Delete removes a slot. Deleting a missing slot returns ErrSlotNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, name)
	if err != nil {
		return fmt.Errorf("savegame: delete slot %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	return nil
}

const migrationTable = "schema_migrations"

// applyMigrations runs the Up section of each embedded .sql file once, in
// file name order.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var count int
		if err := sqlDB.QueryRow(`SELECT COUNT(1) FROM `+migrationTable+` WHERE name = ?`, file).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if up := upSection(string(content)); strings.TrimSpace(up) != "" {
			if _, err := tx.Exec(up); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("exec migration %s: %w", file, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`, file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

func upSection(content string) string {
	const (
		upMarker   = "-- +migrate Up"
		downMarker = "-- +migrate Down"
	)
	start := strings.Index(content, upMarker)
	if start < 0 {
		return content
	}
	rest := content[start+len(upMarker):]
	if end := strings.Index(rest, downMarker); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
