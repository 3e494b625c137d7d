package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"worldforge/internal/ident"
	"worldforge/internal/logging"
)

// WorldStore wraps the SQLite world database. All generators write
// through it so the registry stays the only source of DDL.
type WorldStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the world database at path and
// ensures every registered table exists. Path ":memory:" is supported
// for tests.
func Open(path string) (*WorldStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer. SQLite serializes writes anyway and a single
	// connection avoids SQLITE_BUSY between pipeline stages.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}

	s := &WorldStore{db: db, path: path}
	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Opened world database at %s", path)
	return s, nil
}

// Close closes the underlying database.
func (s *WorldStore) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for the reconciler and auditor.
func (s *WorldStore) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *WorldStore) Path() string {
	return s.path
}

// EnsureSchema creates every registered table and index that does not
// exist yet. Existing tables are left untouched; drift repair is the
// reconciler's job.
func (s *WorldStore) EnsureSchema() error {
	for _, name := range Tables() {
		if err := s.EnsureTable(name); err != nil {
			return err
		}
	}
	return nil
}

// EnsureTable creates one registered table if missing.
func (s *WorldStore) EnsureTable(name string) error {
	spec, ok := Spec(name)
	if !ok {
		return fmt.Errorf("unknown table %q", name)
	}
	if _, err := s.db.Exec(spec.CreateSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return s.ensureIndexes(spec)
}

// ensureIndexes creates the registered indexes whose columns exist.
// Legacy tables may lack an indexed column until the reconciler adds
// it, so absent columns are skipped rather than treated as errors.
func (s *WorldStore) ensureIndexes(spec TableSpec) error {
	for i, col := range spec.Indexes {
		ok, err := ColumnExists(s.db, spec.Name, col)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := s.db.Exec(spec.IndexSQL()[i]); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.Name, err)
		}
	}
	return nil
}

// World is one row of the worlds table.
type World struct {
	ID          string
	Name        string
	Description string
	Author      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     string
	Tags        []string
	IsActive    bool
	Complexity  int
}

// CreateWorld inserts a new world row and returns its id.
func (s *WorldStore) CreateWorld(ctx context.Context, w *World) (string, error) {
	if w.Name == "" {
		return "", fmt.Errorf("world name is required")
	}
	if w.ID == "" {
		w.ID = ident.New("world")
	}
	if w.Complexity == 0 {
		w.Complexity = 3
	}
	tags, _ := json.Marshal(w.Tags)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worlds (id, name, description, author, version, tags, is_active, complexity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Description, w.Author, w.Version, string(tags),
		boolToInt(w.IsActive), w.Complexity)
	if err != nil {
		return "", fmt.Errorf("failed to create world: %w", err)
	}
	logging.Store("Created world %s (%s)", w.Name, w.ID)
	return w.ID, nil
}

// GetWorld loads one world by id.
func (s *WorldStore) GetWorld(ctx context.Context, id string) (*World, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description,''), COALESCE(author,''),
		       created_at, updated_at, COALESCE(version,''), COALESCE(tags,'[]'),
		       is_active, complexity
		FROM worlds WHERE id = ?`, id)

	var w World
	var tags string
	var active int
	if err := row.Scan(&w.ID, &w.Name, &w.Description, &w.Author,
		&w.CreatedAt, &w.UpdatedAt, &w.Version, &tags, &active, &w.Complexity); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("world %s not found", id)
		}
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	w.IsActive = active != 0
	if err := json.Unmarshal([]byte(tags), &w.Tags); err != nil {
		w.Tags = nil
	}
	return &w, nil
}

// ListWorlds returns all worlds ordered by creation time.
func (s *WorldStore) ListWorlds(ctx context.Context) ([]*World, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description,''), COALESCE(author,''),
		       created_at, updated_at, COALESCE(version,''), COALESCE(tags,'[]'),
		       is_active, complexity
		FROM worlds ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	defer rows.Close()

	var worlds []*World
	for rows.Next() {
		var w World
		var tags string
		var active int
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Author,
			&w.CreatedAt, &w.UpdatedAt, &w.Version, &tags, &active, &w.Complexity); err != nil {
			return nil, fmt.Errorf("failed to scan world row: %w", err)
		}
		w.IsActive = active != 0
		if err := json.Unmarshal([]byte(tags), &w.Tags); err != nil {
			w.Tags = nil
		}
		worlds = append(worlds, &w)
	}
	return worlds, rows.Err()
}

// DeleteWorld removes a world and, via cascading foreign keys, every
// row that belongs to it. Item tables and shop_inventory cascade too,
// except item rows placed by weak reference, which the auditor can
// report afterwards.
func (s *WorldStore) DeleteWorld(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM worlds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete world: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("world %s not found", id)
	}
	logging.Store("Deleted world %s", id)
	return nil
}

// TouchWorld bumps updated_at after a pipeline stage writes.
func (s *WorldStore) TouchWorld(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE worlds SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	return err
}

// Stats returns per-table row counts for one world, keyed by table
// name. Tables without a world_id column (shop_inventory) are counted
// through their parent.
func (s *WorldStore) Stats(ctx context.Context, worldID string) (map[string]int, error) {
	stats := make(map[string]int)
	for _, table := range Tables() {
		var q string
		switch table {
		case "worlds":
			continue
		case "shop_inventory":
			q = `SELECT COUNT(*) FROM shop_inventory si
			     JOIN shops s ON s.id = si.shop_id WHERE s.world_id = ?`
		default:
			q = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE world_id = ?", table)
		}
		var n int
		if err := s.db.QueryRowContext(ctx, q, worldID).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}

// TableExists reports whether a table is present in sqlite_master.
func TableExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// ColumnInfo is one PRAGMA table_info row.
type ColumnInfo struct {
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	PK      bool
}

// TableColumns reads the live column list via PRAGMA table_info.
func TableColumns(db *sql.DB, table string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var cid, notnull, pk int
		var c ColumnInfo
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notnull, &c.Default, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table_info row: %w", err)
		}
		c.NotNull = notnull != 0
		c.PK = pk != 0
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// ColumnExists reports whether table has the named column.
func ColumnExists(db *sql.DB, table, column string) (bool, error) {
	cols, err := TableColumns(db, table)
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, column) {
			return true, nil
		}
	}
	return false, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
