// Copyright hextree.io, 2026. All rights reserved.

// Package registry persists parsed listing entries in SQLite for lookup
// across listings. See docs/ARCHITECTURE § Registry.
package registry

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hextreeio/microhook/internal/listing"
	"github.com/hextreeio/microhook/pkg/types"
)

const defaultLimit = 1000

// Store manages the syscall registry SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the registry database at dbPath, creating the
// parent directory and the schema if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			sha256 TEXT NOT NULL,
			imported_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			guard TEXT NOT NULL,
			name TEXT NOT NULL,
			UNIQUE(listing_id, guard)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_guard ON entries(guard)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Import reads and parses the listing at path and stores its entries,
// replacing any entries a previous import of the same path left behind.
// Duplicate guards within one listing keep the first occurrence and count
// the rest as Skipped. Parser findings are counted but never fail the
// import; conversion tolerates the same defects.
func (s *Store) Import(ctx context.Context, path string) (types.ImportSummary, error) {
	var summary types.ImportSummary

	data, err := os.ReadFile(path)
	if err != nil {
		return summary, fmt.Errorf("reading listing %s: %w", path, err)
	}

	blocks := listing.Parse(string(data))
	findings := listing.Check(blocks)
	summary.Findings = len(findings)
	for _, f := range findings {
		log.Debugf("%s:%d: %s: %s", path, f.Line, f.Kind, f.Detail)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace semantics: a re-import of the same path drops its old rows.
	var listingID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM listings WHERE path = ?`, path).Scan(&listingID)
	switch {
	case err == nil:
		res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE listing_id = ?`, listingID)
		if err != nil {
			return summary, fmt.Errorf("deleting previous entries: %w", err)
		}
		replaced, _ := res.RowsAffected()
		summary.Replaced = int(replaced)

		_, err = tx.ExecContext(ctx,
			`UPDATE listings SET sha256 = ?, imported_at = ? WHERE id = ?`,
			contentHash(data), time.Now().UTC().Format(time.RFC3339), listingID)
		if err != nil {
			return summary, fmt.Errorf("updating listing record: %w", err)
		}
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO listings (path, sha256, imported_at) VALUES (?, ?, ?)`,
			path, contentHash(data), time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return summary, fmt.Errorf("inserting listing record: %w", err)
		}
		listingID, _ = res.LastInsertId()
	default:
		return summary, fmt.Errorf("looking up listing: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (listing_id, position, guard, name) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]bool)
	position := 0
	for _, e := range listing.Entries(blocks) {
		if seen[e.Guard] {
			log.Debugf("%s: skipping duplicate guard %s", path, e.Guard)
			summary.Skipped++
			continue
		}
		seen[e.Guard] = true
		position++

		if _, err := stmt.ExecContext(ctx, listingID, position, e.Guard, e.Name); err != nil {
			return summary, fmt.Errorf("inserting entry %s: %w", e.Guard, err)
		}
		summary.Imported++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

func contentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// LookupName returns every registry entry with the given syscall name. The
// same name appears under different guards when listings for multiple
// target architectures are imported.
func (s *Store) LookupName(ctx context.Context, name string) ([]types.RegistryEntry, error) {
	return s.List(ctx, QueryOptions{Name: name})
}

// QueryOptions holds filters for registry queries. Zero values mean no
// filtering on that field.
type QueryOptions struct {
	// GuardPrefix restricts results to guards starting with the prefix.
	GuardPrefix string

	// Name restricts results to entries with this exact syscall name.
	Name string

	// Listing restricts results to entries imported from this path.
	Listing string

	// Limit caps the result count. Zero uses the store default (1000).
	Limit int
}

// List returns registry entries matching opts, ordered by listing path and
// entry position.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.RegistryEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT e.guard, e.name, e.position, l.path
		FROM entries e
		JOIN listings l ON e.listing_id = l.id
		WHERE 1=1`)

	if opts.GuardPrefix != "" {
		qb.WriteString(` AND e.guard LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(opts.GuardPrefix)+"%")
	}
	if opts.Name != "" {
		qb.WriteString(` AND e.name = ?`)
		args = append(args, opts.Name)
	}
	if opts.Listing != "" {
		qb.WriteString(` AND l.path = ?`)
		args = append(args, opts.Listing)
	}

	qb.WriteString(` ORDER BY l.path, e.position LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying registry: %w", err)
	}
	defer rows.Close()

	var results []types.RegistryEntry
	for rows.Next() {
		var e types.RegistryEntry
		if err := rows.Scan(&e.Guard, &e.Name, &e.Position, &e.Listing); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// escapeLike escapes LIKE metacharacters so a guard prefix containing an
// underscore (they all do) matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
