package tracker

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides CRUD operations for campaign
// entries, uploaded icons, and operator settings.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    slug TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    network TEXT NOT NULL,
    target_url TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    start_date TEXT NOT NULL,
    spend_cents INTEGER NOT NULL DEFAULT 0,
    note TEXT NOT NULL DEFAULT '',
    icon TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_status ON entries(status);

CREATE TABLE IF NOT EXISTS icons (
    filename TEXT PRIMARY KEY,
    entry_slug TEXT NOT NULL,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

const entryColumns = `slug, name, network, target_url, status, start_date, spend_cents, note, icon, created_at`

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	err := row.Scan(&e.Slug, &e.Name, &e.Network, &e.TargetURL, &e.Status, &e.StartDate, &e.SpendCents, &e.Note, &e.Icon, &e.CreatedAt)
	return e, err
}

// ListEntries returns entries ordered by start date descending. If status is
// non-empty, results are filtered to that status.
func (s *Store) ListEntries(status string) ([]Entry, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query(`SELECT ` + entryColumns + ` FROM entries ORDER BY start_date DESC, slug ASC`)
	} else {
		rows, err = s.db.Query(`SELECT `+entryColumns+` FROM entries WHERE status = ? ORDER BY start_date DESC, slug ASC`, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns a single entry by slug.
func (s *Store) GetEntry(slug string) (Entry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE slug = ?`, slug)
	return scanEntry(row)
}

// SaveEntry upserts an entry. CreatedAt is preserved on updates and set on
// first insert.
func (s *Store) SaveEntry(e Entry) error {
	if e.CreatedAt == "" {
		existing, err := s.GetEntry(e.Slug)
		switch {
		case err == nil:
			e.CreatedAt = existing.CreatedAt
		case err == sql.ErrNoRows:
			e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		default:
			return err
		}
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Slug, e.Name, e.Network, e.TargetURL, e.Status, e.StartDate, e.SpendCents, e.Note, e.Icon, e.CreatedAt)
	return err
}

// DeleteEntry removes an entry and its icon metadata by slug.
func (s *Store) DeleteEntry(slug string) error {
	if _, err := s.db.Exec(`DELETE FROM icons WHERE entry_slug = ?`, slug); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM entries WHERE slug = ?`, slug)
	return err
}

// SetEntryIcon updates only the icon filename of an entry.
func (s *Store) SetEntryIcon(slug, filename string) error {
	_, err := s.db.Exec(`UPDATE entries SET icon = ? WHERE slug = ?`, filename, slug)
	return err
}

// ListIcons returns all stored icon metadata ordered by upload time descending.
func (s *Store) ListIcons() ([]Icon, error) {
	rows, err := s.db.Query(`SELECT filename, entry_slug, original_name, width, height, size, uploaded_at FROM icons ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icons []Icon
	for rows.Next() {
		var ic Icon
		if err := rows.Scan(&ic.Filename, &ic.EntrySlug, &ic.OriginalName, &ic.Width, &ic.Height, &ic.Size, &ic.UploadedAt); err != nil {
			return nil, err
		}
		icons = append(icons, ic)
	}
	return icons, rows.Err()
}

// SaveIcon stores icon metadata (upsert by filename).
func (s *Store) SaveIcon(ic Icon) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO icons (filename, entry_slug, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ic.Filename, ic.EntrySlug, ic.OriginalName, ic.Width, ic.Height, ic.Size, ic.UploadedAt)
	return err
}

// DeleteIcon removes icon metadata by filename.
func (s *Store) DeleteIcon(filename string) error {
	_, err := s.db.Exec(`DELETE FROM icons WHERE filename = ?`, filename)
	return err
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}
