package track

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// ErrClickNotFound is returned when a click ID cannot be resolved.
var ErrClickNotFound = sql.ErrNoRows

// Store provides database operations for clicks and conversions. Tracking
// data lives in its own database so heavy click traffic never contends with
// the campaign store.
type Store struct {
	db *sql.DB
}

// NewStore creates a new tracking store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create track db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open track db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the necessary tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS clicks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			click_id TEXT NOT NULL UNIQUE,
			entry_slug TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			referrer TEXT,
			sub TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_clicks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_slug TEXT NOT NULL,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			click_id TEXT NOT NULL,
			entry_slug TEXT NOT NULL,
			txn_id TEXT NOT NULL DEFAULT '',
			payout_cents INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_clicks_entry_time ON clicks(entry_slug, timestamp);
		CREATE INDEX IF NOT EXISTS idx_clicks_visitor ON clicks(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_clicks_timestamp ON clicks(timestamp);

		CREATE INDEX IF NOT EXISTS idx_bot_clicks_timestamp ON bot_clicks(timestamp);

		CREATE INDEX IF NOT EXISTS idx_conversions_entry_time ON conversions(entry_slug, timestamp);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_conversions_txn
			ON conversions(entry_slug, txn_id) WHERE txn_id != '';

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

// migrate applies incremental schema migrations based on a version stored in the settings table.
func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}

	if version < currentSchemaVersion {
		version = currentSchemaVersion
	}

	return s.SetSetting("schema_version", strconv.Itoa(version))
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

// SaveClick stores a new click.
func (s *Store) SaveClick(c *Click) error {
	_, err := s.db.Exec(`
		INSERT INTO clicks (click_id, entry_slug, visitor_id, ip_hash, browser, os, device, referrer, sub, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClickID, c.EntrySlug, c.VisitorID, c.IPHash, c.Browser, c.OS, c.Device, c.Referrer, c.Sub, c.Timestamp.UTC())
	return err
}

// SaveBotClick stores a crawler hit.
func (s *Store) SaveBotClick(b *BotClick) error {
	_, err := s.db.Exec(`
		INSERT INTO bot_clicks (entry_slug, bot_name, ip_hash, user_agent, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		b.EntrySlug, b.BotName, b.IPHash, b.UserAgent, b.Timestamp.UTC())
	return err
}

// ResolveClick returns the click for a click ID, for postback attribution.
func (s *Store) ResolveClick(clickID string) (Click, error) {
	var c Click
	var referrer, sub sql.NullString
	err := s.db.QueryRow(`
		SELECT id, click_id, entry_slug, visitor_id, ip_hash, browser, os, device, referrer, sub, timestamp
		FROM clicks WHERE click_id = ?`, clickID).
		Scan(&c.ID, &c.ClickID, &c.EntrySlug, &c.VisitorID, &c.IPHash, &c.Browser, &c.OS, &c.Device, &referrer, &sub, &c.Timestamp)
	if err != nil {
		return Click{}, err
	}
	c.Referrer = referrer.String
	c.Sub = sub.String
	return c, nil
}

// SaveConversion stores a conversion. Returns false without error when the
// network already delivered this transaction (same entry and txn_id), which
// keeps replayed postbacks idempotent.
func (s *Store) SaveConversion(cv *Conversion) (bool, error) {
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO conversions (click_id, entry_slug, txn_id, payout_cents, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cv.ClickID, cv.EntrySlug, cv.TxnID, cv.PayoutCents, cv.Status, cv.Timestamp.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats holds aggregated click and conversion data for one campaign.
type Stats struct {
	Period       string      `json:"period"`
	Clicks       int         `json:"clicks"`
	Uniques      int         `json:"unique_visitors"`
	Bots         int         `json:"bot_hits"`
	Conversions  int         `json:"conversions"`
	RevenueCents int64       `json:"revenue_cents"`
	Daily        []DayCount  `json:"daily_clicks"`
	Referrers    []NameCount `json:"referrers"`
	Devices      []NameCount `json:"devices"`
}

// DayCount is clicks per day.
type DayCount struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

// NameCount is a dimension breakdown row (referrer, device).
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Totals is the all-time rollup for one campaign.
type Totals struct {
	Clicks       int   `json:"clicks"`
	Conversions  int   `json:"conversions"`
	RevenueCents int64 `json:"revenue_cents"`
}

// EntryStats returns aggregated statistics for one campaign over a time
// range. The seven queries run concurrently; each goroutine writes only its
// own field, so the group needs no extra locking.
func (s *Store) EntryStats(ctx context.Context, slug string, from, to time.Time) (*Stats, error) {
	stats := &Stats{
		Period:    from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		Daily:     []DayCount{},
		Referrers: []NameCount{},
		Devices:   []NameCount{},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM clicks
			WHERE entry_slug = ? AND timestamp >= ? AND timestamp < ?`,
			slug, from.UTC(), to.UTC()).Scan(&stats.Clicks)
		if err != nil {
			return fmt.Errorf("count clicks: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(DISTINCT visitor_id) FROM clicks
			WHERE entry_slug = ? AND timestamp >= ? AND timestamp < ?`,
			slug, from.UTC(), to.UTC()).Scan(&stats.Uniques)
		if err != nil {
			return fmt.Errorf("count uniques: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM bot_clicks
			WHERE entry_slug = ? AND timestamp >= ? AND timestamp < ?`,
			slug, from.UTC(), to.UTC()).Scan(&stats.Bots)
		if err != nil {
			return fmt.Errorf("count bot hits: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*), COALESCE(SUM(payout_cents), 0) FROM conversions
			WHERE entry_slug = ? AND timestamp >= ? AND timestamp < ? AND status != ?`,
			slug, from.UTC(), to.UTC(), ConversionRejected).Scan(&stats.Conversions, &stats.RevenueCents)
		if err != nil {
			return fmt.Errorf("count conversions: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT strftime('%Y-%m-%d', timestamp) AS day, COUNT(*) FROM clicks
			WHERE entry_slug = ? AND timestamp >= ? AND timestamp < ?
			GROUP BY day ORDER BY day`,
			slug, from.UTC(), to.UTC())
		if err != nil {
			return fmt.Errorf("daily clicks: %w", err)
		}
		defer rows.Close()
		var daily []DayCount
		for rows.Next() {
			var d DayCount
			if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
				return fmt.Errorf("daily clicks: %w", err)
			}
			daily = append(daily, d)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("daily clicks: %w", err)
		}
		if daily != nil {
			stats.Daily = daily
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.queryNameCounts(ctx, "referrer", slug, from, to)
		if err != nil {
			return fmt.Errorf("referrer stats: %w", err)
		}
		stats.Referrers = rows
		return nil
	})

	g.Go(func() error {
		rows, err := s.queryNameCounts(ctx, "device", slug, from, to)
		if err != nil {
			return fmt.Errorf("device stats: %w", err)
		}
		stats.Devices = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// queryNameCounts groups clicks by one dimension column. column is always a
// compile-time constant, never user input.
func (s *Store) queryNameCounts(ctx context.Context, column, slug string, from, to time.Time) ([]NameCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(`+column+`, ''), COUNT(*) AS n FROM clicks
		WHERE entry_slug = ? AND timestamp >= ? AND timestamp < ?
		GROUP BY `+column+` ORDER BY n DESC LIMIT 6`,
		slug, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []NameCount{}
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

// TotalsByEntry returns the all-time click/conversion/revenue rollup for
// every campaign that has any traffic. Rejected conversions are excluded.
func (s *Store) TotalsByEntry() (map[string]Totals, error) {
	totals := make(map[string]Totals)

	rows, err := s.db.Query(`SELECT entry_slug, COUNT(*) FROM clicks GROUP BY entry_slug`)
	if err != nil {
		return nil, fmt.Errorf("click totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slug string
		var n int
		if err := rows.Scan(&slug, &n); err != nil {
			return nil, fmt.Errorf("click totals: %w", err)
		}
		t := totals[slug]
		t.Clicks = n
		totals[slug] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("click totals: %w", err)
	}

	crows, err := s.db.Query(`
		SELECT entry_slug, COUNT(*), COALESCE(SUM(payout_cents), 0) FROM conversions
		WHERE status != ? GROUP BY entry_slug`, ConversionRejected)
	if err != nil {
		return nil, fmt.Errorf("conversion totals: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var slug string
		var n int
		var revenue int64
		if err := crows.Scan(&slug, &n, &revenue); err != nil {
			return nil, fmt.Errorf("conversion totals: %w", err)
		}
		t := totals[slug]
		t.Conversions = n
		t.RevenueCents = revenue
		totals[slug] = t
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("conversion totals: %w", err)
	}

	return totals, nil
}

// RecentConversions returns the newest conversions across all campaigns.
func (s *Store) RecentConversions(limit int) ([]Conversion, error) {
	rows, err := s.db.Query(`
		SELECT id, click_id, entry_slug, txn_id, payout_cents, status, timestamp
		FROM conversions ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var cv Conversion
		if err := rows.Scan(&cv.ID, &cv.ClickID, &cv.EntrySlug, &cv.TxnID, &cv.PayoutCents, &cv.Status, &cv.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// CleanupOld removes clicks and bot clicks older than the retention period.
// Conversions are financial records and are never deleted.
func (s *Store) CleanupOld(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := s.db.Exec(`DELETE FROM clicks WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup clicks: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_clicks WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_clicks: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs CleanupOld on a cron schedule in the given
// location. Returns a stop function. logf receives cleanup failures; nil
// falls back to stdout.
func (s *Store) StartCleanupScheduler(schedule string, loc *time.Location, retentionDays int, logf func(format string, args ...interface{})) (func(), error) {
	if logf == nil {
		logf = func(format string, args ...interface{}) {
			fmt.Printf(format+"\n", args...)
		}
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(schedule, func() {
		if err := s.CleanupOld(retentionDays); err != nil {
			logf("click cleanup: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("cleanup schedule %q: %w", schedule, err)
	}
	c.Start()
	return func() { c.Stop() }, nil
}
