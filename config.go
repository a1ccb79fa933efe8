package tracker

import "time"

// Config holds all configuration for a tracker instance. Fields are read
// from the environment in cmd/tracker via env.Parse; setDefaults covers
// programmatic construction.
type Config struct {
	Name        string `env:"TRACKER_SITE_NAME" envDefault:"AffiliateTracker"`
	URL         string `env:"TRACKER_SITE_URL" envDefault:"http://localhost:3000"`
	Description string `env:"TRACKER_SITE_DESCRIPTION"`

	Addr              string `env:"TRACKER_ADDR" envDefault:":3000"`
	DatabasePath      string `env:"TRACKER_DB_PATH" envDefault:"data/tracker.db"`
	TrackDatabasePath string `env:"TRACKER_TRACK_DB_PATH" envDefault:"data/track.db"`

	AdminPassword string `env:"TRACKER_ADMIN_PASSWORD"` // required
	SessionSecret string `env:"TRACKER_SESSION_SECRET"` // required
	APISecret     string `env:"TRACKER_API_SECRET"`     // enables the JSON reporting API
	CookieSecure  bool   `env:"TRACKER_COOKIE_SECURE"`  // set true for HTTPS

	EntryCacheTTL   time.Duration `env:"TRACKER_CACHE_TTL" envDefault:"5m"`
	MetricsEnabled  bool          `env:"TRACKER_METRICS_ENABLED" envDefault:"true"`
	Timezone        string        `env:"TRACKER_TIMEZONE" envDefault:"UTC"`
	CleanupSchedule string        `env:"TRACKER_CLEANUP_SCHEDULE" envDefault:"0 4 * * *"`
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "AffiliateTracker"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/tracker.db"
	}
	if c.TrackDatabasePath == "" {
		c.TrackDatabasePath = "data/track.db"
	}
	if c.EntryCacheTTL == 0 {
		c.EntryCacheTTL = 5 * time.Minute
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.CleanupSchedule == "" {
		c.CleanupSchedule = "0 4 * * *"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
