// Package tracker is a self-hosted affiliate campaign tracker built with Go,
// Echo, and templ. It serves tracking links that record clicks, receives
// conversion postbacks from affiliate networks, and shows spend, revenue,
// and ROI per campaign on a session-guarded dashboard.
package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/track"
)

// App is the central tracker application. It wires together the campaign
// store, the click store, the entry cache, the tracking handler, middleware,
// and routes.
type App struct {
	Config     Config
	Echo       *echo.Echo
	Store      *Store
	Cache      *EntryCache
	TrackStore *track.Store
	Networks   *NetworkCatalog

	loginLimiter *LoginLimiter
	trackHandler *track.Handler
	customRoutes []func(*App)
	staticDir    string
	stopCleanup  func()
}

// New creates a tracker App: it opens both databases, loads the network
// catalog, and registers middleware and routes. The returned App serves
// requests through a.Echo but is not listening yet; call Start for that.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()

	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("tracker: AdminPassword is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("tracker: SessionSecret is required")
	}

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("tracker: init store: %w", err)
	}
	a.Store = store

	trackStore, err := track.NewStore(cfg.TrackDatabasePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("tracker: init track store: %w", err)
	}
	a.TrackStore = trackStore

	if err := track.InitSalt(trackStore); err != nil {
		a.Close()
		return nil, fmt.Errorf("tracker: init fingerprint salt: %w", err)
	}
	if err := track.InitPostbackKey(trackStore); err != nil {
		a.Close()
		return nil, fmt.Errorf("tracker: init postback key: %w", err)
	}
	if err := a.ensureFeedToken(); err != nil {
		a.Close()
		return nil, fmt.Errorf("tracker: init feed token: %w", err)
	}

	catalog, err := embeddedAssets.ReadFile("assets/networks.yaml")
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("tracker: read network catalog: %w", err)
	}
	networks, err := loadNetworkCatalog(catalog)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("tracker: load network catalog: %w", err)
	}
	a.Networks = networks

	a.Cache = NewEntryCache(a.Store, cfg.EntryCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.trackHandler = track.NewHandler(a.TrackStore, &cacheResolver{cache: a.Cache})

	a.setupMiddleware()
	a.setupRoutes()
	a.setupAPIRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	return a, nil
}

// Start schedules the click-retention cleanup and begins serving on
// Config.Addr. It blocks until the server shuts down.
func (a *App) Start() error {
	loc, err := time.LoadLocation(a.Config.Timezone)
	if err != nil {
		return fmt.Errorf("tracker: load timezone %q: %w", a.Config.Timezone, err)
	}
	days, err := a.retentionDays()
	if err != nil {
		return fmt.Errorf("tracker: read retention: %w", err)
	}
	stop, err := a.TrackStore.StartCleanupScheduler(a.Config.CleanupSchedule, loc, days, a.Echo.Logger.Errorf)
	if err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	a.stopCleanup = stop

	if err := a.sweepOrphanIcons(); err != nil {
		a.Echo.Logger.Errorf("icon sweep: %v", err)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are served under /public/ next to the operator's
	// static dir, so a custom app.css in that dir wins over the shipped one.
	assetsFS, _ := fs.Sub(embeddedAssets, "assets")
	assetsHandler := http.FileServer(http.FS(assetsFS))
	e.GET("/public/app.css", echo.WrapHandler(http.StripPrefix("/public/", assetsHandler)))
	e.GET("/public/app.js", echo.WrapHandler(http.StripPrefix("/public/", assetsHandler)))

	// Operator static files: uploaded campaign icons and overrides.
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/", a.handleLanding)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed/conversions.xml", a.handleConversionsFeed)
	e.GET("/login/", a.handleLogin)
	e.POST("/login/", a.handleLoginPost)
	e.POST("/logout/", handleLogout)

	// Tracking links, postbacks, and the per-campaign stats JSON.
	a.trackHandler.RegisterRoutes(e, a.requireAuth)

	// Dashboard
	app := e.Group("/app", a.requireAuth)
	app.GET("/", a.handleDashboard)
	app.GET("/entries/", a.handleEntriesList)
	app.GET("/entries/new/", a.handleEntryNew)
	app.POST("/entries/", a.handleEntryCreate)
	app.GET("/entries/:slug/", a.handleEntryEdit)
	app.POST("/entries/:slug/", a.handleEntryUpdate)
	app.DELETE("/entries/:slug/", a.handleEntryDelete)
	app.POST("/entries/:slug/icon/", a.handleIconUpload)
	app.GET("/stats/:slug/", a.handleStatsFragment)
	app.GET("/fragments/conversions/", a.handleConversionsFragment)
	app.GET("/settings/", a.handleSettings)
	app.POST("/settings/", a.handleSettingsSave)
	app.POST("/settings/rotate/", a.handleSettingsRotate)

	if a.Config.MetricsEnabled {
		e.GET("/metrics", echoprometheus.NewHandler())
	}
}

// Close releases everything New allocated. Call it when the app shuts down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.trackHandler != nil {
		a.trackHandler.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.TrackStore != nil {
		a.TrackStore.Close()
	}
	return nil
}

// cacheResolver adapts the entry cache to the resolver interface the track
// package redirects through.
type cacheResolver struct {
	cache *EntryCache
}

func (r *cacheResolver) ResolveTarget(slug string) (track.Target, error) {
	entry, err := r.cache.GetEntry(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return track.Target{}, track.ErrUnknownSlug
		}
		return track.Target{}, err
	}
	return track.Target{URL: entry.TargetURL, Status: entry.Status}, nil
}
