package track

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Target is a resolved tracking-link destination.
type Target struct {
	URL    string
	Status string // active, paused, archived
}

// ErrUnknownSlug is returned by TargetResolver implementations when no
// campaign owns the slug.
var ErrUnknownSlug = errors.New("track: unknown slug")

// TargetResolver resolves a campaign slug to its destination.
type TargetResolver interface {
	ResolveTarget(slug string) (Target, error)
}

// Handler handles tracking HTTP requests.
type Handler struct {
	store        *Store
	resolver     TargetResolver
	clickLimiter *rateLimiter
}

// NewHandler creates a new tracking handler.
// The redirect endpoint is rate-limited to 120 requests per IP per minute.
func NewHandler(store *Store, resolver TargetResolver) *Handler {
	return &Handler{
		store:        store,
		resolver:     resolver,
		clickLimiter: newRateLimiter(120, time.Minute),
	}
}

// Close stops the handler's background rate limiter.
func (h *Handler) Close() {
	h.clickLimiter.stop()
}

// Input validation limits for the public endpoints.
const (
	maxSubLen       = 120
	maxUserAgentLen = 512
	maxClickIDLen   = 64
	maxTxnIDLen     = 128
)

// Redirect serves a tracking link: it records the click and 302s to the
// campaign destination with macros filled in. Paused campaigns pass traffic
// through unrecorded; archived and unknown slugs 404.
func (h *Handler) Redirect(c echo.Context) error {
	if !h.clickLimiter.allow(c.RealIP()) {
		recordRedirect(outcomeLimited)
		return c.NoContent(http.StatusTooManyRequests)
	}

	slug := c.Param("slug")
	target, err := h.resolver.ResolveTarget(slug)
	if err != nil {
		if err != ErrUnknownSlug {
			c.Logger().Errorf("resolve %q: %v", slug, err)
		}
		recordRedirect(outcomeUnknown)
		return echo.ErrNotFound
	}
	if target.Status == "archived" {
		recordRedirect(outcomeUnknown)
		return echo.ErrNotFound
	}

	sub := c.QueryParam("sub")
	if len(sub) > maxSubLen {
		sub = sub[:maxSubLen]
	}

	if target.Status == "paused" {
		recordRedirect(outcomePaused)
		return c.Redirect(http.StatusFound, SubstituteMacros(target.URL, "", sub))
	}

	ip := c.RealIP()
	ua := c.Request().UserAgent()

	if IsBot(ua) {
		if len(ua) > maxUserAgentLen {
			ua = ua[:maxUserAgentLen]
		}
		bot := &BotClick{
			EntrySlug: slug,
			BotName:   BotName(ua),
			IPHash:    HashIP(ip),
			UserAgent: ua,
			Timestamp: time.Now().UTC(),
		}
		if err := h.store.SaveBotClick(bot); err != nil {
			c.Logger().Errorf("save bot click: %v", err)
		}
		recordRedirect(outcomeBot)
		return c.Redirect(http.StatusFound, SubstituteMacros(target.URL, "", sub))
	}

	browser, osName, device := ParseUserAgent(ua)
	clickID := uuid.NewString()
	click := &Click{
		ClickID:   clickID,
		EntrySlug: slug,
		VisitorID: VisitorID(ip, ua),
		IPHash:    HashIP(ip),
		Browser:   browser,
		OS:        osName,
		Device:    device,
		Referrer:  CleanReferrer(c.Request().Referer()),
		Sub:       sub,
		Timestamp: time.Now().UTC(),
	}
	// A failed insert must not cost the visitor the redirect.
	if err := h.store.SaveClick(click); err != nil {
		c.Logger().Errorf("save click: %v", err)
	}
	recordRedirect(outcomeRecorded)
	recordClick(slug)
	return c.Redirect(http.StatusFound, SubstituteMacros(target.URL, clickID, sub))
}

// Postback accepts server-to-server conversion notifications from affiliate
// networks, via GET or POST.
func (h *Handler) Postback(c echo.Context) error {
	key := param(c, "key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(PostbackKey())) != 1 {
		recordPostback(postbackRejected)
		return c.String(http.StatusForbidden, "bad key")
	}

	clickID := param(c, "click_id")
	if clickID == "" || len(clickID) > maxClickIDLen {
		recordPostback(postbackInvalid)
		return c.String(http.StatusBadRequest, "missing click_id")
	}

	payout, err := ParseMoneyCents(param(c, "payout"))
	if err != nil {
		recordPostback(postbackInvalid)
		return c.String(http.StatusBadRequest, "bad payout")
	}

	txn := param(c, "txn_id")
	if len(txn) > maxTxnIDLen {
		recordPostback(postbackInvalid)
		return c.String(http.StatusBadRequest, "bad txn_id")
	}

	status := NormalizeConversionStatus(param(c, "status"))

	click, err := h.store.ResolveClick(clickID)
	if err != nil {
		if err != ErrClickNotFound {
			c.Logger().Errorf("resolve click %q: %v", clickID, err)
			return echo.ErrInternalServerError
		}
		// Networks sometimes fire postbacks for clicks that aged out of
		// retention; acknowledge so they stop retrying.
		c.Logger().Warnf("postback for unknown click %q", clickID)
		recordPostback(postbackOrphan)
		return c.String(http.StatusAccepted, "unknown click")
	}

	cv := &Conversion{
		ClickID:     clickID,
		EntrySlug:   click.EntrySlug,
		TxnID:       txn,
		PayoutCents: payout,
		Status:      status,
		Timestamp:   time.Now().UTC(),
	}
	inserted, err := h.store.SaveConversion(cv)
	if err != nil {
		c.Logger().Errorf("save conversion: %v", err)
		return echo.ErrInternalServerError
	}
	if !inserted {
		recordPostback(postbackDuplicate)
		return c.String(http.StatusOK, "dup")
	}
	recordPostback(postbackAccepted)
	recordConversion(click.EntrySlug, status, payout)
	return c.String(http.StatusOK, "ok")
}

// param reads a postback parameter from the query string or, for POSTs, the
// form body.
func param(c echo.Context, name string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return c.FormValue(name)
}

// StatsJSON returns aggregated stats for one campaign as JSON.
// The days query parameter selects the window (default 30, max 365).
func (h *Handler) StatsJSON(c echo.Context) error {
	slug := c.Param("slug")
	days := parseDays(c.QueryParam("days"))

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)

	stats, err := h.store.EntryStats(c.Request().Context(), slug, from, to)
	if err != nil {
		c.Logger().Errorf("entry stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, stats)
}

// ConversionsJSON returns the newest conversions across all campaigns.
func (h *Handler) ConversionsJSON(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad limit"})
		}
		limit = n
	}
	rows, err := h.store.RecentConversions(limit)
	if err != nil {
		c.Logger().Errorf("recent conversions: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if rows == nil {
		rows = []Conversion{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"conversions": rows})
}

func parseDays(v string) int {
	days, err := strconv.Atoi(v)
	if err != nil || days < 1 || days > 365 {
		return 30
	}
	return days
}

// RegisterRoutes registers tracking routes with the Echo router. The
// redirect and postback endpoints are public; the JSON endpoints sit behind
// the operator session.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	e.GET("/t/:slug", h.Redirect)
	e.GET("/postback", h.Postback)
	e.POST("/postback", h.Postback)

	g := e.Group("/app/track")
	g.Use(authMiddleware)
	g.GET("/stats/:slug", h.StatsJSON)
	g.GET("/conversions", h.ConversionsJSON)
}
