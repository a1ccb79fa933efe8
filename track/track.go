// Package track records clicks and conversions for campaign tracking links.
// Visitors are fingerprinted with a salted hash, never stored by IP.
package track

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// salt holds the per-installation random salt for IP hashing, protected by
// sync.Once. The salt never rotates; fingerprints would lose continuity.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for IP hashing.
// Must be called once at startup before any requests are served.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			s, err = randomHex(32)
			if err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

func getSalt() string {
	return salt.value
}

// postbackKey is the shared secret affiliate networks present on /postback.
// Unlike the salt it is rotatable, so it lives behind a RWMutex.
var postbackKey struct {
	mu    sync.RWMutex
	value string
}

// InitPostbackKey loads or generates the postback key.
// Must be called once at startup before any postbacks are accepted.
func InitPostbackKey(store *Store) error {
	k, err := store.GetSetting("postback_key")
	if err != nil {
		return fmt.Errorf("read postback key: %w", err)
	}
	if k == "" {
		k, err = randomHex(16)
		if err != nil {
			return fmt.Errorf("generate postback key: %w", err)
		}
		if err := store.SetSetting("postback_key", k); err != nil {
			return fmt.Errorf("store postback key: %w", err)
		}
	}
	postbackKey.mu.Lock()
	postbackKey.value = k
	postbackKey.mu.Unlock()
	return nil
}

// PostbackKey returns the current postback key.
func PostbackKey() string {
	postbackKey.mu.RLock()
	defer postbackKey.mu.RUnlock()
	return postbackKey.value
}

// RotatePostbackKey replaces the postback key with a fresh one and persists
// it. Networks configured with the old key start failing immediately.
func RotatePostbackKey(store *Store) (string, error) {
	k, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("generate postback key: %w", err)
	}
	if err := store.SetSetting("postback_key", k); err != nil {
		return "", fmt.Errorf("store postback key: %w", err)
	}
	postbackKey.mu.Lock()
	postbackKey.value = k
	postbackKey.mu.Unlock()
	return k, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Click represents one recorded visit through a tracking link.
type Click struct {
	ID        int64     `json:"-"`
	ClickID   string    `json:"click_id"`   // UUID passed to the destination
	EntrySlug string    `json:"entry_slug"` // Campaign the link belongs to
	VisitorID string    `json:"visitor_id"` // Anonymous fingerprint hash
	IPHash    string    `json:"-"`          // Hashed IP address
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"` // desktop, mobile, tablet
	Referrer  string    `json:"referrer"`
	Sub       string    `json:"sub"` // Sub ID passed by the traffic source
	Timestamp time.Time `json:"timestamp"`
}

// BotClick represents a crawler hit on a tracking link. Kept out of the
// clicks table so campaign metrics stay clean.
type BotClick struct {
	ID        int64     `json:"-"`
	EntrySlug string    `json:"entry_slug"`
	BotName   string    `json:"bot_name"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversion represents a network postback attributed to a click.
type Conversion struct {
	ID          int64     `json:"-"`
	ClickID     string    `json:"click_id"`
	EntrySlug   string    `json:"entry_slug"`
	TxnID       string    `json:"txn_id"` // Network transaction ID, dedupe key
	PayoutCents int64     `json:"payout_cents"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Conversion statuses as reported by networks.
const (
	ConversionApproved = "approved"
	ConversionPending  = "pending"
	ConversionRejected = "rejected"
)

// NormalizeConversionStatus maps a postback status parameter onto a known
// status. Networks that do not send one get approved.
func NormalizeConversionStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ConversionPending:
		return ConversionPending
	case ConversionRejected, "declined", "trash":
		return ConversionRejected
	default:
		return ConversionApproved
	}
}

// HashIP creates a salted SHA-256 hash of an IP address.
func HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// VisitorID creates a salted fingerprint from IP and User-Agent.
func VisitorID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// Detect browser (order matters: more specific patterns before generic ones)
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Detect OS (order matters: Android before Linux since Android UA contains "linux")
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// Detect device type (order matters: iPad contains "mobile" in UA, check tablet first)
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return
}

// IsBot checks if the User-Agent is likely a bot/crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	bots := []string{
		"bot", "crawler", "spider", "crawl", "slurp", "scrape",
		"googlebot", "bingbot", "yandex", "baidu", "duckduckbot",
		"facebookexternalhit", "twitterbot", "linkedinbot",
		"ahrefsbot", "semrushbot", "mj12bot", "dotbot",
		"headless", "python-requests", "curl/", "wget/",
	}
	for _, bot := range bots {
		if strings.Contains(ua, bot) {
			return true
		}
	}
	return false
}

// BotName extracts the bot name from a User-Agent string.
func BotName(ua string) string {
	ua = strings.ToLower(ua)

	botPatterns := map[string]string{
		"googlebot":           "Googlebot",
		"bingbot":             "Bingbot",
		"yandex":              "Yandex",
		"baidu":               "Baidu",
		"duckduckbot":         "DuckDuckBot",
		"facebookexternalhit": "Facebook",
		"twitterbot":          "Twitterbot",
		"linkedinbot":         "LinkedIn",
		"ahrefsbot":           "Ahrefs",
		"semrushbot":          "SEMrush",
		"mj12bot":             "Majestic",
		"dotbot":              "Moz",
		"slurp":               "Yahoo Slurp",
		"headless":            "Headless Browser",
		"crawler":             "Generic Crawler",
		"spider":              "Generic Spider",
	}

	for pattern, name := range botPatterns {
		if strings.Contains(ua, pattern) {
			return name
		}
	}

	if strings.Contains(ua, "bot") {
		return "Other Bot"
	}

	return "Unknown"
}

// referrerDomainRegex is pre-compiled for use in CleanReferrer.
var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer maps a referrer URL to a traffic source name. Paid traffic
// mostly arrives from a handful of platforms, so those get canonical names
// and everything else falls back to the bare domain.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}

	refLower := strings.ToLower(ref)
	switch {
	case strings.Contains(refLower, "facebook."), strings.Contains(refLower, "fb.com"):
		return "Facebook"
	case strings.Contains(refLower, "instagram."):
		return "Instagram"
	case strings.Contains(refLower, "tiktok."):
		return "TikTok"
	case strings.Contains(refLower, "google."):
		return "Google"
	case strings.Contains(refLower, "youtube."):
		return "YouTube"
	case strings.Contains(refLower, "twitter."), strings.Contains(refLower, "//t.co/"), strings.Contains(refLower, "//x.com/"):
		return "X"
	case strings.Contains(refLower, "reddit."):
		return "Reddit"
	case strings.Contains(refLower, "pinterest."):
		return "Pinterest"
	}

	matches := referrerDomainRegex.FindStringSubmatch(ref)
	if len(matches) > 1 {
		return matches[1]
	}

	return "Other"
}

// SubstituteMacros fills {click_id} and {sub} macros in a destination URL.
// If the URL carries no {click_id} macro, the click ID is appended as a cid
// query parameter so attribution still round-trips. An empty clickID (paused
// campaign, bot) blanks the macros and appends nothing.
func SubstituteMacros(target, clickID, sub string) string {
	hadClickMacro := strings.Contains(target, "{click_id}")
	out := strings.ReplaceAll(target, "{click_id}", clickID)
	out = strings.ReplaceAll(out, "{sub}", sub)
	if clickID == "" || hadClickMacro {
		return out
	}
	sep := "?"
	if strings.Contains(out, "?") {
		sep = "&"
	}
	return out + sep + "cid=" + clickID
}

// Payout bounds for postbacks, in cents. Values outside are rejected rather
// than clamped so a mangled postback is visible instead of silently wrong.
const MaxPayoutCents = 100_000_00

// ErrBadMoney is returned by ParseMoneyCents for unparseable or out-of-range
// amounts.
var ErrBadMoney = errors.New("track: bad money amount")

// ParseMoneyCents parses a decimal dollar amount ("12", "12.5", "12.50")
// into integer cents. At most two decimal places are accepted.
func ParseMoneyCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrBadMoney
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if strings.ContainsAny(frac, "+-") {
		return 0, ErrBadMoney
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrBadMoney
	}
	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrBadMoney
		}
		cents = d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrBadMoney
		}
		cents = d
	default:
		return 0, ErrBadMoney
	}
	total := dollars*100 + cents
	if total > MaxPayoutCents {
		return 0, ErrBadMoney
	}
	return total, nil
}
