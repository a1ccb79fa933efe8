// Package views contains the templ components for every page and fragment
// the tracker renders. Components are written by hand against the templ
// runtime so view code stays plain Go.
package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// SiteConfig holds the site-wide values templates need. Every page component
// takes this so nothing is hardcoded into markup.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
}

// Robots controls the robots meta directive for a page.
type Robots struct {
	Index  bool
	Follow bool
}

// OpenGraph carries the og:* properties for a page.
type OpenGraph struct {
	Title       string
	Description string
	Type        string
}

// TwitterCard carries the twitter:* properties for a page.
type TwitterCard struct {
	Card        string
	Title       string
	Description string
}

// PageMetadata is the full head-tag record for a page. Static pages declare
// one as a package-level value and never mutate it; the layout emits every
// field in a fixed order.
type PageMetadata struct {
	Title       string
	Description string
	Keywords    []string
	Robots      Robots
	OpenGraph   OpenGraph
	Twitter     TwitterCard
}

// EntryView is the card-level projection of a campaign entry joined with its
// tracked metrics. Handlers build these; components only read them.
type EntryView struct {
	Slug         string
	Name         string
	Network      string
	NetworkLabel string
	NetworkGlyph string
	IconURL      string
	Status       string
	StartDate    string
	TargetURL    string
	Note         string
	SpendCents   int64
	Clicks       int
	Conversions  int
	RevenueCents int64
}

// NetworkOption is a traffic-network choice for the entry form select.
type NetworkOption struct {
	Slug  string
	Label string
}

// SettingsForm is the view model for the settings page.
type SettingsForm struct {
	PostbackKey   string
	FeedToken     string
	RetentionDays int
	PostbackURL   string
	TrackingURL   string
}

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FormatCents renders integer cents as a dollar amount, e.g. 12345 -> "$123.45".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// FormatROI renders return on investment as a signed percentage. Entries
// without spend have no meaningful ROI and render as a dash.
func FormatROI(spendCents, revenueCents int64) string {
	if spendCents == 0 {
		return "--"
	}
	roi := float64(revenueCents-spendCents) / float64(spendCents) * 100
	return strconv.FormatFloat(roi, 'f', 1, 64) + "%"
}

// ROIClass returns the badge class variant for an entry's ROI.
func ROIClass(spendCents, revenueCents int64) string {
	switch {
	case spendCents == 0:
		return "roi-badge roi-none"
	case revenueCents >= spendCents:
		return "roi-badge roi-positive"
	default:
		return "roi-badge roi-negative"
	}
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// SoftwareAppJsonLD produces a Schema.org SoftwareApplication block for the
// landing page.
func SoftwareAppJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":            "https://schema.org",
		"@type":               "SoftwareApplication",
		"name":                cfg.Name,
		"url":                 buildURL(cfg.URL),
		"applicationCategory": "BusinessApplication",
		"operatingSystem":     "Web",
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
