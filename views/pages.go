package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Static page metadata. These are built once and never mutated; the layout
// reads them on every render.
var (
	LandingMeta = PageMetadata{
		Title:       "AffiliateTracker - self-hosted affiliate campaign tracking",
		Description: "Track clicks, conversions, and ROI for your affiliate campaigns on your own server.",
		Keywords:    []string{"affiliate marketing", "campaign tracker", "click tracking", "postback", "self-hosted"},
		Robots:      Robots{Index: true, Follow: true},
		OpenGraph: OpenGraph{
			Title:       "AffiliateTracker",
			Description: "Self-hosted affiliate campaign tracking with clicks, conversions, and ROI.",
			Type:        "website",
		},
		Twitter: TwitterCard{
			Card:        "summary",
			Title:       "AffiliateTracker",
			Description: "Self-hosted affiliate campaign tracking with clicks, conversions, and ROI.",
		},
	}

	LoginMeta = PageMetadata{
		Title:       "Log in | AffiliateTracker",
		Description: "Operator login for AffiliateTracker.",
		Keywords:    []string{"affiliate tracker", "login"},
		Robots:      Robots{Index: false, Follow: false},
		OpenGraph: OpenGraph{
			Title:       "Log in",
			Description: "Operator login for AffiliateTracker.",
			Type:        "website",
		},
		Twitter: TwitterCard{
			Card:        "summary",
			Title:       "Log in",
			Description: "Operator login for AffiliateTracker.",
		},
	}

	DashboardMeta = PageMetadata{
		Title:       "Campaigns | AffiliateTracker",
		Description: "Your affiliate campaigns with live click, conversion, and ROI metrics.",
		Keywords:    []string{"affiliate campaigns", "dashboard", "roi"},
		Robots:      Robots{Index: false, Follow: false},
		OpenGraph: OpenGraph{
			Title:       "Campaigns",
			Description: "Your affiliate campaigns with live metrics.",
			Type:        "website",
		},
		Twitter: TwitterCard{
			Card:        "summary",
			Title:       "Campaigns",
			Description: "Your affiliate campaigns with live metrics.",
		},
	}
)

// Landing renders the public landing page.
func Landing(cfg SiteConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<section class="landing">`)
		buf.WriteString(`<h1>` + html.EscapeString(cfg.Name) + `</h1>`)
		if cfg.Description != "" {
			buf.WriteString(`<p class="landing-tagline">` + html.EscapeString(cfg.Description) + `</p>`)
		}
		buf.WriteString(`<ul class="landing-features">`)
		buf.WriteString(`<li>Tracking links with click attribution and bot filtering</li>`)
		buf.WriteString(`<li>Network postbacks for conversions and payouts</li>`)
		buf.WriteString(`<li>ROI per campaign, computed from your ad spend</li>`)
		buf.WriteString(`</ul>`)
		buf.WriteString(`<a class="button" href="/app/">Open dashboard</a>`)
		buf.WriteString(`</section>`)
		buf.WriteString(`<script type="application/ld+json">` + WebsiteJsonLD(cfg) + `</script>`)
		buf.WriteString(`<script type="application/ld+json">` + SoftwareAppJsonLD(cfg) + `</script>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Login renders the operator login form. showError toggles the failed-login
// notice.
func Login(showError bool, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<section class="login">`)
		buf.WriteString(`<h1>Log in</h1>`)
		if showError {
			buf.WriteString(`<p class="login-error">Wrong password.</p>`)
		}
		buf.WriteString(`<form method="post" action="/login/">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `"/>`)
		buf.WriteString(`<label>Password<input type="password" name="password" autofocus required/></label>`)
		buf.WriteString(`<button type="submit">Log in</button>`)
		buf.WriteString(`</form>`)
		buf.WriteString(`</section>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// DashboardContent renders the campaigns page body: the heading, the new
// campaign link, and the skeleton list that swaps itself for the real
// entries fragment once it loads.
func DashboardContent(skeletonCount int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<div class="dashboard-head"><h2>Campaigns</h2><a class="button" href="/app/entries/new/">New campaign</a></div>` +
			`<div hx-get="/app/entries/" hx-trigger="load" hx-swap="outerHTML" hx-target="this">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := EntriesListSkeleton(skeletonCount).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// ConversionsSection renders the recent-conversions block below the campaign
// grid. The fragment endpoint fills it once the page has loaded.
func ConversionsSection() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := `<section class="conversions"><h2>Recent conversions</h2>` +
			`<div hx-get="/app/fragments/conversions/" hx-trigger="load" hx-swap="innerHTML">` +
			`<div class="skeleton-block skeleton-table"></div></div></section>`
		_, err := io.WriteString(w, s)
		return err
	})
}

// StatsPanel renders the collapsible per-campaign stats target under a card
// grid. The fragment endpoint fills it on demand.
func StatsPanel(slug string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		esc := html.EscapeString(slug)
		s := `<div class="stats-panel" id="stats-` + esc + `" hx-get="/app/stats/` + esc + `/" hx-trigger="revealed" hx-swap="innerHTML">` +
			`<div class="skeleton-block skeleton-chart"></div></div>`
		_, err := io.WriteString(w, s)
		return err
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><title>Not found</title><meta name="robots" content="noindex, nofollow"/><link rel="stylesheet" href="/public/app.css"/></head><body><main class="error-page"><h1>404</h1><p>This page does not exist.</p><a href="/">Back home</a></main></body></html>`)
		return err
	})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><title>Something went wrong</title><meta name="robots" content="noindex, nofollow"/><link rel="stylesheet" href="/public/app.css"/></head><body><main class="error-page"><h1>500</h1><p>Something went wrong on our side.</p><a href="/">Back home</a></main></body></html>`)
		return err
	})
}

// FlashMessage renders the ?msg= notice shown after admin actions.
func FlashMessage(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if msg == "" {
			return nil
		}
		_, err := io.WriteString(w, `<div class="flash">`+html.EscapeString(msg)+`</div>`)
		return err
	})
}

// Sequence renders components one after another.
func Sequence(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// metricNumber formats large counts with a thousands separator for display.
func metricNumber(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
