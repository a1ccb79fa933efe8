package views

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the shared page shell and emits the <head> block from
// meta. Tag order is fixed: title, description, keywords, robots, OpenGraph,
// Twitter.
func Layout(cfg SiteConfig, meta PageMetadata, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
		buf.WriteString(`<meta charset="utf-8"/>`)
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		writeHeadMeta(&buf, meta)
		buf.WriteString(`<link rel="icon" href="/favicon.svg" type="image/svg+xml"/>`)
		buf.WriteString(`<link rel="stylesheet" href="/public/app.css"/>`)
		buf.WriteString(`<script src="/public/app.js" defer></script>`)
		buf.WriteString(`</head><body>`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func writeHeadMeta(buf *bytes.Buffer, meta PageMetadata) {
	buf.WriteString(`<title>`)
	buf.WriteString(html.EscapeString(meta.Title))
	buf.WriteString(`</title>`)
	buf.WriteString(`<meta name="description" content="` + html.EscapeString(meta.Description) + `"/>`)
	if len(meta.Keywords) > 0 {
		keywords := ""
		for i, k := range meta.Keywords {
			if i > 0 {
				keywords += ", "
			}
			keywords += k
		}
		buf.WriteString(`<meta name="keywords" content="` + html.EscapeString(keywords) + `"/>`)
	}
	buf.WriteString(`<meta name="robots" content="` + robotsContent(meta.Robots) + `"/>`)
	buf.WriteString(`<meta property="og:title" content="` + html.EscapeString(meta.OpenGraph.Title) + `"/>`)
	buf.WriteString(`<meta property="og:description" content="` + html.EscapeString(meta.OpenGraph.Description) + `"/>`)
	buf.WriteString(`<meta property="og:type" content="` + html.EscapeString(meta.OpenGraph.Type) + `"/>`)
	buf.WriteString(`<meta name="twitter:card" content="` + html.EscapeString(meta.Twitter.Card) + `"/>`)
	buf.WriteString(`<meta name="twitter:title" content="` + html.EscapeString(meta.Twitter.Title) + `"/>`)
	buf.WriteString(`<meta name="twitter:description" content="` + html.EscapeString(meta.Twitter.Description) + `"/>`)
}

func robotsContent(r Robots) string {
	index := "noindex"
	if r.Index {
		index = "index"
	}
	follow := "nofollow"
	if r.Follow {
		follow = "follow"
	}
	return index + ", " + follow
}

// AppShell renders the authenticated chrome (top bar with navigation and the
// logout form) around content.
func AppShell(cfg SiteConfig, csrfToken string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<header class="app-header">`)
		buf.WriteString(`<a class="app-title" href="/app/">` + html.EscapeString(cfg.Name) + `</a>`)
		buf.WriteString(`<nav class="app-nav">`)
		buf.WriteString(`<a href="/app/">Campaigns</a>`)
		buf.WriteString(`<a href="/app/settings/">Settings</a>`)
		buf.WriteString(`<form method="post" action="/logout/" class="logout-form">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `"/>`)
		buf.WriteString(`<button type="submit">Log out</button>`)
		buf.WriteString(`</form>`)
		buf.WriteString(`</nav></header><main class="app-main">`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>`)
		return err
	})
}
