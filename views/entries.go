package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// EntryCard renders one campaign card. Its regions line up with the
// EntrySkeleton placeholders so the swap-in does not shift the grid.
func EntryCard(e EntryView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="entry-card" id="entry-` + html.EscapeString(e.Slug) + `">`)

		buf.WriteString(`<div class="entry-head">`)
		if e.IconURL != "" {
			buf.WriteString(`<img class="entry-icon" src="` + html.EscapeString(e.IconURL) + `" alt="` + html.EscapeString(e.NetworkLabel) + `" width="40" height="40"/>`)
		} else {
			buf.WriteString(`<span class="entry-icon entry-icon-glyph">` + html.EscapeString(e.NetworkGlyph) + `</span>`)
		}
		buf.WriteString(`<span class="status-badge status-` + html.EscapeString(e.Status) + `">` + html.EscapeString(e.Status) + `</span>`)
		buf.WriteString(`</div>`)

		buf.WriteString(`<h3 class="entry-name"><a href="/app/entries/` + html.EscapeString(e.Slug) + `/">` + html.EscapeString(e.Name) + `</a></h3>`)
		buf.WriteString(`<div class="entry-date">` + html.EscapeString(e.NetworkLabel) + ` &middot; ` + html.EscapeString(e.StartDate) + `</div>`)

		buf.WriteString(`<div class="entry-metrics">`)
		writeMetric(&buf, "Clicks", strconv.Itoa(e.Clicks))
		writeMetric(&buf, "Conversions", strconv.Itoa(e.Conversions))
		writeMetric(&buf, "Revenue", FormatCents(e.RevenueCents))
		buf.WriteString(`</div>`)

		buf.WriteString(`<div class="` + ROIClass(e.SpendCents, e.RevenueCents) + `">ROI ` + FormatROI(e.SpendCents, e.RevenueCents) + `</div>`)

		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if e.Note != "" {
			if err := NoteLine(e.Note).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func writeMetric(buf *bytes.Buffer, label, value string) {
	buf.WriteString(`<div class="entry-metric">`)
	buf.WriteString(`<span class="metric-value">` + html.EscapeString(value) + `</span>`)
	buf.WriteString(`<span class="metric-label">` + label + `</span>`)
	buf.WriteString(`</div>`)
}

// EntriesList renders the campaign grid, or an empty-state prompt when there
// are no entries for the selected status.
func EntriesList(entries []EntryView, activeStatus string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="entries-list" id="entries-list">`); err != nil {
			return err
		}
		if err := statusFilter(activeStatus).Render(ctx, w); err != nil {
			return err
		}
		if len(entries) == 0 {
			empty := `<div class="entries-empty"><p>No campaigns yet.</p><a class="button" href="/app/entries/new/">Create your first campaign</a></div>`
			if _, err := io.WriteString(w, empty+`</div>`); err != nil {
				return err
			}
			return nil
		}
		for _, e := range entries {
			if err := EntryCard(e).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func statusFilter(active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<nav class="status-filter">`)
		writeFilterLink(&buf, "", "All", active)
		writeFilterLink(&buf, "active", "Active", active)
		writeFilterLink(&buf, "paused", "Paused", active)
		writeFilterLink(&buf, "archived", "Archived", active)
		buf.WriteString(`</nav>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeFilterLink(buf *bytes.Buffer, status, label, active string) {
	class := "filter-link"
	if status == active {
		class += " filter-active"
	}
	href := "/app/entries/"
	if status != "" {
		href += "?status=" + status
	}
	buf.WriteString(`<a class="` + class + `" href="` + href + `" hx-get="` + href + `" hx-target="#entries-list" hx-swap="outerHTML">` + label + `</a>`)
}

// EntryForm renders the create/edit form for a campaign entry.
func EntryForm(e EntryView, networks []NetworkOption, csrfToken string, isNew bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		action := "/app/entries/"
		heading := "New campaign"
		if !isNew {
			action = "/app/entries/" + html.EscapeString(e.Slug) + "/"
			heading = "Edit campaign"
		}
		buf.WriteString(`<section class="entry-form-wrap"><h2>` + heading + `</h2>`)
		buf.WriteString(`<form method="post" action="` + action + `" class="entry-form">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `"/>`)

		buf.WriteString(`<label>Name<input type="text" name="name" value="` + html.EscapeString(e.Name) + `" required/></label>`)
		if isNew {
			buf.WriteString(`<label>Slug <small>(optional, derived from name)</small><input type="text" name="slug" value=""/></label>`)
		}

		buf.WriteString(`<label>Network<select name="network">`)
		for _, n := range networks {
			selected := ""
			if n.Slug == e.Network {
				selected = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(n.Slug) + `"` + selected + `>` + html.EscapeString(n.Label) + `</option>`)
		}
		buf.WriteString(`</select></label>`)

		buf.WriteString(`<label>Destination URL<input type="url" name="target_url" value="` + html.EscapeString(e.TargetURL) + `" placeholder="https://offer.example/lp?cid={click_id}" required/></label>`)

		buf.WriteString(`<label>Status<select name="status">`)
		for _, s := range []string{"active", "paused", "archived"} {
			selected := ""
			if s == e.Status {
				selected = ` selected`
			}
			buf.WriteString(`<option value="` + s + `"` + selected + `>` + s + `</option>`)
		}
		buf.WriteString(`</select></label>`)

		buf.WriteString(`<label>Start date<input type="date" name="start_date" value="` + html.EscapeString(e.StartDate) + `"/></label>`)
		buf.WriteString(`<label>Ad spend (USD)<input type="text" name="spend" value="` + centsToInput(e.SpendCents) + `" inputmode="decimal"/></label>`)
		buf.WriteString(`<label>Note<input type="text" name="note" value="` + html.EscapeString(e.Note) + `" maxlength="500"/></label>`)

		buf.WriteString(`<button type="submit">Save</button>`)
		buf.WriteString(`</form>`)

		if !isNew {
			buf.WriteString(`<form class="icon-form" method="post" action="/app/entries/` + html.EscapeString(e.Slug) + `/icon/" enctype="multipart/form-data">`)
			buf.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `"/>`)
			buf.WriteString(`<label>Icon<input type="file" name="icon" accept="image/*"/></label>`)
			buf.WriteString(`<button type="submit">Upload</button>`)
			buf.WriteString(`</form>`)
			buf.WriteString(`<div class="tracking-link-hint">Tracking link: <code>/t/` + html.EscapeString(e.Slug) + `</code></div>`)
			buf.WriteString(`<button class="button-danger" hx-delete="/app/entries/` + html.EscapeString(e.Slug) + `/" hx-confirm="Delete this campaign?" hx-headers='{"X-CSRF-Token":"` + html.EscapeString(csrfToken) + `"}'>Delete</button>`)
		}
		buf.WriteString(`</section>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func centsToInput(cents int64) string {
	if cents == 0 {
		return ""
	}
	return FormatCents(cents)[1:]
}
