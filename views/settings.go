package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// SettingsMeta is the settings page head record. Built once, never mutated.
var SettingsMeta = PageMetadata{
	Title:       "Settings | AffiliateTracker",
	Description: "Manage your AffiliateTracker installation: postback key, conversion feed token, and data retention.",
	Keywords:    []string{"affiliate tracker", "settings", "postback", "retention"},
	Robots:      Robots{Index: true, Follow: true},
	OpenGraph: OpenGraph{
		Title:       "Settings",
		Description: "Manage your AffiliateTracker installation.",
		Type:        "website",
	},
	Twitter: TwitterCard{
		Card:        "summary",
		Title:       "Settings",
		Description: "Manage your AffiliateTracker installation.",
	},
}

// SettingsPage renders the settings form with the current values and the
// integration hints (postback URL template, example tracking link).
func SettingsPage(form SettingsForm, csrfToken, msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := FlashMessage(msg).Render(ctx, w); err != nil {
			return err
		}
		var buf bytes.Buffer
		buf.WriteString(`<section class="settings">`)
		buf.WriteString(`<h2>Settings</h2>`)

		buf.WriteString(`<div class="settings-group"><h3>Postback</h3>`)
		buf.WriteString(`<p>Give this URL template to your affiliate networks:</p>`)
		buf.WriteString(`<code class="postback-url">` + html.EscapeString(form.PostbackURL) + `</code>`)
		buf.WriteString(`<label>Postback key<input type="text" name="postback_key" value="` + html.EscapeString(form.PostbackKey) + `" readonly/></label>`)
		buf.WriteString(rotateForm("postback", csrfToken, "Rotate postback key"))
		buf.WriteString(`</div>`)

		buf.WriteString(`<div class="settings-group"><h3>Conversions feed</h3>`)
		buf.WriteString(`<p>RSS feed of recent conversions for your reader or alerting:</p>`)
		buf.WriteString(`<code>/feed/conversions.xml?token=` + html.EscapeString(form.FeedToken) + `</code>`)
		buf.WriteString(rotateForm("feed", csrfToken, "Rotate feed token"))
		buf.WriteString(`</div>`)

		buf.WriteString(`<div class="settings-group"><h3>Data retention</h3>`)
		buf.WriteString(`<form method="post" action="/app/settings/">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `"/>`)
		buf.WriteString(`<label>Keep click data for (days)<input type="number" name="retention_days" value="` + strconv.Itoa(form.RetentionDays) + `" min="1" max="3650"/></label>`)
		buf.WriteString(`<p class="settings-hint">Conversions are kept forever. Changes apply after restart.</p>`)
		buf.WriteString(`<button type="submit">Save</button>`)
		buf.WriteString(`</form></div>`)

		buf.WriteString(`<div class="settings-group"><h3>Tracking links</h3>`)
		buf.WriteString(`<p>Every campaign gets a link like <code>` + html.EscapeString(form.TrackingURL) + `</code>. Append <code>?sub=</code> to pass a sub ID through to the destination.</p>`)
		buf.WriteString(`</div>`)

		buf.WriteString(`</section>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func rotateForm(which, csrfToken, label string) string {
	return `<form method="post" action="/app/settings/rotate/" class="rotate-form">` +
		`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `"/>` +
		`<input type="hidden" name="which" value="` + which + `"/>` +
		`<button type="submit">` + label + `</button></form>`
}
