package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// StatsView is the view model for a campaign's stats fragment. Handlers
// convert store results into this before rendering.
type StatsView struct {
	Period       string
	Clicks       int
	Uniques      int
	Bots         int
	Conversions  int
	RevenueCents int64
	Daily        []DayPoint
	Referrers    []NameCount
	Devices      []NameCount
}

// DayPoint is one bucket of the daily click series.
type DayPoint struct {
	Date   string
	Clicks int
}

// NameCount is a generic dimension breakdown row.
type NameCount struct {
	Name  string
	Count int
}

// ConversionRow is one line of the recent-conversions table.
type ConversionRow struct {
	When        string
	EntryName   string
	PayoutCents int64
	Status      string
}

// StatsFragment renders the per-campaign stats panel body.
func StatsFragment(s StatsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="stats-fragment">`)
		buf.WriteString(`<div class="stats-period">` + html.EscapeString(s.Period) + `</div>`)

		buf.WriteString(`<div class="stats-totals">`)
		writeMetric(&buf, "Clicks", metricNumber(s.Clicks))
		writeMetric(&buf, "Uniques", metricNumber(s.Uniques))
		writeMetric(&buf, "Conversions", metricNumber(s.Conversions))
		writeMetric(&buf, "Revenue", FormatCents(s.RevenueCents))
		if s.Bots > 0 {
			writeMetric(&buf, "Bot hits", metricNumber(s.Bots))
		}
		buf.WriteString(`</div>`)

		if len(s.Daily) > 0 {
			max := 1
			for _, d := range s.Daily {
				if d.Clicks > max {
					max = d.Clicks
				}
			}
			buf.WriteString(`<div class="stats-chart">`)
			for _, d := range s.Daily {
				pct := d.Clicks * 100 / max
				buf.WriteString(`<div class="chart-col" title="` + html.EscapeString(d.Date) + `: ` + strconv.Itoa(d.Clicks) + `">`)
				buf.WriteString(`<div class="chart-bar" style="height:` + strconv.Itoa(pct) + `%"></div>`)
				buf.WriteString(`</div>`)
			}
			buf.WriteString(`</div>`)
		}

		writeBreakdown(&buf, "Top referrers", s.Referrers)
		writeBreakdown(&buf, "Devices", s.Devices)

		buf.WriteString(`</div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeBreakdown(buf *bytes.Buffer, title string, rows []NameCount) {
	if len(rows) == 0 {
		return
	}
	buf.WriteString(`<div class="stats-breakdown"><h4>` + html.EscapeString(title) + `</h4><ul>`)
	for _, r := range rows {
		buf.WriteString(`<li><span>` + html.EscapeString(r.Name) + `</span><span>` + metricNumber(r.Count) + `</span></li>`)
	}
	buf.WriteString(`</ul></div>`)
}

// ConversionsTable renders recent conversions for the dashboard sidebar.
func ConversionsTable(rows []ConversionRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="conversions-table">`)
		if len(rows) == 0 {
			buf.WriteString(`<p class="conversions-empty">No conversions yet.</p></div>`)
			_, err := w.Write(buf.Bytes())
			return err
		}
		buf.WriteString(`<table><thead><tr><th>When</th><th>Campaign</th><th>Payout</th><th>Status</th></tr></thead><tbody>`)
		for _, r := range rows {
			buf.WriteString(`<tr>`)
			buf.WriteString(`<td>` + html.EscapeString(r.When) + `</td>`)
			buf.WriteString(`<td>` + html.EscapeString(r.EntryName) + `</td>`)
			buf.WriteString(`<td>` + FormatCents(r.PayoutCents) + `</td>`)
			buf.WriteString(`<td><span class="status-badge status-` + html.EscapeString(r.Status) + `">` + html.EscapeString(r.Status) + `</span></td>`)
			buf.WriteString(`</tr>`)
		}
		buf.WriteString(`</tbody></table></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}
