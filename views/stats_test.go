package views

import (
	"strings"
	"testing"
)

func TestStatsFragmentTotals(t *testing.T) {
	doc := renderToDoc(t, StatsFragment(StatsView{
		Period:       "2026-07-24 to 2026-08-24",
		Clicks:       1200,
		Uniques:      843,
		Conversions:  31,
		RevenueCents: 193750,
		Daily: []DayPoint{
			{Date: "2026-08-20", Clicks: 40},
			{Date: "2026-08-21", Clicks: 80},
		},
		Referrers: []NameCount{{Name: "Facebook", Count: 900}},
		Devices:   []NameCount{{Name: "Mobile", Count: 700}},
	}))

	if got := doc.Find(".stats-totals .entry-metric").Length(); got != 4 {
		t.Errorf("metrics rendered = %d, want 4", got)
	}
	text := doc.Find(".stats-totals").Text()
	for _, want := range []string{"1,200", "843", "31", "$1937.50"} {
		if !strings.Contains(text, want) {
			t.Errorf("totals missing %q in %q", want, text)
		}
	}
	if got := doc.Find(".chart-col").Length(); got != 2 {
		t.Errorf("chart columns = %d, want 2", got)
	}
	if height, _ := doc.Find(".chart-bar").Last().Attr("style"); !strings.Contains(height, "height:100%") {
		t.Errorf("busiest day should fill the chart, got %q", height)
	}
	if !strings.Contains(doc.Find(".stats-breakdown").Text(), "Facebook") {
		t.Error("referrer breakdown missing")
	}
}

func TestStatsFragmentBotRowOnlyWhenPresent(t *testing.T) {
	quiet := renderToString(t, StatsFragment(StatsView{Period: "x"}))
	if strings.Contains(quiet, "Bot hits") {
		t.Error("bot metric rendered with zero bot traffic")
	}

	busy := renderToString(t, StatsFragment(StatsView{Period: "x", Bots: 17}))
	if !strings.Contains(busy, "Bot hits") {
		t.Error("bot metric missing despite bot traffic")
	}
}

func TestConversionsTableEmptyState(t *testing.T) {
	doc := renderToDoc(t, ConversionsTable(nil))
	if got := doc.Find(".conversions-empty").Length(); got != 1 {
		t.Errorf("empty notice rendered %d times, want 1", got)
	}
	if doc.Find("table").Length() != 0 {
		t.Error("empty state should not render a table")
	}
}

func TestConversionsTableRows(t *testing.T) {
	doc := renderToDoc(t, ConversionsTable([]ConversionRow{
		{When: "Aug 22 14:03", EntryName: "Keto Cookbook", PayoutCents: 6250, Status: "approved"},
		{When: "Aug 22 13:40", EntryName: "Solar Leads", PayoutCents: 1200, Status: "pending"},
	}))

	if got := doc.Find("tbody tr").Length(); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	first := doc.Find("tbody tr").First()
	if !strings.Contains(first.Text(), "Keto Cookbook") {
		t.Error("first row missing campaign name")
	}
	if !strings.Contains(first.Text(), "$62.50") {
		t.Error("first row missing formatted payout")
	}
	if first.Find(".status-badge.status-approved").Length() != 1 {
		t.Error("first row missing status badge class")
	}
}
