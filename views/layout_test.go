package views

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

var emptyBody = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error { return nil })

func TestLayoutEmitsHeadTags(t *testing.T) {
	meta := PageMetadata{
		Title:       "Campaigns & More",
		Description: "All the campaigns",
		Keywords:    []string{"affiliate", "tracker"},
		Robots:      Robots{Index: true, Follow: true},
		OpenGraph:   OpenGraph{Title: "OG Title", Description: "OG Desc", Type: "website"},
		Twitter:     TwitterCard{Card: "summary", Title: "TW Title", Description: "TW Desc"},
	}
	got := renderToString(t, Layout(SiteConfig{Name: "Tracker"}, meta, emptyBody))

	for _, want := range []string{
		`<title>Campaigns &amp; More</title>`,
		`<meta name="description" content="All the campaigns"/>`,
		`<meta name="keywords" content="affiliate, tracker"/>`,
		`<meta name="robots" content="index, follow"/>`,
		`<meta property="og:title" content="OG Title"/>`,
		`<meta property="og:description" content="OG Desc"/>`,
		`<meta property="og:type" content="website"/>`,
		`<meta name="twitter:card" content="summary"/>`,
		`<meta name="twitter:title" content="TW Title"/>`,
		`<meta name="twitter:description" content="TW Desc"/>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("layout output missing %q", want)
		}
	}
}

func TestLayoutRobotsDirectives(t *testing.T) {
	tests := []struct {
		robots Robots
		want   string
	}{
		{Robots{Index: true, Follow: true}, "index, follow"},
		{Robots{Index: false, Follow: false}, "noindex, nofollow"},
		{Robots{Index: true, Follow: false}, "index, nofollow"},
		{Robots{Index: false, Follow: true}, "noindex, follow"},
	}
	for _, tt := range tests {
		got := renderToString(t, Layout(SiteConfig{}, PageMetadata{Robots: tt.robots}, emptyBody))
		if !strings.Contains(got, `<meta name="robots" content="`+tt.want+`"/>`) {
			t.Errorf("robots %+v: output missing %q", tt.robots, tt.want)
		}
	}
}

func TestLayoutOmitsKeywordsWhenEmpty(t *testing.T) {
	got := renderToString(t, Layout(SiteConfig{}, PageMetadata{Title: "t"}, emptyBody))
	if strings.Contains(got, `name="keywords"`) {
		t.Fatalf("keywords tag rendered for empty keyword list: %q", got)
	}
}

func TestLayoutWrapsBody(t *testing.T) {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="marker"></div>`)
		return err
	})
	got := renderToString(t, Layout(SiteConfig{}, PageMetadata{}, body))
	bodyStart := strings.Index(got, "<body>")
	marker := strings.Index(got, `<div id="marker">`)
	bodyEnd := strings.Index(got, "</body>")
	if bodyStart < 0 || marker < 0 || bodyEnd < 0 || marker < bodyStart || marker > bodyEnd {
		t.Fatalf("body content not inside <body>: %q", got)
	}
}

func TestAppShellContainsNavAndLogout(t *testing.T) {
	got := renderToString(t, AppShell(SiteConfig{Name: "Tracker"}, "tok", emptyBody))
	for _, want := range []string{
		`href="/app/settings/"`,
		`action="/logout/"`,
		`name="_csrf" value="tok"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("app shell missing %q", want)
		}
	}
}
