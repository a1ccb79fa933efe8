package tracker

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Keto Cookbook", "keto-cookbook"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Already-Slugged", "already-slugged"},
		{"Symbols & Stuff!", "symbols-stuff"},
		{"UPPER case 123", "upper-case-123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"login"}, "https://example.com/login/"},
		{"https://example.com/", []string{"app", "entries"}, "https://example.com/app/entries/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", []string{"postback"}, "https://example.com/postback"},
		{"https://example.com/", []string{"t", "keto-cookbook"}, "https://example.com/t/keto-cookbook"},
		{"https://example.com", []string{"sitemap.xml"}, "https://example.com/sitemap.xml"},
	}
	for _, tt := range tests {
		if got := EndpointURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("EndpointURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2026-01-01", "2026-12-31", "2024-02-29"}
	for _, s := range valid {
		if !ValidDate(s) {
			t.Errorf("ValidDate(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "2026-13-01", "2026-02-30", "01-01-2026", "2026/01/01", "yesterday"}
	for _, s := range invalid {
		if ValidDate(s) {
			t.Errorf("ValidDate(%q) = true, want false", s)
		}
	}
}

func TestValidTargetURL(t *testing.T) {
	valid := []string{
		"https://offer.example.com/keto",
		"http://example.com/path?cid={click_id}&s={sub}",
	}
	for _, s := range valid {
		if !ValidTargetURL(s) {
			t.Errorf("ValidTargetURL(%q) = false, want true", s)
		}
	}
	invalid := []string{
		"",
		"example.com/no-scheme",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://",
	}
	for _, s := range invalid {
		if ValidTargetURL(s) {
			t.Errorf("ValidTargetURL(%q) = true, want false", s)
		}
	}
}
