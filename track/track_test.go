package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoneyCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12", 1200},
		{"12.5", 1250},
		{"12.50", 1250},
		{"0.01", 1},
		{".5", 50},
		{"0", 0},
		{"", 0},
		{" 62.50 ", 6250},
		{"100000.00", MaxPayoutCents},
	}
	for _, tt := range tests {
		got, err := ParseMoneyCents(tt.in)
		require.NoError(t, err, "ParseMoneyCents(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseMoneyCents(%q)", tt.in)
	}

	bad := []string{
		"-0.5",
		"+1",
		"1.-5",
		"1.505",
		"abc",
		"12.x",
		"100000.01",
		"1e3",
	}
	for _, in := range bad {
		_, err := ParseMoneyCents(in)
		assert.ErrorIs(t, err, ErrBadMoney, "ParseMoneyCents(%q)", in)
	}
}

func TestNormalizeConversionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ConversionApproved},
		{"approved", ConversionApproved},
		{"sale", ConversionApproved},
		{"pending", ConversionPending},
		{" PENDING ", ConversionPending},
		{"rejected", ConversionRejected},
		{"Declined", ConversionRejected},
		{"trash", ConversionRejected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeConversionStatus(tt.in), "status %q", tt.in)
	}
}

func TestSubstituteMacros(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		clickID string
		sub     string
		want    string
	}{
		{
			name:    "click macro filled",
			target:  "https://offer.test/p?cid={click_id}",
			clickID: "abc",
			want:    "https://offer.test/p?cid=abc",
		},
		{
			name:    "both macros filled",
			target:  "https://offer.test/p?cid={click_id}&s={sub}",
			clickID: "abc",
			sub:     "fb1",
			want:    "https://offer.test/p?cid=abc&s=fb1",
		},
		{
			name:    "no macro appends cid",
			target:  "https://offer.test/p",
			clickID: "abc",
			want:    "https://offer.test/p?cid=abc",
		},
		{
			name:    "no macro with existing query appends with ampersand",
			target:  "https://offer.test/p?a=1",
			clickID: "abc",
			want:    "https://offer.test/p?a=1&cid=abc",
		},
		{
			name:   "empty click id blanks macro without appending",
			target: "https://offer.test/p?cid={click_id}",
			want:   "https://offer.test/p?cid=",
		},
		{
			name:   "empty click id never appends",
			target: "https://offer.test/p",
			want:   "https://offer.test/p",
		},
		{
			name:   "sub macro works without click id",
			target: "https://offer.test/p?s={sub}",
			sub:    "ig2",
			want:   "https://offer.test/p?s=ig2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubstituteMacros(tt.target, tt.clickID, tt.sub))
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		browser string
		os      string
		device  string
	}{
		{
			name:    "chrome windows desktop",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			browser: "Chrome", os: "Windows", device: "Desktop",
		},
		{
			name:    "safari iphone",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
			browser: "Safari", os: "iOS", device: "Mobile",
		},
		{
			name:    "ipad counts as tablet",
			ua:      "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			browser: "Safari", os: "iOS", device: "Tablet",
		},
		{
			name:    "android chrome mobile",
			ua:      "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36",
			browser: "Chrome", os: "Android", device: "Mobile",
		},
		{
			name:    "edge wins over chrome",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
			browser: "Edge", os: "Windows", device: "Desktop",
		},
		{
			name:    "firefox linux",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
			browser: "Firefox", os: "Linux", device: "Desktop",
		},
		{
			name:    "empty",
			ua:      "",
			browser: "Other", os: "Other", device: "Desktop",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, os, device := ParseUserAgent(tt.ua)
			assert.Equal(t, tt.browser, browser)
			assert.Equal(t, tt.os, os)
			assert.Equal(t, tt.device, device)
		})
	}
}

func TestIsBot(t *testing.T) {
	bots := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"curl/8.5.0",
		"python-requests/2.31.0",
		"Mozilla/5.0 (compatible; AhrefsBot/7.0; +http://ahrefs.com/robot/)",
		"HeadlessChrome/126.0.0.0",
	}
	for _, ua := range bots {
		assert.True(t, IsBot(ua), "IsBot(%q)", ua)
	}

	humans := []string{
		"",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
	}
	for _, ua := range humans {
		assert.False(t, IsBot(ua), "IsBot(%q)", ua)
	}
}

func TestBotName(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (compatible; Googlebot/2.1)", "Googlebot"},
		{"Mozilla/5.0 (compatible; bingbot/2.0)", "Bingbot"},
		{"facebookexternalhit/1.1", "Facebook"},
		{"DuckDuckBot/1.0", "DuckDuckBot"},
		{"SomeRandomBot/1.0", "Other Bot"},
		{"curl/8.5.0", "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BotName(tt.ua), "BotName(%q)", tt.ua)
	}
}

func TestCleanReferrer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Direct"},
		{"https://www.facebook.com/groups/ketolife", "Facebook"},
		{"https://l.instagram.com/?u=x", "Instagram"},
		{"https://www.tiktok.com/@creator", "TikTok"},
		{"https://www.google.com/search?q=keto", "Google"},
		{"https://t.co/AbCdEf", "X"},
		{"android-app://com.reddit.frontpage", "Reddit"},
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"https://www.example.org/page", "example.org"},
		{"not a url", "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanReferrer(tt.in), "CleanReferrer(%q)", tt.in)
	}
}

func TestFingerprintsAreStableAndSalted(t *testing.T) {
	h1 := HashIP("203.0.113.7")
	h2 := HashIP("203.0.113.7")
	assert.Equal(t, h1, h2, "same IP must hash the same")
	assert.Len(t, h1, 16)
	assert.NotEqual(t, h1, HashIP("203.0.113.8"))
	assert.NotContains(t, h1, ".", "hash must not leak the address")

	ua := "Mozilla/5.0 Chrome/126.0"
	v1 := VisitorID("203.0.113.7", ua)
	assert.Equal(t, v1, VisitorID("203.0.113.7", ua))
	assert.Len(t, v1, 16)
	assert.NotEqual(t, v1, VisitorID("203.0.113.7", "Mozilla/5.0 Firefox/127.0"))
	assert.NotEqual(t, v1, h1, "visitor fingerprint differs from the bare IP hash")
}
