package tracker

import (
	"strings"
	"testing"
)

func TestLoadNetworkCatalog(t *testing.T) {
	data := []byte(`networks:
  - slug: clickbank
    label: ClickBank
    glyph: CB
  - slug: maxbounty
    label: MaxBounty
`)
	nc, err := loadNetworkCatalog(data)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	cb, ok := nc.Get("clickbank")
	if !ok {
		t.Fatal("clickbank missing from catalog")
	}
	if cb.Label != "ClickBank" || cb.Glyph != "CB" {
		t.Errorf("clickbank = %+v", cb)
	}

	mb, ok := nc.Get("maxbounty")
	if !ok {
		t.Fatal("maxbounty missing from catalog")
	}
	if mb.Glyph != "M" {
		t.Errorf("glyph should default to the upper first letter, got %q", mb.Glyph)
	}

	if !nc.Valid("clickbank") || nc.Valid("unknown") {
		t.Error("Valid misreports catalog membership")
	}
}

func TestLoadNetworkCatalogOptionsKeepFileOrder(t *testing.T) {
	data := []byte(`networks:
  - slug: zeta
    label: Zeta
  - slug: alpha
    label: Alpha
  - slug: mid
    label: Mid
`)
	nc, err := loadNetworkCatalog(data)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	opts := nc.Options()
	if len(opts) != 3 {
		t.Fatalf("len(opts) = %d, want 3", len(opts))
	}
	if opts[0].Slug != "zeta" || opts[1].Slug != "alpha" || opts[2].Slug != "mid" {
		t.Errorf("options reordered: %v", opts)
	}
}

func TestLoadNetworkCatalogRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"empty", "networks: []", "empty"},
		{"missing label", "networks:\n  - slug: x", "required"},
		{"missing slug", "networks:\n  - label: X", "required"},
		{"duplicate slug", "networks:\n  - slug: x\n    label: X\n  - slug: x\n    label: Y", "duplicate"},
		{"bad yaml", "networks: [", "parse"},
	}
	for _, tt := range cases {
		_, err := loadNetworkCatalog([]byte(tt.data))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestEmbeddedNetworkCatalogLoads(t *testing.T) {
	data, err := embeddedAssets.ReadFile("assets/networks.yaml")
	if err != nil {
		t.Fatalf("failed to read embedded catalog: %v", err)
	}
	nc, err := loadNetworkCatalog(data)
	if err != nil {
		t.Fatalf("embedded catalog invalid: %v", err)
	}
	for _, slug := range []string{"clickbank", "maxbounty", "other"} {
		if !nc.Valid(slug) {
			t.Errorf("embedded catalog missing %q", slug)
		}
	}
}
