package tracker

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/views"
)

// Network is one affiliate network from the embedded catalog. The glyph is
// shown on campaign cards until the operator uploads an icon.
type Network struct {
	Slug  string `yaml:"slug"`
	Label string `yaml:"label"`
	Glyph string `yaml:"glyph"`
}

// NetworkCatalog is the parsed catalog, keeping the file order for form
// selects and an index for lookups.
type NetworkCatalog struct {
	list  []Network
	index map[string]Network
}

type networkCatalogFile struct {
	Networks []Network `yaml:"networks"`
}

// loadNetworkCatalog parses and validates the embedded YAML catalog.
func loadNetworkCatalog(data []byte) (*NetworkCatalog, error) {
	var file networkCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse network catalog: %w", err)
	}
	if len(file.Networks) == 0 {
		return nil, fmt.Errorf("network catalog is empty")
	}

	nc := &NetworkCatalog{index: make(map[string]Network, len(file.Networks))}
	for i, n := range file.Networks {
		if n.Slug == "" || n.Label == "" {
			return nil, fmt.Errorf("network %d: slug and label are required", i)
		}
		if _, dup := nc.index[n.Slug]; dup {
			return nil, fmt.Errorf("network %q: duplicate slug", n.Slug)
		}
		if n.Glyph == "" {
			n.Glyph = strings.ToUpper(n.Slug[:1])
		}
		nc.list = append(nc.list, n)
		nc.index[n.Slug] = n
	}
	return nc, nil
}

// Get returns the network for a slug.
func (nc *NetworkCatalog) Get(slug string) (Network, bool) {
	n, ok := nc.index[slug]
	return n, ok
}

// Valid reports whether slug names a catalog network.
func (nc *NetworkCatalog) Valid(slug string) bool {
	_, ok := nc.index[slug]
	return ok
}

// Options returns the catalog in file order for the entry form select.
func (nc *NetworkCatalog) Options() []views.NetworkOption {
	opts := make([]views.NetworkOption, len(nc.list))
	for i, n := range nc.list {
		opts[i] = views.NetworkOption{Slug: n.Slug, Label: n.Label}
	}
	return opts
}
