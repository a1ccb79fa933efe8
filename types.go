package tracker

// Entry is a campaign record: one promoted offer on one traffic network,
// stored in SQLite and addressed by slug.
type Entry struct {
	Slug       string
	Name       string
	Network    string // slug into the network catalog
	TargetURL  string // destination; may contain {click_id} and {sub} macros
	Status     string
	StartDate  string // YYYY-MM-DD
	SpendCents int64
	Note       string
	Icon       string // uploaded icon filename, empty means network glyph
	CreatedAt  string // RFC3339, set on first save
}

// Entry statuses. Active entries record clicks, paused ones still redirect,
// archived ones return 404 on their tracking link.
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusArchived = "archived"
)

// ValidStatus reports whether s is a known entry status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPaused, StatusArchived:
		return true
	}
	return false
}

// Icon is the stored metadata for an uploaded campaign icon.
type Icon struct {
	Filename     string
	EntrySlug    string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string // RFC3339
}
