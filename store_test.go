package tracker

import (
	"errors"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}

	return s, cleanup
}

func testEntry(slug string) Entry {
	return Entry{
		Slug:       slug,
		Name:       "Keto Cookbook",
		Network:    "clickbank",
		TargetURL:  "https://offer.example.com/keto?cid={click_id}",
		Status:     StatusActive,
		StartDate:  "2026-03-01",
		SpendCents: 15000,
		Note:       "FB traffic, broad audience",
	}
}

func TestNewStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetEntry(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	e := testEntry("keto-cookbook")
	if err := s.SaveEntry(e); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}

	got, err := s.GetEntry("keto-cookbook")
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Name != e.Name {
		t.Errorf("Name = %q, want %q", got.Name, e.Name)
	}
	if got.Network != e.Network {
		t.Errorf("Network = %q, want %q", got.Network, e.Network)
	}
	if got.TargetURL != e.TargetURL {
		t.Errorf("TargetURL = %q, want %q", got.TargetURL, e.TargetURL)
	}
	if got.SpendCents != e.SpendCents {
		t.Errorf("SpendCents = %d, want %d", got.SpendCents, e.SpendCents)
	}
	if got.CreatedAt == "" {
		t.Error("CreatedAt should be set on first save")
	}
}

func TestGetEntryNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetEntry("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveEntryUpdatePreservesCreatedAt(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	e := testEntry("keto-cookbook")
	if err := s.SaveEntry(e); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}
	first, err := s.GetEntry("keto-cookbook")
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}

	e.Name = "Keto Cookbook v2"
	e.SpendCents = 20000
	if err := s.SaveEntry(e); err != nil {
		t.Fatalf("failed to update entry: %v", err)
	}

	got, err := s.GetEntry("keto-cookbook")
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Name != "Keto Cookbook v2" {
		t.Errorf("Name = %q, want updated name", got.Name)
	}
	if got.CreatedAt != first.CreatedAt {
		t.Errorf("CreatedAt changed on update: %q -> %q", first.CreatedAt, got.CreatedAt)
	}
}

func TestListEntriesFilterAndOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	older := testEntry("older")
	older.StartDate = "2026-01-15"
	newer := testEntry("newer")
	newer.StartDate = "2026-04-01"
	paused := testEntry("paused-one")
	paused.StartDate = "2026-02-10"
	paused.Status = StatusPaused

	for _, e := range []Entry{older, newer, paused} {
		if err := s.SaveEntry(e); err != nil {
			t.Fatalf("failed to save %s: %v", e.Slug, err)
		}
	}

	all, err := s.ListEntries("")
	if err != nil {
		t.Fatalf("failed to list entries: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Slug != "newer" || all[2].Slug != "older" {
		t.Errorf("entries not ordered newest first: %s, %s, %s", all[0].Slug, all[1].Slug, all[2].Slug)
	}

	active, err := s.ListEntries(StatusActive)
	if err != nil {
		t.Fatalf("failed to list active entries: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("len(active) = %d, want 2", len(active))
	}
	for _, e := range active {
		if e.Status != StatusActive {
			t.Errorf("entry %s has status %q in active listing", e.Slug, e.Status)
		}
	}
}

func TestDeleteEntryRemovesIcons(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if err := s.SaveEntry(testEntry("keto-cookbook")); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}
	ic := Icon{
		Filename:     "keto-cookbook-a1b2c3d4.jpg",
		EntrySlug:    "keto-cookbook",
		OriginalName: "logo.png",
		Width:        128,
		Height:       128,
		Size:         4096,
	}
	if err := s.SaveIcon(ic); err != nil {
		t.Fatalf("failed to save icon: %v", err)
	}

	if err := s.DeleteEntry("keto-cookbook"); err != nil {
		t.Fatalf("failed to delete entry: %v", err)
	}

	if _, err := s.GetEntry("keto-cookbook"); !errors.Is(err, ErrNotFound) {
		t.Errorf("entry still present after delete: %v", err)
	}
	icons, err := s.ListIcons()
	if err != nil {
		t.Fatalf("failed to list icons: %v", err)
	}
	if len(icons) != 0 {
		t.Errorf("len(icons) = %d after entry delete, want 0", len(icons))
	}
}

func TestSetEntryIcon(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if err := s.SaveEntry(testEntry("keto-cookbook")); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}
	if err := s.SetEntryIcon("keto-cookbook", "keto-cookbook-a1b2c3d4.jpg"); err != nil {
		t.Fatalf("failed to set icon: %v", err)
	}
	got, err := s.GetEntry("keto-cookbook")
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got.Icon != "keto-cookbook-a1b2c3d4.jpg" {
		t.Errorf("Icon = %q, want the set filename", got.Icon)
	}
}

func TestSettingsRoundtrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	v, err := s.GetSetting("missing")
	if err != nil {
		t.Fatalf("GetSetting on missing key: %v", err)
	}
	if v != "" {
		t.Errorf("missing setting = %q, want empty", v)
	}

	if err := s.SetSetting("feed_token", "abc123"); err != nil {
		t.Fatalf("failed to set setting: %v", err)
	}
	v, err = s.GetSetting("feed_token")
	if err != nil {
		t.Fatalf("failed to get setting: %v", err)
	}
	if v != "abc123" {
		t.Errorf("setting = %q, want abc123", v)
	}

	if err := s.SetSetting("feed_token", "def456"); err != nil {
		t.Fatalf("failed to overwrite setting: %v", err)
	}
	v, _ = s.GetSetting("feed_token")
	if v != "def456" {
		t.Errorf("setting after overwrite = %q, want def456", v)
	}
}
