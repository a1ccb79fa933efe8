package tracker

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/track"
	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/views"
)

const maxNoteLen = 500

// handleDashboard renders the campaigns page. The grid arrives as a fragment;
// until then the skeleton list holds the layout.
func (a *App) handleDashboard(c echo.Context) error {
	content := views.Sequence(
		views.FlashMessage(c.QueryParam("msg")),
		views.DashboardContent(views.DefaultSkeletonCount),
		views.ConversionsSection(),
	)
	return Render(c, a.appPage(views.DashboardMeta, content, c))
}

// handleEntriesList serves the campaign grid. Fragment requests get the bare
// grid for swapping; direct navigation gets the full page, so the filter
// links keep working without scripting.
func (a *App) handleEntriesList(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !ValidStatus(status) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	entries, err := a.Cache.ListEntries(status)
	if err != nil {
		return err
	}
	totals, err := a.TrackStore.TotalsByEntry()
	if err != nil {
		return err
	}

	list := views.EntriesList(a.entryViews(entries, totals), status)
	if c.Request().Header.Get("HX-Request") == "true" {
		return Render(c, list)
	}
	return Render(c, a.appPage(views.DashboardMeta, list, c))
}

func (a *App) handleEntryNew(c echo.Context) error {
	form := views.EntryView{
		Status:    StatusActive,
		StartDate: time.Now().UTC().Format("2006-01-02"),
	}
	content := views.Sequence(
		views.FlashMessage(c.QueryParam("msg")),
		views.EntryForm(form, a.Networks.Options(), CsrfToken(c), true),
	)
	return Render(c, a.appPage(views.DashboardMeta, content, c))
}

func (a *App) handleEntryCreate(c echo.Context) error {
	e, errMsg := a.entryFromForm(c, "")
	if errMsg != "" {
		return c.Redirect(http.StatusSeeOther, "/app/entries/new/?msg="+url.QueryEscape(errMsg))
	}
	if _, err := a.Store.GetEntry(e.Slug); err == nil {
		return c.Redirect(http.StatusSeeOther, "/app/entries/new/?msg="+url.QueryEscape("A campaign with this slug already exists."))
	} else if err != ErrNotFound {
		return err
	}
	if err := a.Store.SaveEntry(e); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/app/?msg="+url.QueryEscape("Campaign created."))
}

func (a *App) handleEntryEdit(c echo.Context) error {
	slug := c.Param("slug")
	entry, err := a.Store.GetEntry(slug)
	if err != nil {
		if err == ErrNotFound {
			return echo.ErrNotFound
		}
		return err
	}
	totals, err := a.TrackStore.TotalsByEntry()
	if err != nil {
		return err
	}
	content := views.Sequence(
		views.FlashMessage(c.QueryParam("msg")),
		views.EntryForm(a.entryView(entry, totals[slug]), a.Networks.Options(), CsrfToken(c), false),
		views.StatsPanel(slug),
	)
	return Render(c, a.appPage(views.DashboardMeta, content, c))
}

func (a *App) handleEntryUpdate(c echo.Context) error {
	slug := c.Param("slug")
	existing, err := a.Store.GetEntry(slug)
	if err != nil {
		if err == ErrNotFound {
			return echo.ErrNotFound
		}
		return err
	}

	e, errMsg := a.entryFromForm(c, slug)
	if errMsg != "" {
		return c.Redirect(http.StatusSeeOther, "/app/entries/"+slug+"/?msg="+url.QueryEscape(errMsg))
	}
	e.Icon = existing.Icon
	e.CreatedAt = existing.CreatedAt
	if err := a.Store.SaveEntry(e); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/app/entries/"+slug+"/?msg="+url.QueryEscape("Saved."))
}

func (a *App) handleEntryDelete(c echo.Context) error {
	slug := c.Param("slug")
	entry, err := a.Store.GetEntry(slug)
	if err != nil {
		if err == ErrNotFound {
			return echo.ErrNotFound
		}
		return err
	}
	a.removeIconFile(entry.Icon)
	if err := a.Store.DeleteEntry(slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	c.Response().Header().Set("HX-Redirect", "/app/")
	return c.NoContent(http.StatusOK)
}

// entryFromForm parses and validates the campaign form. slug is empty on
// create, fixed on update. Returns a message suitable for the flash on
// validation failure.
func (a *App) entryFromForm(c echo.Context, slug string) (Entry, string) {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return Entry{}, "Name is required."
	}

	if slug == "" {
		slug = Slugify(c.FormValue("slug"))
		if slug == "" {
			slug = Slugify(name)
		}
		if slug == "" {
			return Entry{}, "Slug is required. Add a name or slug."
		}
	}

	network := c.FormValue("network")
	if !a.Networks.Valid(network) {
		return Entry{}, "Unknown network."
	}

	targetURL := strings.TrimSpace(c.FormValue("target_url"))
	if !ValidTargetURL(targetURL) {
		return Entry{}, "Destination must be an absolute http(s) URL."
	}

	status := c.FormValue("status")
	if !ValidStatus(status) {
		return Entry{}, "Unknown status."
	}

	startDate := strings.TrimSpace(c.FormValue("start_date"))
	if startDate == "" {
		startDate = time.Now().UTC().Format("2006-01-02")
	}
	if !ValidDate(startDate) {
		return Entry{}, "Invalid start date. Use YYYY-MM-DD."
	}

	spend, err := track.ParseMoneyCents(c.FormValue("spend"))
	if err != nil {
		return Entry{}, "Invalid ad spend amount."
	}

	note := strings.TrimSpace(c.FormValue("note"))
	if len(note) > maxNoteLen {
		return Entry{}, "Note is too long."
	}

	return Entry{
		Slug:       slug,
		Name:       name,
		Network:    network,
		TargetURL:  targetURL,
		Status:     status,
		StartDate:  startDate,
		SpendCents: spend,
		Note:       note,
	}, ""
}

// handleStatsFragment renders the stats panel body for one campaign over the
// last 30 days.
func (a *App) handleStatsFragment(c echo.Context) error {
	slug := c.Param("slug")
	if _, err := a.Cache.GetEntry(slug); err != nil {
		if err == ErrNotFound {
			return echo.ErrNotFound
		}
		return err
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	stats, err := a.TrackStore.EntryStats(c.Request().Context(), slug, from, to)
	if err != nil {
		return err
	}

	view := views.StatsView{
		Period:       stats.Period,
		Clicks:       stats.Clicks,
		Uniques:      stats.Uniques,
		Bots:         stats.Bots,
		Conversions:  stats.Conversions,
		RevenueCents: stats.RevenueCents,
	}
	for _, d := range stats.Daily {
		view.Daily = append(view.Daily, views.DayPoint{Date: d.Date, Clicks: d.Clicks})
	}
	for _, r := range stats.Referrers {
		view.Referrers = append(view.Referrers, views.NameCount{Name: r.Name, Count: r.Count})
	}
	for _, d := range stats.Devices {
		view.Devices = append(view.Devices, views.NameCount{Name: d.Name, Count: d.Count})
	}
	return Render(c, views.StatsFragment(view))
}

// handleConversionsFragment renders the recent-conversions table.
func (a *App) handleConversionsFragment(c echo.Context) error {
	conversions, err := a.TrackStore.RecentConversions(20)
	if err != nil {
		return err
	}
	rows := make([]views.ConversionRow, len(conversions))
	for i, cv := range conversions {
		name := cv.EntrySlug
		if entry, err := a.Cache.GetEntry(cv.EntrySlug); err == nil {
			name = entry.Name
		}
		rows[i] = views.ConversionRow{
			When:        cv.Timestamp.Format("Jan 2 15:04"),
			EntryName:   name,
			PayoutCents: cv.PayoutCents,
			Status:      cv.Status,
		}
	}
	return Render(c, views.ConversionsTable(rows))
}

func (a *App) entryViews(entries []Entry, totals map[string]track.Totals) []views.EntryView {
	out := make([]views.EntryView, len(entries))
	for i, e := range entries {
		out[i] = a.entryView(e, totals[e.Slug])
	}
	return out
}

func (a *App) entryView(e Entry, t track.Totals) views.EntryView {
	network, ok := a.Networks.Get(e.Network)
	if !ok {
		network = Network{Slug: e.Network, Label: e.Network, Glyph: "?"}
	}
	iconURL := ""
	if e.Icon != "" {
		iconURL = "/public/icons/" + e.Icon
	}
	return views.EntryView{
		Slug:         e.Slug,
		Name:         e.Name,
		Network:      e.Network,
		NetworkLabel: network.Label,
		NetworkGlyph: network.Glyph,
		IconURL:      iconURL,
		Status:       e.Status,
		StartDate:    e.StartDate,
		TargetURL:    e.TargetURL,
		Note:         e.Note,
		SpendCents:   e.SpendCents,
		Clicks:       t.Clicks,
		Conversions:  t.Conversions,
		RevenueCents: t.RevenueCents,
	}
}
