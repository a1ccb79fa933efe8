package tracker

import (
	"crypto/subtle"
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleConversionsFeed serves the latest conversions as a private RSS feed,
// so sales show up in a feed reader without keeping the dashboard open.
// Requests must carry the feed token from the settings page.
func (a *App) handleConversionsFeed(c echo.Context) error {
	stored, err := a.Store.GetSetting(settingFeedToken)
	if err != nil {
		return err
	}
	token := c.QueryParam("token")
	if stored == "" || subtle.ConstantTimeCompare([]byte(token), []byte(stored)) != 1 {
		return echo.ErrForbidden
	}

	rows, err := a.TrackStore.RecentConversions(50)
	if err != nil {
		return err
	}
	base := a.Config.URL
	items := make([]rssItem, 0, len(rows))
	for _, conv := range rows {
		name := conv.EntrySlug
		if entry, err := a.Cache.GetEntry(conv.EntrySlug); err == nil {
			name = entry.Name
		}
		entryURL := BuildURL(base, "app", "entries", conv.EntrySlug)
		desc := "Click " + conv.ClickID
		if conv.TxnID != "" {
			desc = "Transaction " + conv.TxnID + " via click " + conv.ClickID
		}
		items = append(items, rssItem{
			Title:       name + ": " + views.FormatCents(conv.PayoutCents) + " " + conv.Status,
			Link:        entryURL,
			Description: desc,
			PubDate:     conv.Timestamp.Format(time.RFC1123Z),
			GUID:        entryURL + "#conversion-" + strconv.FormatInt(conv.ID, 10),
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name + " conversions",
			Link:        base,
			Description: "Recent conversions recorded by " + a.Config.Name,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
