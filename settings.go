package tracker

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/track"
	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/views"
)

// Settings keys in the campaign store.
const (
	settingFeedToken     = "feed_token"
	settingRetentionDays = "retention_days"
)

const defaultRetentionDays = 90

func (a *App) handleSettings(c echo.Context) error {
	form, err := a.settingsForm()
	if err != nil {
		return err
	}
	page := views.SettingsPage(form, CsrfToken(c), c.QueryParam("msg"))
	return Render(c, a.appPage(views.SettingsMeta, page, c))
}

func (a *App) settingsForm() (views.SettingsForm, error) {
	token, err := a.Store.GetSetting(settingFeedToken)
	if err != nil {
		return views.SettingsForm{}, err
	}
	days, err := a.retentionDays()
	if err != nil {
		return views.SettingsForm{}, err
	}
	key := track.PostbackKey()
	return views.SettingsForm{
		PostbackKey:   key,
		FeedToken:     token,
		RetentionDays: days,
		PostbackURL:   EndpointURL(a.Config.URL, "postback") + "?key=" + key + "&click_id={click_id}&payout={payout}&txn_id={txn_id}&status={status}",
		TrackingURL:   EndpointURL(a.Config.URL, "t", "your-campaign"),
	}, nil
}

// retentionDays reads the configured click retention, falling back to the
// default when unset or out of range.
func (a *App) retentionDays() (int, error) {
	v, err := a.Store.GetSetting(settingRetentionDays)
	if err != nil {
		return 0, err
	}
	days, convErr := strconv.Atoi(v)
	if v == "" || convErr != nil || days < 1 || days > 3650 {
		return defaultRetentionDays, nil
	}
	return days, nil
}

func (a *App) handleSettingsSave(c echo.Context) error {
	days, err := strconv.Atoi(c.FormValue("retention_days"))
	if err != nil || days < 1 || days > 3650 {
		return c.Redirect(http.StatusSeeOther, "/app/settings/?msg="+url.QueryEscape("Retention must be between 1 and 3650 days."))
	}
	if err := a.Store.SetSetting(settingRetentionDays, strconv.Itoa(days)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/app/settings/?msg="+url.QueryEscape("Saved. Retention applies after restart."))
}

func (a *App) handleSettingsRotate(c echo.Context) error {
	switch c.FormValue("which") {
	case "postback":
		if _, err := track.RotatePostbackKey(a.TrackStore); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/app/settings/?msg="+url.QueryEscape("Postback key rotated. Update your networks."))
	case "feed":
		token, err := newToken()
		if err != nil {
			return err
		}
		if err := a.Store.SetSetting(settingFeedToken, token); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/app/settings/?msg="+url.QueryEscape("Feed token rotated."))
	default:
		return c.String(http.StatusBadRequest, "Unknown rotate target")
	}
}

// ensureFeedToken generates the conversions feed token on first start.
func (a *App) ensureFeedToken() error {
	token, err := a.Store.GetSetting(settingFeedToken)
	if err != nil {
		return err
	}
	if token != "" {
		return nil
	}
	token, err = newToken()
	if err != nil {
		return err
	}
	return a.Store.SetSetting(settingFeedToken, token)
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
