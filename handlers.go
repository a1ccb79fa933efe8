package tracker

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/Pixadrop-LTD/AffiliateTracker-sub001/views"
)

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

// page wraps body in the public layout.
func (a *App) page(meta views.PageMetadata, body templ.Component) templ.Component {
	return views.Layout(a.site(), meta, body)
}

// appPage wraps content in the authenticated shell. Everything rendered
// through it sits behind requireAuth.
func (a *App) appPage(meta views.PageMetadata, content templ.Component, c echo.Context) templ.Component {
	return views.Layout(a.site(), meta, views.AppShell(a.site(), CsrfToken(c), content))
}

func (a *App) loginPage(showError bool, c echo.Context) templ.Component {
	return a.page(views.LoginMeta, views.Login(showError, CsrfToken(c)))
}

func (a *App) handleLanding(c echo.Context) error {
	return Render(c, a.page(views.LandingMeta, views.Landing(a.site())))
}

// handleRobots keeps crawlers on the landing page; the operator surface and
// tracking endpoints are never worth indexing.
func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\n" +
		"Disallow: /app/\n" +
		"Disallow: /t/\n" +
		"Disallow: /postback\n" +
		"Disallow: /login/\n" +
		"\n" +
		"Sitemap: " + EndpointURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func handleFavicon(c echo.Context) error {
	data, err := embeddedAssets.ReadFile("assets/favicon.svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", data)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
