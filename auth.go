package tracker

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// requireAuth guards a route group: unauthenticated requests are sent to the
// login page and never reach the wrapped handler.
func (a *App) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsOperator(c) {
			return c.Redirect(http.StatusSeeOther, "/login/")
		}
		return next(c)
	}
}

func (a *App) handleLogin(c echo.Context) error {
	if IsOperator(c) {
		return c.Redirect(http.StatusSeeOther, "/app/")
	}
	return Render(c, a.loginPage(false, c))
}

func (a *App) handleLoginPost(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setOperatorSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/app/")
	}
	a.loginLimiter.Record(ip)
	return Render(c, a.loginPage(true, c))
}

func handleLogout(c echo.Context) error {
	if err := clearOperatorSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login/")
}
