package tracker

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const apiTokenTTL = time.Hour

type apiTokenRequest struct {
	Password string `json:"password"`
}

type apiTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// setupAPIRoutes registers the JSON reporting API. The whole surface is off
// unless an API secret is configured.
func (a *App) setupAPIRoutes() {
	if a.Config.APISecret == "" {
		return
	}
	e := a.Echo
	e.POST("/api/v1/token", a.handleAPIToken)
	g := e.Group("/api/v1", a.apiAuth)
	g.GET("/entries", a.handleAPIEntries)
	g.GET("/entries/:slug/stats", a.trackHandler.StatsJSON)
	g.GET("/conversions", a.trackHandler.ConversionsJSON)
}

// handleAPIToken exchanges the admin password for a short-lived bearer
// token. It shares the login limiter with the HTML form, so hammering one
// surface locks out both.
func (a *App) handleAPIToken(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many attempts"})
	}
	var req apiTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(apiTokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(a.Config.APISecret))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiTokenResponse{Token: signed, ExpiresIn: int(apiTokenTTL.Seconds())})
}

// apiAuth guards API routes with tokens from handleAPIToken. Errors are
// returned as JSON here because the app-wide error handler renders HTML.
func (a *App) apiAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := validateAPIToken(c.Request().Header.Get("Authorization"), []byte(a.Config.APISecret)); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		return next(c)
	}
}

func validateAPIToken(authz string, secret []byte) error {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return errors.New("missing bearer token")
	}
	tok, err := jwt.Parse(strings.TrimPrefix(authz, prefix), func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return errors.New("token expired")
	}
	if sub, ok := claims["sub"].(string); !ok || sub != "operator" {
		return errors.New("invalid sub claim")
	}
	return nil
}

type apiEntry struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Network      string `json:"network"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	SpendCents   int64  `json:"spend_cents"`
	Clicks       int    `json:"clicks"`
	Conversions  int    `json:"conversions"`
	RevenueCents int64  `json:"revenue_cents"`
}

// handleAPIEntries lists campaigns with their lifetime click and revenue
// totals, optionally filtered by status.
func (a *App) handleAPIEntries(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown status"})
	}
	entries, err := a.Cache.ListEntries(status)
	if err != nil {
		return err
	}
	totals, err := a.TrackStore.TotalsByEntry()
	if err != nil {
		return err
	}
	out := make([]apiEntry, 0, len(entries))
	for _, e := range entries {
		t := totals[e.Slug]
		out = append(out, apiEntry{
			Slug:         e.Slug,
			Name:         e.Name,
			Network:      e.Network,
			Status:       e.Status,
			StartDate:    e.StartDate,
			SpendCents:   e.SpendCents,
			Clicks:       t.Clicks,
			Conversions:  t.Conversions,
			RevenueCents: t.RevenueCents,
		})
	}
	return c.JSON(http.StatusOK, out)
}
