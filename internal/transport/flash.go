package transport

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	flashCookie  = "bookmarker_flash"
	flashPending = "flash_pending"

	levelSuccess = "success"
	levelWarning = "warning"
	levelDanger  = "danger"
)

type (
	Alert struct {
		Message string `json:"message"`
		Level   string `json:"level"`
	}

	// Flash is carried to the next request in a cookie and consumed by the
	// first render that reads it.
	Flash struct {
		Alerts     []Alert `json:"alerts,omitempty"`
		ReloadView bool    `json:"reload_view,omitempty"`
	}
)

func alert(c echo.Context, message, level string) {
	updateFlash(c, func(f *Flash) {
		f.Alerts = append(f.Alerts, Alert{Message: message, Level: level})
	})
}

func flashReloadView(c echo.Context) {
	updateFlash(c, func(f *Flash) {
		f.ReloadView = true
	})
}

// updateFlash mutates the flash pending for the next request. The cookie is
// written once, right before the response headers go out.
func updateFlash(c echo.Context, mutate func(*Flash)) {
	f, ok := c.Get(flashPending).(*Flash)
	if !ok {
		f = &Flash{}
		c.Set(flashPending, f)
		c.Response().Before(func() {
			writeFlash(c, f)
		})
	}
	mutate(f)
}

func writeFlash(c echo.Context, f *Flash) {
	raw, err := json.Marshal(f)
	if err != nil {
		c.Logger().Error(err)
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pullFlash returns the flash left by the previous request and expires it.
func pullFlash(c echo.Context) Flash {
	f := Flash{}
	cookie, err := c.Cookie(flashCookie)
	if err != nil {
		return f
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	f, err = decodeFlash(cookie.Value)
	if err != nil {
		return Flash{}
	}
	return f
}

func decodeFlash(value string) (Flash, error) {
	f := Flash{}
	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return f, err
	}
	err = json.Unmarshal(raw, &f)
	return f, err
}
