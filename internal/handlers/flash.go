package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "budget_flash"
	flashContextKey = "flashes"
	flashMaxAge     = 60
)

// Flash categories, matching the alert styles in the layout.
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashWarning = "warning"
	flashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a message for the next page render. Messages added during
// one request accumulate in the same cookie.
func addFlash(c *gin.Context, category, message string) {
	pending := pendingFlashes(c)
	pending = append(pending, Flash{Category: category, Message: message})
	c.Set(flashContextKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(raw), flashMaxAge, "/", "", false, true)
}

// consumeFlashes returns the queued messages and clears the cookie.
func consumeFlashes(c *gin.Context) []Flash {
	flashes := pendingFlashes(c)
	if _, err := c.Cookie(flashCookieName); err == nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	}
	c.Set(flashContextKey, []Flash(nil))
	return flashes
}

// pendingFlashes returns messages queued in this request, falling back to
// the ones carried in by the request cookie.
func pendingFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(flashContextKey); ok {
		flashes, _ := v.([]Flash)
		return flashes
	}
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
