package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

// Context keys set by the session middleware.
const (
	UserIDKey       = "userID"
	SessionIDKey    = "sessionID"
	SessionTokenKey = "sessionToken"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "budget_session"

// LoginPath is where browsers without a valid session are sent.
const LoginPath = "/login"

// SetSessionCookie stores token in an HttpOnly cookie valid for ttl.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

// SessionToken returns the raw session token from the request cookie.
func SessionToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

// authenticate resolves the session cookie and stores the user and session
// ids in the context.
func authenticate(c *gin.Context, sessions services.SessionServicer) error {
	token := SessionToken(c)
	if token == "" {
		return apperrors.ErrUnauthorized
	}
	session, err := sessions.Validate(token)
	if err != nil {
		return err
	}
	c.Set(UserIDKey, session.UserID)
	c.Set(SessionIDKey, session.ID)
	c.Set(SessionTokenKey, token)
	return nil
}

// RequireSession guards browser routes. Requests without a valid session are
// redirected to the login page and a stale cookie is dropped.
func RequireSession(sessions services.SessionServicer, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, sessions); err != nil {
			if SessionToken(c) != "" {
				ClearSessionCookie(c, secure)
			}
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSessionAPI guards JSON routes and answers 401 on a missing or
// invalid session.
func RequireSessionAPI(sessions services.SessionServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, sessions); err != nil {
			appErr := apperrors.ErrUnauthorized
			if errors.Is(err, apperrors.ErrSessionExpired) {
				appErr = apperrors.ErrSessionExpired
			}
			c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
				"error": gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
				},
			})
			return
		}
		c.Next()
	}
}
