package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/middleware"
	"budgettracker/internal/services"
)

// AuthHandler handles registration, login, logout and account deletion.
type AuthHandler struct {
	userService    services.UserServicer
	sessionService services.SessionServicer
	auditService   services.AuditServicer
	sessionTTL     time.Duration
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks the session
// cookie Secure and should be set when serving over HTTPS.
func NewAuthHandler(userService services.UserServicer, sessionService services.SessionServicer, auditService services.AuditServicer, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		sessionService: sessionService,
		auditService:   auditService,
		sessionTTL:     sessionTTL,
		secureCookies:  secureCookies,
	}
}

// CredentialsForm is the login and registration form payload.
type CredentialsForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":   "Log in",
		"Flashes": consumeFlashes(c),
	})
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Title":   "Register",
		"Flashes": consumeFlashes(c),
	})
}

// Register creates the account and logs the browser in.
func (h *AuthHandler) Register(c *gin.Context) {
	var form CredentialsForm
	_ = c.ShouldBind(&form)

	user, err := h.userService.CreateUser(form.Email, form.Password)
	if err != nil {
		failPage(c, err, "/register")
		return
	}
	h.auditService.Log(user.ID, services.AuditRegister, "user", user.ID, c.ClientIP(), nil)

	if err := h.startSession(c, user.ID); err != nil {
		failPage(c, err, "/login")
		return
	}
	addFlash(c, flashSuccess, "Registered and logged in!")
	c.Redirect(http.StatusFound, "/")
}

// Login checks the credentials and issues a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var form CredentialsForm
	_ = c.ShouldBind(&form)

	user, err := h.userService.Authenticate(form.Email, form.Password)
	if err != nil {
		failPage(c, err, "/login")
		return
	}
	if err := h.startSession(c, user.ID); err != nil {
		failPage(c, err, "/login")
		return
	}
	h.auditService.Log(user.ID, services.AuditLogin, "user", user.ID, c.ClientIP(), nil)

	addFlash(c, flashSuccess, "Logged in.")
	c.Redirect(http.StatusFound, "/")
}

// Logout revokes the current session and clears the cookie. It never fails
// from the user's point of view.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.sessionService.Revoke(token); err != nil {
			logger.Get().Warnw("failed to revoke session on logout", "error", err)
		}
	}
	if userID, err := getUserID(c); err == nil {
		h.auditService.Log(userID, services.AuditLogout, "user", userID, c.ClientIP(), nil)
	}
	middleware.ClearSessionCookie(c, h.secureCookies)
	addFlash(c, flashInfo, "Logged out.")
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// DeleteAccount removes the current user and everything they own.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		failPage(c, err, middleware.LoginPath)
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		failPage(c, err, "/")
		return
	}
	// Audit rows cascade away with the user, so this is the only record.
	logger.Get().Infow("account deleted", "user_id", userID, "client_ip", c.ClientIP())

	middleware.ClearSessionCookie(c, h.secureCookies)
	addFlash(c, flashInfo, "Your account has been deleted.")
	c.Redirect(http.StatusFound, "/register")
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint) error {
	token, _, err := h.sessionService.Create(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return apperrors.ErrInternalServer
	}
	middleware.SetSessionCookie(c, token, h.sessionTTL, h.secureCookies)
	return nil
}
