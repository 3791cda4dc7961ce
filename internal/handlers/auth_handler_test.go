package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/middleware"
	"budgettracker/internal/models"
	"budgettracker/internal/services"
	"budgettracker/internal/testutil"
)

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	resp := http.Response{Header: w.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func setupAuthRouter(t *testing.T, handler *AuthHandler) *gin.Engine {
	r := newTestRouter(t)
	r.GET("/login", handler.ShowLogin)
	r.POST("/login", handler.Login)
	r.GET("/register", handler.ShowRegister)
	r.POST("/register", handler.Register)
	r.POST("/logout", handler.Logout)
	r.POST("/account/delete", injectUserID(1), handler.DeleteAccount)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success_logs_in", func(t *testing.T) {
		audit := &mockAuditService{}
		var gotEmail string
		users := &mockUserService{
			createUserFn: func(email, password string) (*models.User, error) {
				gotEmail = email
				return &models.User{Base: models.Base{ID: 4}, Email: email}, nil
			},
		}
		var sessionFor uint
		sessions := &mockSessionService{
			createFn: func(userID uint) (string, *models.Session, error) {
				sessionFor = userID
				return "tok-4", &models.Session{ID: "s", UserID: userID}, nil
			},
		}
		r := setupAuthRouter(t, NewAuthHandler(users, sessions, audit, time.Hour, false))

		w := postForm(r, "/register", url.Values{"email": {"a@example.com"}, "password": {"secret"}})

		testutil.AssertRedirect(t, w, "/")
		assertFlash(t, w, flashSuccess, "Registered and logged in!")
		if gotEmail != "a@example.com" {
			t.Errorf("expected email to be passed through, got %q", gotEmail)
		}
		if sessionFor != 4 {
			t.Errorf("expected session for user 4, got %d", sessionFor)
		}
		cookie := sessionCookie(t, w)
		if cookie == nil || cookie.Value != "tok-4" || !cookie.HttpOnly || cookie.MaxAge != 3600 {
			t.Errorf("unexpected session cookie %+v", cookie)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != services.AuditRegister {
			t.Errorf("expected register audit, got %v", got)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		users := &mockUserService{
			createUserFn: func(email, password string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(t, NewAuthHandler(users, &mockSessionService{}, &mockAuditService{}, time.Hour, false))

		w := postForm(r, "/register", url.Values{"email": {"a@example.com"}, "password": {"secret"}})

		testutil.AssertRedirect(t, w, "/register")
		assertFlash(t, w, flashWarning, apperrors.ErrDuplicateEmail.Message)
		if sessionCookie(t, w) != nil {
			t.Error("no session should be issued")
		}
	})

	t.Run("missing_fields", func(t *testing.T) {
		users := &mockUserService{
			createUserFn: func(email, password string) (*models.User, error) {
				if email == "" || password == "" {
					return nil, apperrors.ErrMissingCredentials
				}
				return &models.User{}, nil
			},
		}
		r := setupAuthRouter(t, NewAuthHandler(users, &mockSessionService{}, &mockAuditService{}, time.Hour, false))

		w := postForm(r, "/register", url.Values{"email": {"a@example.com"}})

		testutil.AssertRedirect(t, w, "/register")
		assertFlash(t, w, flashDanger, apperrors.ErrMissingCredentials.Message)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(t, NewAuthHandler(&mockUserService{}, &mockSessionService{}, audit, time.Hour, true))

		w := postForm(r, "/login", url.Values{"email": {"a@example.com"}, "password": {"secret"}})

		testutil.AssertRedirect(t, w, "/")
		assertFlash(t, w, flashSuccess, "Logged in.")
		cookie := sessionCookie(t, w)
		if cookie == nil || cookie.Value != "signed-token" || !cookie.Secure {
			t.Errorf("unexpected session cookie %+v", cookie)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != services.AuditLogin {
			t.Errorf("expected login audit, got %v", got)
		}
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		users := &mockUserService{
			authenticateFn: func(email, password string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(t, NewAuthHandler(users, &mockSessionService{}, &mockAuditService{}, time.Hour, false))

		w := postForm(r, "/login", url.Values{"email": {"a@example.com"}, "password": {"wrong"}})

		testutil.AssertRedirect(t, w, "/login")
		assertFlash(t, w, flashDanger, "Invalid email or password.")
		if sessionCookie(t, w) != nil {
			t.Error("no session should be issued")
		}
	})

	t.Run("session_store_failure", func(t *testing.T) {
		sessions := &mockSessionService{
			createFn: func(userID uint) (string, *models.Session, error) {
				return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("disk full"))
			},
		}
		r := setupAuthRouter(t, NewAuthHandler(&mockUserService{}, sessions, &mockAuditService{}, time.Hour, false))

		w := postForm(r, "/login", url.Values{"email": {"a@example.com"}, "password": {"secret"}})

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "disk full") {
			t.Error("internal error leaked into the page")
		}
	})
}

func TestAuthHandler_ShowLogin_ConsumesFlash(t *testing.T) {
	r := setupAuthRouter(t, NewAuthHandler(&mockUserService{}, &mockSessionService{}, &mockAuditService{}, time.Hour, false))

	// Produce a flash cookie through a failed login, then replay it.
	users := &mockUserService{
		authenticateFn: func(email, password string) (*models.User, error) {
			return nil, apperrors.ErrInvalidCredentials
		},
	}
	failing := setupAuthRouter(t, NewAuthHandler(users, &mockSessionService{}, &mockAuditService{}, time.Hour, false))
	first := postForm(failing, "/login", url.Values{"email": {"x@example.com"}})
	var flashCookie *http.Cookie
	for _, c := range (&http.Response{Header: first.Header()}).Cookies() {
		if c.Name == flashCookieName {
			flashCookie = c
		}
	}
	if flashCookie == nil {
		t.Fatal("expected a flash cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(flashCookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password.") {
		t.Error("expected flash message in page")
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), flashCookieName+"=;") {
		t.Error("expected flash cookie to be cleared")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	sessions := &mockSessionService{
		revokeFn: func(token string) error {
			revoked = token
			return nil
		},
	}
	r := setupAuthRouter(t, NewAuthHandler(&mockUserService{}, sessions, &mockAuditService{}, time.Hour, false))

	w := postForm(r, "/logout", url.Values{}, &http.Cookie{Name: middleware.SessionCookieName, Value: "tok"})

	testutil.AssertRedirect(t, w, "/login")
	assertFlash(t, w, flashInfo, "Logged out.")
	if revoked != "tok" {
		t.Errorf("expected token to be revoked, got %q", revoked)
	}
	if cookie := sessionCookie(t, w); cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("expected session cookie to be cleared, got %+v", cookie)
	}

	t.Run("revoke_failure_still_logs_out", func(t *testing.T) {
		sessions := &mockSessionService{
			revokeFn: func(string) error { return apperrors.ErrUnauthorized },
		}
		r := setupAuthRouter(t, NewAuthHandler(&mockUserService{}, sessions, &mockAuditService{}, time.Hour, false))

		w := postForm(r, "/logout", url.Values{}, &http.Cookie{Name: middleware.SessionCookieName, Value: "garbage"})
		testutil.AssertRedirect(t, w, "/login")
	})
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	var deleted uint
	users := &mockUserService{
		deleteUserFn: func(id uint) error {
			deleted = id
			return nil
		},
	}
	r := setupAuthRouter(t, NewAuthHandler(users, &mockSessionService{}, &mockAuditService{}, time.Hour, false))

	w := postForm(r, "/account/delete", url.Values{})

	testutil.AssertRedirect(t, w, "/register")
	assertFlash(t, w, flashInfo, "Your account has been deleted.")
	if deleted != 1 {
		t.Errorf("expected user 1 to be deleted, got %d", deleted)
	}
	if cookie := sessionCookie(t, w); cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("expected session cookie to be cleared, got %+v", cookie)
	}
}
