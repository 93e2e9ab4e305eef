package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/magroup/magnus/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		Username:          "MAG",
		LoginPassword:     "open-sesame",
		AdminPassword:     "root-sesame",
		SessionTTLMinutes: 60,
	}
}

func TestLogin(t *testing.T) {
	svc := New(testConfig())

	token, ok := svc.Login("MAG", "open-sesame")
	if !ok || token == "" {
		t.Fatal("valid credentials should log in")
	}
	if admin, ok := svc.Validate(token); !ok || admin {
		t.Errorf("validate: ok=%v admin=%v", ok, admin)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := New(testConfig())

	cases := []struct{ user, pass string }{
		{"MAG", "wrong"},
		{"mag", "open-sesame"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, ok := svc.Login(tc.user, tc.pass); ok {
			t.Errorf("login %q/%q should fail", tc.user, tc.pass)
		}
	}
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	svc := New(config.AuthConfig{Username: "MAG"})
	if _, ok := svc.Login("MAG", ""); ok {
		t.Error("login must be disabled when no password is configured")
	}
}

func TestAdminLogin(t *testing.T) {
	svc := New(testConfig())

	token, ok := svc.LoginAdmin("root-sesame")
	if !ok {
		t.Fatal("valid admin password should log in")
	}
	if admin, ok := svc.Validate(token); !ok || !admin {
		t.Errorf("validate: ok=%v admin=%v", ok, admin)
	}

	if _, ok := svc.LoginAdmin("wrong"); ok {
		t.Error("wrong admin password should fail")
	}
}

func TestLogout(t *testing.T) {
	svc := New(testConfig())
	token, _ := svc.Login("MAG", "open-sesame")

	svc.Logout(token)
	if _, ok := svc.Validate(token); ok {
		t.Error("token should be invalid after logout")
	}
}

func TestSessionExpiry(t *testing.T) {
	svc := New(testConfig())
	svc.ttl = -time.Minute

	token, ok := svc.Login("MAG", "open-sesame")
	if !ok {
		t.Fatal("login failed")
	}
	if _, ok := svc.Validate(token); ok {
		t.Error("expired session should not validate")
	}
}

func TestRequireSession(t *testing.T) {
	svc := New(testConfig())
	token, _ := svc.Login("MAG", "open-sesame")

	handler := svc.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No cookie.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: got %d, want 401", rec.Code)
	}

	// Valid cookie.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid cookie: got %d, want 200", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	svc := New(testConfig())
	userToken, _ := svc.Login("MAG", "open-sesame")
	adminToken, _ := svc.LoginAdmin("root-sesame")

	handler := svc.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: userToken})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("user session on admin route: got %d, want 403", rec.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: adminToken})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin session: got %d, want 200", rec.Code)
	}
}
