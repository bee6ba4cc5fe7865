// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// auth_flow_test.go exercises login, TOTP enrolment, verification and
// logout against real PostgreSQL and Valkey.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"calchub/internal/models"
	"calchub/internal/session"
)

const (
	authTestEmail    = "handler-test-login@calchub.local"
	authTestPassword = "correct-horse-battery"
)

// createAuthUser inserts a fresh editor and removes it after the test.
func createAuthUser(t *testing.T, env *testEnv) *models.User {
	t.Helper()
	cleanUsers(env.DB, authTestEmail)
	t.Cleanup(func() { cleanUsers(env.DB, authTestEmail) })

	u, err := env.UserStore.Create(context.Background(), authTestEmail, authTestPassword, "Login Test", models.RoleEditor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func loginRequest(email, password string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// sessionRequest builds a request carrying both a stored session cookie
// and the session data in context, as LoadSession would.
func sessionRequest(t *testing.T, env *testEnv, method, target string, form url.Values, data *session.Data) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if _, err := env.Sessions.Create(context.Background(), rec, data); err != nil {
		t.Fatalf("create session: %v", err)
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req.WithContext(ctxWithSession(req.Context(), data))
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}

	sess := testSession(uuid.New(), authTestEmail, string(models.RoleEditor), true)
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	rec = httptest.NewRecorder()
	env.Auth.LoginPage(rec, req.WithContext(ctxWithSession(req.Context(), sess)))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/dashboard" {
		t.Errorf("signed-in user: got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginSubmit_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	createAuthUser(t, env)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", authTestEmail, "nope-nope-nope"},
		{"unknown email", "nobody@calchub.local", authTestPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Auth.LoginSubmit(rec, loginRequest(tt.email, tt.password))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "Invalid email or password.") {
				t.Error("expected login error")
			}
			if !strings.Contains(body, tt.email) {
				t.Error("email should be kept in the form")
			}
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.CookieName {
					t.Error("no session cookie on failed login")
				}
			}
		})
	}
}

func TestLoginSubmit_RedirectsToSetup(t *testing.T) {
	env := newTestEnv(t)
	createAuthUser(t, env)

	rec := httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, loginRequest("  "+strings.ToUpper(authTestEmail)+" ", authTestPassword))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/2fa/setup" {
		t.Errorf("Location: got %q, want /admin/2fa/setup", loc)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			found = true
			if !c.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("expected session cookie")
	}
}

func TestTwoFA_EnrolAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := createAuthUser(t, env)
	data := testSession(user.ID, user.Email, string(user.Role), false)

	// Setup page stores a secret and shows it.
	rec := httptest.NewRecorder()
	env.Auth.TwoFASetupPage(rec, sessionRequest(t, env, http.MethodGet, "/admin/2fa/setup", nil, data))
	if rec.Code != http.StatusOK {
		t.Fatalf("setup status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Error("setup page should embed a QR code")
	}

	stored, err := env.UserStore.FindByID(ctx, user.ID)
	if err != nil || stored == nil || stored.TOTPSecret == nil {
		t.Fatalf("secret not stored: %v", err)
	}
	if !strings.Contains(rec.Body.String(), *stored.TOTPSecret) {
		t.Error("setup page should show the manual key")
	}

	// A wrong code re-renders setup with the same secret.
	rec = httptest.NewRecorder()
	env.Auth.TwoFAVerifySubmit(rec, sessionRequest(t, env, http.MethodPost, "/admin/2fa/setup",
		url.Values{"code": {"000000"}}, data))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Invalid code") {
		t.Fatalf("wrong code: got %d", rec.Code)
	}

	code, err := totp.GenerateCode(*stored.TOTPSecret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	req := sessionRequest(t, env, http.MethodPost, "/admin/2fa/setup", url.Values{"code": {code}}, data)
	rec = httptest.NewRecorder()
	env.Auth.TwoFAVerifySubmit(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("valid code: got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	if stored, _ = env.UserStore.FindByID(ctx, user.ID); !stored.TOTPEnabled {
		t.Error("TOTP should be enabled after the first valid code")
	}
	got, err := env.Sessions.Get(ctx, req)
	if err != nil || got == nil || !got.TwoFADone {
		t.Errorf("session should be marked 2FA done: %+v, %v", got, err)
	}

	// Later logins go to the verify page.
	rec = httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, loginRequest(authTestEmail, authTestPassword))
	if loc := rec.Header().Get("Location"); loc != "/admin/2fa/verify" {
		t.Errorf("second login: Location %q, want /admin/2fa/verify", loc)
	}
}

func TestTwoFAVerifySubmit_WithoutSecretGoesToSetup(t *testing.T) {
	env := newTestEnv(t)
	user := createAuthUser(t, env)
	data := testSession(user.ID, user.Email, string(user.Role), false)

	rec := httptest.NewRecorder()
	env.Auth.TwoFAVerifySubmit(rec, sessionRequest(t, env, http.MethodPost, "/admin/2fa/verify",
		url.Values{"code": {"123456"}}, data))
	if loc := rec.Header().Get("Location"); rec.Code != http.StatusSeeOther || loc != "/admin/2fa/setup" {
		t.Errorf("got %d -> %q", rec.Code, loc)
	}
}

func TestTwoFAPages_RequireSession(t *testing.T) {
	env := newTestEnv(t)

	for name, h := range map[string]http.HandlerFunc{
		"setup":  env.Auth.TwoFASetupPage,
		"verify": env.Auth.TwoFAVerifyPage,
		"submit": env.Auth.TwoFAVerifySubmit,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/admin/2fa", nil))
			if loc := rec.Header().Get("Location"); rec.Code != http.StatusSeeOther || loc != "/admin/login" {
				t.Errorf("got %d -> %q", rec.Code, loc)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	data := testSession(uuid.New(), authTestEmail, string(models.RoleEditor), true)
	req := sessionRequest(t, env, http.MethodPost, "/admin/logout", url.Values{}, data)

	rec := httptest.NewRecorder()
	env.Auth.Logout(rec, req)
	if loc := rec.Header().Get("Location"); rec.Code != http.StatusSeeOther || loc != "/admin/login" {
		t.Fatalf("got %d -> %q", rec.Code, loc)
	}

	got, err := env.Sessions.Get(context.Background(), req)
	if err == nil && got != nil {
		t.Error("session should be gone after logout")
	}
}
