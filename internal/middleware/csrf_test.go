// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// csrfEcho runs NewCSRF around a handler that reports the context token.
func csrfEcho(secure bool) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(CSRFTokenFromCtx(r.Context())))
	}))
}

func csrfCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	return nil
}

// TestCSRFFirstRenderEmbedsIssuedToken checks that the very first admin
// page, rendered before the browser has the cookie, sees the same token the
// cookie carries.
func TestCSRFFirstRenderEmbedsIssuedToken(t *testing.T) {
	for _, secure := range []bool{false, true} {
		rec := httptest.NewRecorder()
		csrfEcho(secure).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

		c := csrfCookie(rec)
		if c == nil {
			t.Fatalf("secure=%v: no %s cookie issued", secure, CSRFCookieName)
		}
		if len(c.Value) != csrfTokenLength*2 {
			t.Errorf("token length: got %d, want %d hex chars", len(c.Value), csrfTokenLength*2)
		}
		if body := rec.Body.String(); body != c.Value {
			t.Errorf("context token %q does not match cookie %q", body, c.Value)
		}
		if c.Secure != secure {
			t.Errorf("Secure: got %v, want %v", c.Secure, secure)
		}
		if c.HttpOnly {
			t.Error("cookie must stay readable by the admin layout")
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("SameSite: got %v, want Strict", c.SameSite)
		}
	}
}

func TestCSRFReusesExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/calculators", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing-token"})
	rec := httptest.NewRecorder()
	csrfEcho(false).ServeHTTP(rec, req)

	if c := csrfCookie(rec); c != nil {
		t.Errorf("no new cookie expected, got %q", c.Value)
	}
	if got := rec.Body.String(); got != "existing-token" {
		t.Errorf("context token: got %q, want existing-token", got)
	}
}

// TestCSRFAdminFormPosts submits the admin calculator and category forms
// the way the browser and HTMX do.
func TestCSRFAdminFormPosts(t *testing.T) {
	const token = "tok-123"

	tests := []struct {
		name   string
		method string
		target string
		form   url.Values
		header string
		cookie bool
		want   int
	}{
		{"calculator create with form field", http.MethodPost, "/admin/calculators",
			url.Values{"name": {"Tip"}, CSRFFormField: {token}}, "", true, http.StatusOK},
		{"category delete via htmx header", http.MethodPost, "/admin/categories/42/delete",
			nil, token, true, http.StatusOK},
		{"calculator update without token", http.MethodPost, "/admin/calculators/42",
			url.Values{"name": {"Tip"}}, "", true, http.StatusForbidden},
		{"category create with wrong token", http.MethodPost, "/admin/categories",
			url.Values{"name": {"Health"}, CSRFFormField: {"forged"}}, "", true, http.StatusForbidden},
		{"token but no cookie", http.MethodPost, "/admin/calculators",
			url.Values{CSRFFormField: {token}}, "", false, http.StatusForbidden},
		{"refresh catalog with header", http.MethodPost, "/admin/catalog/refresh",
			nil, token, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.form != nil {
				body = strings.NewReader(tt.form.Encode())
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			if tt.form != nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
			}

			rec := httptest.NewRecorder()
			csrfEcho(false).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCSRFSafeMethodsSkipCheck(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rec := httptest.NewRecorder()
		csrfEcho(false).ServeHTTP(rec, httptest.NewRequest(m, "/admin/dashboard", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", m, rec.Code)
		}
	}
}

func TestCSRFTokenFromCtxOutsideMiddleware(t *testing.T) {
	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
