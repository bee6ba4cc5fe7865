// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for CalcHub.
// Routes fall into three groups: the public calculator site, the
// bearer-token admin API and the session-based admin panel.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"calchub/internal/handlers"
	"calchub/internal/middleware"
	"calchub/internal/session"
	"calchub/internal/token"
)

// Deps holds everything the router wires together. The rate limiters and
// Static are optional.
type Deps struct {
	Sessions       *session.Store
	Tokens         *token.Verifier
	SecureCookies  bool
	LoginLimiter   *middleware.RateLimiter
	SuggestLimiter *middleware.RateLimiter
	Static         fs.FS

	Admin  *handlers.Admin
	Auth   *handlers.Auth
	Public *handlers.Public
	API    *handlers.API
}

// New creates the configured Chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	// Public site.
	r.Get("/", d.Public.Home)
	r.Get("/category/{slug}", d.Public.Category)
	r.Get("/calculator/{slug}", d.Public.Calculator)
	r.Post("/calculator/{slug}", d.Public.Compute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", d.Public.CatalogJSON)
		r.With(limit(d.SuggestLimiter)).Post("/suggest", d.Public.Suggest)

		// Admin JSON API for scripts and deploy hooks.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireBearerAdmin(d.Tokens))
			r.Get("/catalog", d.API.Catalog)
			r.Post("/catalog/invalidate", d.API.Invalidate)
		})
	})

	// Admin panel: session auth and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadSession(d.Sessions))

		// Auth pages, reachable without a session.
		r.Get("/login", d.Auth.LoginPage)
		r.With(limit(d.LoginLimiter)).Post("/login", d.Auth.LoginSubmit)
		r.Post("/logout", d.Auth.Logout)

		// 2FA: requires a session but not completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", d.Auth.TwoFAVerifySubmit)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.With(limit(d.LoginLimiter)).Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)
		})

		// Authenticated and 2FA-verified area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", d.Admin.Dashboard)
			r.Get("/dashboard", d.Admin.Dashboard)
			r.Post("/catalog/refresh", d.Admin.RefreshCatalog)

			r.Route("/calculators", func(r chi.Router) {
				r.Get("/", d.Admin.CalculatorsList)
				r.Get("/new", d.Admin.CalculatorNew)
				r.Post("/", d.Admin.CalculatorCreate)
				r.Get("/{id}", d.Admin.CalculatorEdit)
				r.Post("/{id}", d.Admin.CalculatorUpdate)
				r.Post("/{id}/delete", d.Admin.CalculatorDelete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Admin.CategoriesList)
				r.Get("/new", d.Admin.CategoryNew)
				r.Post("/", d.Admin.CategoryCreate)
				r.Get("/{id}", d.Admin.CategoryEdit)
				r.Post("/{id}", d.Admin.CategoryUpdate)
				r.Post("/{id}/delete", d.Admin.CategoryDelete)
			})

			// User management and settings: admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", d.Admin.UsersList)
					r.Get("/new", d.Admin.UserNew)
					r.Post("/", d.Admin.UserCreate)
					r.Post("/{id}/role", d.Admin.UserUpdateRole)
					r.Post("/{id}/reset-2fa", d.Admin.UserResetTwoFA)
					r.Post("/{id}/delete", d.Admin.UserDelete)
				})

				r.Get("/settings", d.Admin.SettingsPage)
				r.Post("/settings", d.Admin.SettingsSave)
				r.Post("/settings/ai-provider", d.Admin.SettingsAIProvider)
				r.Post("/settings/token", d.Admin.SettingsIssueToken)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
