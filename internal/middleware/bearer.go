// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"calchub/internal/token"
)

const claimsKey contextKey = "claims"

// RequireBearerAdmin guards the admin JSON API. Requests without a valid
// bearer token get 401; valid tokens without the admin claim get 403.
func RequireBearerAdmin(v *token.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="calchub"`)
				writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := v.VerifyAdmin(raw)
			switch {
			case errors.Is(err, token.ErrNotAdmin):
				slog.Warn("non-admin token rejected", "subject", claims.Subject, "path", r.URL.Path)
				writeJSONError(w, http.StatusForbidden, "admin access required")
				return
			case err != nil:
				w.Header().Set("WWW-Authenticate", `Bearer realm="calchub", error="invalid_token"`)
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// ClaimsFromCtx returns the verified token claims, or nil outside
// RequireBearerAdmin.
func ClaimsFromCtx(ctx context.Context) *token.Claims {
	c, _ := ctx.Value(claimsKey).(*token.Claims)
	return c
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
