// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"calchub/internal/middleware"
	"calchub/internal/models"
	"calchub/internal/token"
)

const apiTestSecret = "api-test-secret-api-test-secret-0000"

// apiRouter wraps the API handlers in the bearer gate, as the router does.
func apiRouter(env *publicEnv, v *token.Verifier) (catalogH, invalidateH http.Handler) {
	gate := middleware.RequireBearerAdmin(v)
	return gate(http.HandlerFunc(env.API.Catalog)), gate(http.HandlerFunc(env.API.Invalidate))
}

func issue(t *testing.T, v *token.Verifier, admin bool) string {
	t.Helper()
	raw, err := v.Issue("user-1", "ops@calchub.local", admin, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return raw
}

func TestAPI_BearerGate(t *testing.T) {
	env := newPublicEnv(t, remoteCatalog(), nil)
	v := token.NewVerifier(apiTestSecret, "calchub-test")
	other := token.NewVerifier("some-other-secret-some-other-secret", "calchub-test")
	catalogH, _ := apiRouter(env, v)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + issue(t, other, true), http.StatusUnauthorized},
		{"not admin", "Bearer " + issue(t, v, false), http.StatusForbidden},
		{"admin", "Bearer " + issue(t, v, true), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/catalog", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			catalogH.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAPI_InvalidateForcesRefetch(t *testing.T) {
	env := newPublicEnv(t, remoteCatalog(), nil)
	v := token.NewVerifier(apiTestSecret, "calchub-test")
	catalogH, invalidateH := apiRouter(env, v)
	auth := "Bearer " + issue(t, v, true)

	fetch := func() catalogPayload {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/catalog", nil)
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		catalogH.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("catalog status: got %d", rec.Code)
		}
		return decodeCatalog(t, rec)
	}

	fetch()
	fetch()
	if got := env.Source.calls(); got != 1 {
		t.Fatalf("store reads before invalidation: got %d, want 1", got)
	}

	// A write lands in the store behind the resolver's back.
	env.Source.mu.Lock()
	env.Source.calculators = append(env.Source.calculators, models.Calculator{
		ID: "r3", Name: "Tip Split", Slug: "tip-split", Component: "PercentageCalculator", CategorySlug: "finance",
	})
	env.Source.mu.Unlock()

	if p := fetch(); len(p.Calculators.Data) != 9 {
		t.Fatalf("cached list should be unchanged, got %d entries", len(p.Calculators.Data))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/catalog/invalidate", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	invalidateH.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status: got %d, want 200", rec.Code)
	}

	var ack invalidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&ack); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ack.Invalidated || ack.By != "ops@calchub.local" {
		t.Errorf("ack: got %+v", ack)
	}

	p := fetch()
	if got := env.Source.calls(); got != 2 {
		t.Errorf("store reads after invalidation: got %d, want 2", got)
	}
	if len(p.Calculators.Data) != 10 {
		t.Errorf("refetched list: got %d entries, want 10", len(p.Calculators.Data))
	}

	want := []string{"catalog/all/api:ops@calchub.local"}
	if diff := cmp.Diff(want, env.Log.entries); diff != "" {
		t.Errorf("invalidation log mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_InvalidateWithoutClaims(t *testing.T) {
	env := newPublicEnv(t, remoteCatalog(), nil)

	rec := httptest.NewRecorder()
	env.API.Invalidate(rec, httptest.NewRequest(http.MethodPost, "/api/admin/catalog/invalidate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if len(env.Log.entries) != 1 || env.Log.entries[0] != "catalog/all/api:unknown" {
		t.Errorf("log: got %v", env.Log.entries)
	}
}

func TestCatalogInvalidator_NilPageCacheAndLog(t *testing.T) {
	env := newPublicEnv(t, remoteCatalog(), nil)
	inv := NewCatalogInvalidator(env.Resolver, nil, nil)

	env.Resolver.Calculators(context.Background())
	inv.Invalidate(context.Background(), "calculator", "x", "update")
	env.Resolver.Calculators(context.Background())

	if got := env.Source.calls(); got != 2 {
		t.Errorf("store reads: got %d, want 2", got)
	}
}
