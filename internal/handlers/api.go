// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"calchub/internal/catalog"
	"calchub/internal/middleware"
)

// API serves the admin JSON API behind the bearer-token gate.
type API struct {
	resolver    *catalog.Resolver
	invalidator *CatalogInvalidator
}

// NewAPI creates the admin JSON API handler group.
func NewAPI(resolver *catalog.Resolver, invalidator *CatalogInvalidator) *API {
	return &API{resolver: resolver, invalidator: invalidator}
}

// Catalog returns the resolved catalog, the same payload as /api/catalog.
func (a *API) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, catalogResponse{
		Calculators: a.resolver.Calculators(ctx),
		Categories:  a.resolver.Categories(ctx),
	})
}

// invalidateResponse acknowledges an invalidation request.
type invalidateResponse struct {
	Invalidated bool   `json:"invalidated"`
	By          string `json:"by"`
}

// Invalidate drops every catalog cache. Tools that write the catalog
// directly to the database call this afterwards.
func (a *API) Invalidate(w http.ResponseWriter, r *http.Request) {
	by := "unknown"
	if claims := middleware.ClaimsFromCtx(r.Context()); claims != nil {
		by = claims.Subject
		if claims.Email != "" {
			by = claims.Email
		}
	}
	a.invalidator.Invalidate(r.Context(), "catalog", "all", "api:"+by)
	writeJSON(w, http.StatusOK, invalidateResponse{Invalidated: true, By: by})
}
