// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Calculator is a single catalog entry. Component names the UI
// implementation that renders it; CategorySlug is a soft reference into the
// category set and is not enforced.
type Calculator struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Component    string `json:"component"`
	Icon         string `json:"icon"`
	CategorySlug string `json:"categorySlug"`
}

// Category groups calculators by slug. Calculators is derived by the
// catalog resolver and never persisted.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	// Virtual field populated by the catalog resolver.
	Calculators []Calculator `json:"calculators"`
}
