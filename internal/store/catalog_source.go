// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"calchub/internal/models"
)

// CatalogSource exposes the calculator and category stores as the remote
// collection the catalog resolver reads.
type CatalogSource struct {
	Calculators *CalculatorStore
	Categories  *CategoryStore
}

// ListCalculators lists the calculators collection.
func (s CatalogSource) ListCalculators(ctx context.Context) ([]models.Calculator, error) {
	return s.Calculators.ListCalculators(ctx)
}

// ListCategoriesByName lists the categories collection ordered by name.
func (s CatalogSource) ListCategoriesByName(ctx context.Context) ([]models.Category, error) {
	return s.Categories.ListCategoriesByName(ctx)
}
