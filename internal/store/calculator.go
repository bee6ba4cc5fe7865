// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"calchub/internal/models"
)

// ErrMalformedDocument is returned when a stored record lacks a field the
// catalog cannot do without.
var ErrMalformedDocument = errors.New("malformed catalog document")

// CalculatorStore manages the calculators collection.
type CalculatorStore struct {
	db *sql.DB
}

// NewCalculatorStore returns a new CalculatorStore.
func NewCalculatorStore(db *sql.DB) *CalculatorStore {
	return &CalculatorStore{db: db}
}

const calculatorColumns = `id, name, slug, description, component, icon, category_slug`

// scanCalculator scans a row into a Calculator.
func scanCalculator(scanner interface{ Scan(...any) error }) (*models.Calculator, error) {
	var (
		c  models.Calculator
		id uuid.UUID
	)
	err := scanner.Scan(&id, &c.Name, &c.Slug, &c.Description, &c.Component, &c.Icon, &c.CategorySlug)
	if err != nil {
		return nil, err
	}
	c.ID = id.String()
	return &c, nil
}

// checkCalculator reports records the catalog would have to guess about.
func checkCalculator(c *models.Calculator) error {
	switch {
	case strings.TrimSpace(c.Slug) == "":
		return fmt.Errorf("%w: calculator %s has no slug", ErrMalformedDocument, c.ID)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: calculator %s has no name", ErrMalformedDocument, c.Slug)
	case strings.TrimSpace(c.Component) == "":
		return fmt.Errorf("%w: calculator %s has no component", ErrMalformedDocument, c.Slug)
	}
	return nil
}

// ListCalculators returns every calculator in display order. A single
// malformed row fails the whole listing.
func (s *CalculatorStore) ListCalculators(ctx context.Context) ([]models.Calculator, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+calculatorColumns+` FROM calculators ORDER BY position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list calculators: %w", err)
	}
	defer rows.Close()

	var items []models.Calculator
	for rows.Next() {
		c, err := scanCalculator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calculator: %w", err)
		}
		if err := checkCalculator(c); err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a calculator by ID. Returns nil if not found.
func (s *CalculatorStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Calculator, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+calculatorColumns+` FROM calculators WHERE id = $1`, id)
	c, err := scanCalculator(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find calculator by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a calculator by slug. Returns nil if not found.
func (s *CalculatorStore) FindBySlug(ctx context.Context, slug string) (*models.Calculator, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+calculatorColumns+` FROM calculators WHERE slug = $1`, slug)
	c, err := scanCalculator(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find calculator by slug: %w", err)
	}
	return c, nil
}

// Create inserts a calculator at the end of the display order.
func (s *CalculatorStore) Create(ctx context.Context, c *models.Calculator) (*models.Calculator, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO calculators (name, slug, description, component, icon, category_slug, position)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(position), 0) + 1 FROM calculators))
		RETURNING `+calculatorColumns,
		c.Name, c.Slug, c.Description, c.Component, c.Icon, c.CategorySlug,
	)
	created, err := scanCalculator(row)
	if err != nil {
		return nil, fmt.Errorf("create calculator: %w", err)
	}
	return created, nil
}

// Update modifies an existing calculator.
func (s *CalculatorStore) Update(ctx context.Context, c *models.Calculator) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("update calculator: bad id %q: %w", c.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE calculators SET
			name = $1, slug = $2, description = $3, component = $4,
			icon = $5, category_slug = $6, updated_at = NOW()
		WHERE id = $7
	`, c.Name, c.Slug, c.Description, c.Component, c.Icon, c.CategorySlug, id)
	if err != nil {
		return fmt.Errorf("update calculator: %w", err)
	}
	return nil
}

// Delete removes a calculator by ID.
func (s *CalculatorStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM calculators WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete calculator: %w", err)
	}
	return nil
}

// Count returns the number of stored calculators.
func (s *CalculatorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calculators`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count calculators: %w", err)
	}
	return n, nil
}
