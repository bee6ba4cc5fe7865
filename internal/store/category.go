// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"calchub/internal/models"
)

// CategoryStore manages the calculator-categories collection.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, icon`

// scanCategory scans a row into a Category.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var (
		c  models.Category
		id uuid.UUID
	)
	if err := scanner.Scan(&id, &c.Name, &c.Slug, &c.Description, &c.Icon); err != nil {
		return nil, err
	}
	c.ID = id.String()
	return &c, nil
}

// ListCategoriesByName returns every category ordered by name.
func (s *CategoryStore) ListCategoriesByName(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM calculator_categories ORDER BY name, slug`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.Slug == "" {
			return nil, fmt.Errorf("%w: category %s has no slug", ErrMalformedDocument, c.ID)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM calculator_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO calculator_categories (name, slug, description, icon)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Icon,
	)
	created, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Update modifies an existing category. Calculators keep pointing at the
// old slug if it changes; the catalog simply stops grouping them here.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("update category: bad id %q: %w", c.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE calculator_categories SET
			name = $1, slug = $2, description = $3, icon = $4, updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Slug, c.Description, c.Icon, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM calculator_categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
