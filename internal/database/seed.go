// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"calchub/internal/models"
)

// DefaultAdminEmail is the account Seed creates on an empty users table.
const DefaultAdminEmail = "admin@calchub.local"

// Seed populates an empty development database. It creates a default admin
// (who must enroll in 2FA on first login) and, when the catalog tables are
// empty, writes the given calculators and categories so the admin panel has
// something to edit. Each part is skipped when its table already has rows.
func Seed(db *sql.DB, calculators []models.Calculator, categories []models.Category) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCatalog(db, calculators, categories)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, DefaultAdminEmail, string(hash), "Admin", string(models.RoleAdmin), false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", DefaultAdminEmail,
		"password", "admin",
	)
	return nil
}

func seedCatalog(db *sql.DB, calculators []models.Calculator, categories []models.Category) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM calculators").Scan(&count); err != nil {
		return fmt.Errorf("seed check calculators: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		_, err := tx.Exec(`
			INSERT INTO calculator_categories (name, slug, description, icon)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, c.Slug, c.Description, c.Icon)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
	}

	for i, c := range calculators {
		_, err := tx.Exec(`
			INSERT INTO calculators (name, slug, description, component, icon, category_slug, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, c.Slug, c.Description, c.Component, c.Icon, c.CategorySlug, i+1)
		if err != nil {
			return fmt.Errorf("seed calculator %s: %w", c.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default catalog",
		"calculators", len(calculators),
		"categories", len(categories),
	)
	return nil
}
