// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"calchub/internal/calculators"
	"calchub/internal/models"
	"calchub/internal/slug"
)

// Validation limits for catalog and user fields.
const (
	maxNameLen        = 120
	maxDescriptionLen = 5_000
	maxIconLen        = 64
	minPasswordLen    = 8
)

// validateCalculator checks calculator form inputs and returns the first
// error found. Slug must already be normalized (or empty, to be generated).
func validateCalculator(c *models.Calculator) string {
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		return "Name is required."
	case utf8.RuneCountInString(name) > maxNameLen:
		return "Name is too long (max 120 characters)."
	case c.Slug != "" && !slug.Valid(c.Slug):
		return "Slug may only contain lowercase letters, digits and single hyphens (max 64 characters)."
	case calculators.Validate(c.Component) != nil:
		return "Unknown calculator component."
	case strings.TrimSpace(c.CategorySlug) == "":
		return "Category is required."
	case !slug.Valid(c.CategorySlug):
		return "Category slug is not valid."
	case utf8.RuneCountInString(c.Description) > maxDescriptionLen:
		return "Description is too long (max 5,000 characters)."
	case utf8.RuneCountInString(c.Icon) > maxIconLen:
		return "Icon name is too long (max 64 characters)."
	}
	return ""
}

// validateCategory checks category form inputs and returns the first error found.
func validateCategory(c *models.Category) string {
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		return "Name is required."
	case utf8.RuneCountInString(name) > maxNameLen:
		return "Name is too long (max 120 characters)."
	case c.Slug != "" && !slug.Valid(c.Slug):
		return "Slug may only contain lowercase letters, digits and single hyphens (max 64 characters)."
	case utf8.RuneCountInString(c.Description) > maxDescriptionLen:
		return "Description is too long (max 5,000 characters)."
	case utf8.RuneCountInString(c.Icon) > maxIconLen:
		return "Icon name is too long (max 64 characters)."
	}
	return ""
}

// validateUser checks the new-user form.
func validateUser(email, displayName, password string, role models.Role) string {
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return "A valid email is required."
	case displayName == "":
		return "Display name is required."
	case utf8.RuneCountInString(displayName) > maxNameLen:
		return "Display name is too long (max 120 characters)."
	case len(password) < minPasswordLen:
		return "Password must be at least 8 characters."
	case !models.ValidRole(role):
		return "Invalid role."
	}
	return ""
}
