// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the records stored in the catalog database and
// shared between the store, catalog and handler layers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an admin panel user's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// ValidRole reports whether r is one of the roles the admin panel accepts.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEditor
}

// User is an admin panel account. Public visitors never have one.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Needs2FASetup returns true until the user has confirmed a TOTP code once.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
