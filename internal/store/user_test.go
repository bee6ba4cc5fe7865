// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"calchub/internal/models"
)

func TestUserStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	missing, err := s.FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("FindByEmail (not found): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for non-existent user")
	}

	user, err := s.Create(ctx, email, "testpass123", "Test User", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Role != models.RoleEditor {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleEditor)
	}
	if user.TOTPEnabled {
		t.Error("expected totp_enabled=false for new user")
	}
	if user.PasswordHash == "testpass123" {
		t.Error("password hash must not be plaintext")
	}

	byEmail, err := s.FindByEmail(ctx, email)
	if err != nil || byEmail == nil {
		t.Fatalf("FindByEmail: %v, %v", byEmail, err)
	}
	byID, err := s.FindByID(ctx, user.ID)
	if err != nil || byID == nil {
		t.Fatalf("FindByID: %v, %v", byID, err)
	}
	if byID.Email != email {
		t.Errorf("email: got %q, want %q", byID.Email, email)
	}
}

func TestUserStoreCheckPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-password@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(ctx, email, "correct-horse", "Pw User", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !s.CheckPassword(user, "correct-horse") {
		t.Error("expected correct password to match")
	}
	if s.CheckPassword(user, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-totp@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(ctx, email, "password1", "TOTP User", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetTOTPSecret(ctx, user.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := s.EnableTOTP(ctx, user.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}
	got, _ := s.FindByID(ctx, user.ID)
	if !got.TOTPEnabled || got.TOTPSecret == nil {
		t.Fatalf("expected TOTP enabled with secret, got %+v", got)
	}

	if err := s.ResetTOTP(ctx, user.ID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	got, _ = s.FindByID(ctx, user.ID)
	if got.TOTPEnabled || got.TOTPSecret != nil {
		t.Errorf("expected TOTP cleared, got enabled=%v secret=%v", got.TOTPEnabled, got.TOTPSecret)
	}
}

func TestUserStoreUpdateRoleAndDelete(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	email := "test-role@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(ctx, email, "password1", "Role User", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	got, _ := s.FindByID(ctx, user.ID)
	if !got.IsAdmin() {
		t.Errorf("role: got %q, want admin", got.Role)
	}

	if err := s.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindByID(ctx, user.ID); got != nil {
		t.Error("expected user to be gone after Delete")
	}
}
