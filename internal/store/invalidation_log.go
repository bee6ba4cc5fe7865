// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// invalidation_log.go records catalog cache invalidations for audit and
// debugging: what changed, which record, and how.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// InvalidationLogStore handles catalog invalidation log operations.
type InvalidationLogStore struct {
	db *sql.DB
}

// NewInvalidationLogStore creates a new InvalidationLogStore.
func NewInvalidationLogStore(db *sql.DB) *InvalidationLogStore {
	return &InvalidationLogStore{db: db}
}

// InvalidationEntry is one logged invalidation.
type InvalidationEntry struct {
	ID            int64
	EntityType    string
	EntityID      string
	Action        string
	InvalidatedAt time.Time
}

// Log records an invalidation. Failures are logged, never returned.
func (s *InvalidationLogStore) Log(ctx context.Context, entityType, entityID, action string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_invalidation_log (entity_type, entity_id, action)
		VALUES ($1, $2, $3)
	`, entityType, entityID, action)
	if err != nil {
		slog.Warn("failed to log catalog invalidation",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("catalog invalidation logged", "entity_type", entityType, "entity_id", entityID, "action", action)
}

// Recent returns the newest entries, at most limit of them.
func (s *InvalidationLogStore) Recent(ctx context.Context, limit int) ([]InvalidationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, invalidated_at
		FROM catalog_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invalidation log: %w", err)
	}
	defer rows.Close()

	var entries []InvalidationEntry
	for rows.Next() {
		var e InvalidationEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan invalidation log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
