// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"

	"calchub/internal/cache"
	"calchub/internal/catalog"
)

// InvalidationLogger records catalog invalidations for auditing.
type InvalidationLogger interface {
	Log(ctx context.Context, entityType, entityID, action string)
}

// CatalogInvalidator runs after every catalog mutation: it drops the
// resolver's in-memory caches, purges rendered pages from the L2 page
// cache, and writes an audit entry. pageCache and log may be nil.
type CatalogInvalidator struct {
	resolver  *catalog.Resolver
	pageCache *cache.PageCache
	log       InvalidationLogger
}

// NewCatalogInvalidator creates a CatalogInvalidator.
func NewCatalogInvalidator(resolver *catalog.Resolver, pageCache *cache.PageCache, log InvalidationLogger) *CatalogInvalidator {
	return &CatalogInvalidator{resolver: resolver, pageCache: pageCache, log: log}
}

// Invalidate clears every catalog cache. Every rendered page embeds the
// navigation, so the whole page cache goes, not just the edited entity.
func (c *CatalogInvalidator) Invalidate(ctx context.Context, entityType, entityID, action string) {
	c.resolver.Invalidate()
	c.pageCache.InvalidateAll(ctx)
	if c.log != nil {
		c.log.Log(ctx, entityType, entityID, action)
	}
	slog.Info("catalog invalidated", "entity", entityType, "id", entityID, "action", action)
}
