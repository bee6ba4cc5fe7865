// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog resolves the calculator catalog shown in the site
// navigation. It merges the calculators and categories stored in the
// database with a fallback list compiled into the binary, memoizes the
// merged result until explicitly invalidated, and never fails: when the
// database is unavailable it serves the fallback catalog instead.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"calchub/internal/models"
)

// defaultFetchTimeout bounds one shared remote fetch.
const defaultFetchTimeout = 10 * time.Second

// Source is the remote document store the catalog is read from.
type Source interface {
	// ListCalculators returns every stored calculator.
	ListCalculators(ctx context.Context) ([]models.Calculator, error)

	// ListCategoriesByName returns every stored category ordered by name.
	// The Calculators field of the returned records is ignored.
	ListCategoriesByName(ctx context.Context) ([]models.Category, error)
}

// Resolver owns the two process-lifetime catalog caches. It is safe for
// concurrent use; concurrent misses share a single remote fetch.
type Resolver struct {
	source   Source
	fallback []models.Calculator

	flights      singleflight.Group
	fetchTimeout time.Duration

	mu          sync.RWMutex
	generation  uint64
	calculators *Result[[]models.Calculator]
	categories  *Result[[]models.Category]
}

// New creates a Resolver reading from src and degrading to fallback.
// The fallback slice is copied; later changes by the caller are not seen.
func New(src Source, fallback []models.Calculator) *Resolver {
	return &Resolver{
		source:       src,
		fallback:     cloneCalculators(fallback),
		fetchTimeout: defaultFetchTimeout,
	}
}

// Calculators returns the merged calculator list: remote records first in
// their stored order, then fallback records whose slug is not already
// present. If the remote fetch fails the fallback list alone is returned
// and cached. The returned slice is a copy the caller may modify.
func (r *Resolver) Calculators(ctx context.Context) Result[[]models.Calculator] {
	r.mu.RLock()
	if cached := r.calculators; cached != nil {
		r.mu.RUnlock()
		return Result[[]models.Calculator]{Data: cloneCalculators(cached.Data), Mode: cached.Mode}
	}
	gen := r.generation
	r.mu.RUnlock()

	ch := r.flights.DoChan(fmt.Sprintf("calculators:%d", gen), func() (any, error) {
		fctx, cancel := r.fetchContext(ctx)
		defer cancel()
		return r.loadCalculators(fctx, gen), nil
	})
	select {
	case out := <-ch:
		res := out.Val.(Result[[]models.Calculator])
		return Result[[]models.Calculator]{Data: cloneCalculators(res.Data), Mode: res.Mode}
	case <-ctx.Done():
		// The shared fetch carries on for the other waiters and fills the cache.
		slog.Debug("catalog: caller left before calculators resolved", "error", ctx.Err())
		return Result[[]models.Calculator]{Data: cloneCalculators(r.fallback), Mode: ModeFallback}
	}
}

// Categories returns the category list with each category's Calculators
// populated from Calculators. When the remote category fetch fails, one
// category is synthesized per distinct category slug found among the
// calculators. The returned slice is a copy the caller may modify.
func (r *Resolver) Categories(ctx context.Context) Result[[]models.Category] {
	r.mu.RLock()
	if cached := r.categories; cached != nil {
		r.mu.RUnlock()
		return Result[[]models.Category]{Data: cloneCategories(cached.Data), Mode: cached.Mode}
	}
	gen := r.generation
	r.mu.RUnlock()

	ch := r.flights.DoChan(fmt.Sprintf("categories:%d", gen), func() (any, error) {
		fctx, cancel := r.fetchContext(ctx)
		defer cancel()
		return r.loadCategories(fctx, gen), nil
	})
	select {
	case out := <-ch:
		res := out.Val.(Result[[]models.Category])
		return Result[[]models.Category]{Data: cloneCategories(res.Data), Mode: res.Mode}
	case <-ctx.Done():
		slog.Debug("catalog: caller left before categories resolved", "error", ctx.Err())
		return Result[[]models.Category]{
			Data: synthesizeCategories(cloneCalculators(r.fallback)),
			Mode: ModeFallback,
		}
	}
}

// fetchContext detaches a shared fetch from the caller that started it, so
// one canceled request cannot fail the fetch for every other waiter.
func (r *Resolver) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
}

// Invalidate clears both caches so the next request re-reads the store.
// Clearing empty caches is a no-op.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calculators = nil
	r.categories = nil
	r.generation++
	slog.Debug("catalog cache invalidated", "generation", r.generation)
}

// CalculatorBySlug looks up a calculator in the resolved list.
func (r *Resolver) CalculatorBySlug(ctx context.Context, slug string) (models.Calculator, bool) {
	for _, c := range r.Calculators(ctx).Data {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Calculator{}, false
}

// CategoryBySlug looks up a category, with its calculators, in the resolved list.
func (r *Resolver) CategoryBySlug(ctx context.Context, slug string) (models.Category, bool) {
	for _, c := range r.Categories(ctx).Data {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Category{}, false
}

func (r *Resolver) loadCalculators(ctx context.Context, gen uint64) Result[[]models.Calculator] {
	// Another flight may have populated the cache while this one queued.
	r.mu.RLock()
	if cached := r.calculators; cached != nil && r.generation == gen {
		r.mu.RUnlock()
		return *cached
	}
	r.mu.RUnlock()

	var res Result[[]models.Calculator]
	remote, err := r.source.ListCalculators(ctx)
	if err == nil {
		err = validateCalculators(remote)
	}
	if err != nil {
		slog.Warn("catalog: remote calculators unavailable, serving fallback",
			"error", err,
			"fallback_count", len(r.fallback),
		)
		res = Result[[]models.Calculator]{Data: cloneCalculators(r.fallback), Mode: ModeFallback}
	} else {
		res = Result[[]models.Calculator]{Data: mergeCalculators(remote, r.fallback), Mode: ModeFresh}
	}

	r.store(gen, func() { r.calculators = &res })
	slog.Debug("catalog calculators resolved", "count", len(res.Data), "mode", res.Mode)
	return res
}

func (r *Resolver) loadCategories(ctx context.Context, gen uint64) Result[[]models.Category] {
	r.mu.RLock()
	if cached := r.categories; cached != nil && r.generation == gen {
		r.mu.RUnlock()
		return *cached
	}
	r.mu.RUnlock()

	calcs := r.Calculators(ctx).Data

	var res Result[[]models.Category]
	remote, err := r.source.ListCategoriesByName(ctx)
	if err != nil {
		slog.Warn("catalog: remote categories unavailable, deriving from calculators", "error", err)
		res = Result[[]models.Category]{Data: synthesizeCategories(calcs), Mode: ModeFallback}
	} else {
		cats, orphans := assignCalculators(remote, calcs)
		if orphans > 0 {
			slog.Debug("catalog: calculators without a matching category", "count", orphans)
		}
		res = Result[[]models.Category]{Data: cats, Mode: ModeFresh}
	}

	r.store(gen, func() { r.categories = &res })
	slog.Debug("catalog categories resolved", "count", len(res.Data), "mode", res.Mode)
	return res
}

// store runs set under the write lock unless the cache was invalidated
// after the fetch for gen started.
func (r *Resolver) store(gen uint64, set func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		slog.Debug("catalog: discarding result fetched before invalidation", "generation", gen)
		return
	}
	set()
}
