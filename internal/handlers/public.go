// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"calchub/internal/ai"
	"calchub/internal/cache"
	"calchub/internal/calculators"
	"calchub/internal/catalog"
	"calchub/internal/models"
	"calchub/internal/render"
)

const (
	defaultSiteName = "CalcHub"

	// maxSuggestBody caps the JSON body accepted by the suggestion endpoint.
	maxSuggestBody = 16 << 10
)

// SettingsReader is the part of the settings store public pages need.
type SettingsReader interface {
	All(ctx context.Context) (models.SiteSettings, error)
}

// Public groups handlers for the public calculator site. Catalog pages
// are served from the L2 Valkey page cache when possible; rendered pages
// are stored on miss as long as the catalog was resolved fresh.
type Public struct {
	renderer  *render.Renderer
	resolver  *catalog.Resolver
	settings  SettingsReader
	pageCache *cache.PageCache
	suggester *ai.Suggester
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(renderer *render.Renderer, resolver *catalog.Resolver, settings SettingsReader, pageCache *cache.PageCache, suggester *ai.Suggester) *Public {
	return &Public{
		renderer:  renderer,
		resolver:  resolver,
		settings:  settings,
		pageCache: pageCache,
		suggester: suggester,
	}
}

// Home renders every category with its calculators.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if p.serveCached(w, r, cache.HomeKey()) {
		return
	}

	settings := p.loadSettings(ctx)
	v := p.view(ctx)

	data := map[string]any{"Categories": v.categories}
	if featured := settings.Get(models.SettingFeaturedCategory, ""); featured != "" {
		for _, c := range v.categories {
			if c.Slug == featured {
				data["Featured"] = c
				break
			}
		}
	}

	p.renderPage(w, r, http.StatusOK, cache.HomeKey(), "home", v, settings, "", data)
}

// Category renders one category and its calculators.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catSlug := chi.URLParam(r, "slug")
	key := cache.CategoryKey(catSlug)
	if p.serveCached(w, r, key) {
		return
	}

	settings := p.loadSettings(ctx)
	v := p.view(ctx)

	for _, c := range v.categories {
		if c.Slug == catSlug {
			p.renderPage(w, r, http.StatusOK, key, "category", v, settings, c.Name,
				map[string]any{"Category": c})
			return
		}
	}
	p.notFound(w, r, v, settings)
}

// Calculator renders the input form for a calculator, or a placeholder
// when this build does not know its component.
func (p *Public) Calculator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	calcSlug := chi.URLParam(r, "slug")
	key := cache.CalculatorKey(calcSlug)
	if p.serveCached(w, r, key) {
		return
	}

	settings := p.loadSettings(ctx)
	v := p.view(ctx)

	calc, ok := p.resolver.CalculatorBySlug(ctx, calcSlug)
	if !ok {
		p.notFound(w, r, v, settings)
		return
	}
	p.renderPage(w, r, http.StatusOK, key, "calculator", v, settings, calc.Name,
		calculatorData(calc, nil, nil, ""))
}

// Compute runs the calculator on the submitted form. Results are never cached.
func (p *Public) Compute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	calcSlug := chi.URLParam(r, "slug")

	settings := p.loadSettings(ctx)
	v := p.view(ctx)

	calc, ok := p.resolver.CalculatorBySlug(ctx, calcSlug)
	if !ok {
		p.notFound(w, r, v, settings)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	def, known := calculators.Get(calculators.Lookup(calc.Component))
	if !known {
		p.renderPage(w, r, http.StatusOK, "", "calculator", v, settings, calc.Name,
			calculatorData(calc, nil, nil, ""))
		return
	}

	values := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		values[f.Name] = r.PostFormValue(f.Name)
	}

	outcome, err := def.Compute(values)
	if err != nil {
		if !errors.Is(err, calculators.ErrMissingInput) && !errors.Is(err, calculators.ErrInvalidInput) {
			slog.Error("calculator compute failed", "calculator", calc.Slug, "error", err)
		}
		p.renderPage(w, r, http.StatusUnprocessableEntity, "", "calculator", v, settings, calc.Name,
			calculatorData(calc, values, nil, err.Error()))
		return
	}

	slog.Debug("calculator computed", "calculator", calc.Slug, "summary", outcome.Summary)
	p.renderPage(w, r, http.StatusOK, "", "calculator", v, settings, calc.Name,
		calculatorData(calc, values, &outcome, ""))
}

// catalogResponse is the /api/catalog payload.
type catalogResponse struct {
	Calculators catalog.Result[[]models.Calculator] `json:"calculators"`
	Categories  catalog.Result[[]models.Category]   `json:"categories"`
}

// CatalogJSON returns the resolved catalog, including how each half was
// obtained, for client-side navigation.
func (p *Public) CatalogJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, catalogResponse{
		Calculators: p.resolver.Calculators(ctx),
		Categories:  p.resolver.Categories(ctx),
	})
}

// Suggest returns a short next-step suggestion for a finished calculation.
// When suggestions are disabled in settings the fallback text is returned
// without contacting a provider.
func (p *Public) Suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ai.SuggestRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSuggestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	settings := p.loadSettings(ctx)
	if !settings.Enabled(models.SettingSuggestionsOn, true) || p.suggester == nil {
		writeJSON(w, http.StatusOK, ai.Suggestion{
			Text:     settings.Get(models.SettingFallbackSuggest, ai.DefaultFallback),
			Fallback: true,
		})
		return
	}

	s, err := p.suggester.Suggest(ctx, req)
	if errors.Is(err, ai.ErrEmptyContext) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- helpers ---

func calculatorData(calc models.Calculator, values map[string]string, outcome *calculators.Outcome, errMsg string) map[string]any {
	def, known := calculators.Get(calculators.Lookup(calc.Component))
	if !known {
		slog.Debug("calculator component not available in this build",
			"calculator", calc.Slug, "component", calc.Component)
	}
	data := map[string]any{
		"Calculator": calc,
		"Known":      known,
		"Definition": def,
		"Values":     values,
	}
	if outcome != nil {
		data["Outcome"] = outcome
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	return data
}

// catalogView is what every public page needs from the resolver.
type catalogView struct {
	categories []models.Category
	degraded   bool
}

func (p *Public) view(ctx context.Context) catalogView {
	calcs := p.resolver.Calculators(ctx)
	cats := p.resolver.Categories(ctx)
	return catalogView{
		categories: cats.Data,
		degraded:   calcs.Degraded() || cats.Degraded(),
	}
}

func (p *Public) loadSettings(ctx context.Context) models.SiteSettings {
	if p.settings == nil {
		return models.SiteSettings{}
	}
	s, err := p.settings.All(ctx)
	if err != nil {
		slog.Warn("load site settings failed, using defaults", "error", err)
		return models.SiteSettings{}
	}
	return s
}

// serveCached writes a cached page and reports whether it did.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	cached, ok := p.pageCache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "HIT")
	w.Write(cached)
	return true
}

// renderPage renders a public template and, when key is non-empty and the
// catalog is fresh, stores the result in the page cache.
func (p *Public) renderPage(w http.ResponseWriter, r *http.Request, status int, key, name string, v catalogView, settings models.SiteSettings, title string, data map[string]any) {
	out, err := p.renderer.Public(name, &render.PublicData{
		SiteName: settings.Get(models.SettingSiteName, defaultSiteName),
		Tagline:  settings.Get(models.SettingTagline, ""),
		Title:    title,
		Degraded: v.degraded,
		Nav:      v.categories,
		Data:     data,
	})
	if err != nil {
		slog.Error("public render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if key != "" && status == http.StatusOK && !v.degraded {
		p.pageCache.Set(r.Context(), key, out)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out)
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request, v catalogView, settings models.SiteSettings) {
	p.renderPage(w, r, http.StatusNotFound, "", "not_found", v, settings, "Not found", map[string]any{})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
