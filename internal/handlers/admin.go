// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for CalcHub. Handlers are
// grouped by concern (admin, auth, public, api) and receive their
// dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"calchub/internal/ai"
	"calchub/internal/calculators"
	"calchub/internal/catalog"
	"calchub/internal/middleware"
	"calchub/internal/models"
	"calchub/internal/render"
	"calchub/internal/slug"
	"calchub/internal/store"
	"calchub/internal/token"
)

// apiTokenTTL is the lifetime of bearer tokens issued from the settings page.
const apiTokenTTL = time.Hour

// recentInvalidations is how many audit entries the dashboard shows.
const recentInvalidations = 10

// AIProviderInfo holds display information about a configured AI provider.
// Used by the Settings page to show which providers are available.
type AIProviderInfo struct {
	Name      string // "openai", "claude", "mistral"
	Label     string // Human-friendly label
	HasKey    bool   // Whether an API key is configured
	Active    bool   // Whether this is the currently active provider
	Model     string // Configured model name
	KeyEnvVar string // Environment variable name for the key
}

// AIConfig holds the AI provider configuration visible to admin handlers.
// It never carries API keys.
type AIConfig struct {
	ActiveProvider string
	Providers      []AIProviderInfo
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer        *render.Renderer
	userStore       *store.UserStore
	calculatorStore *store.CalculatorStore
	categoryStore   *store.CategoryStore
	settingStore    *store.SiteSettingStore
	invalidationLog *store.InvalidationLogStore
	resolver        *catalog.Resolver
	invalidator     *CatalogInvalidator
	aiRegistry      *ai.Registry
	aiConfig        *AIConfig
	tokens          *token.Verifier
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// aiRegistry and tokens may be nil; the matching settings actions then
// answer 404.
func NewAdmin(renderer *render.Renderer, userStore *store.UserStore, calculatorStore *store.CalculatorStore, categoryStore *store.CategoryStore, settingStore *store.SiteSettingStore, invalidationLog *store.InvalidationLogStore, resolver *catalog.Resolver, invalidator *CatalogInvalidator, aiRegistry *ai.Registry, aiCfg *AIConfig, tokens *token.Verifier) *Admin {
	if aiCfg == nil {
		aiCfg = &AIConfig{}
	}
	return &Admin{
		renderer:        renderer,
		userStore:       userStore,
		calculatorStore: calculatorStore,
		categoryStore:   categoryStore,
		settingStore:    settingStore,
		invalidationLog: invalidationLog,
		resolver:        resolver,
		invalidator:     invalidator,
		aiRegistry:      aiRegistry,
		aiConfig:        aiCfg,
		tokens:          tokens,
	}
}

// Dashboard renders the admin dashboard with catalog health and counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	calcs := a.resolver.Calculators(ctx)
	cats := a.resolver.Categories(ctx)

	stored, err := a.calculatorStore.Count(ctx)
	if err != nil {
		slog.Warn("count calculators failed", "error", err)
	}
	users, err := a.userStore.List(ctx)
	if err != nil {
		slog.Warn("list users failed", "error", err)
	}
	recent, err := a.invalidationLog.Recent(ctx, recentInvalidations)
	if err != nil {
		slog.Warn("list invalidations failed", "error", err)
	}

	mode := catalog.ModeFresh
	if calcs.Degraded() || cats.Degraded() {
		mode = catalog.ModeFallback
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"CalculatorCount": len(calcs.Data),
			"StoredCount":     stored,
			"CategoryCount":   len(cats.Data),
			"UserCount":       len(users),
			"Mode":            mode,
			"Degraded":        mode == catalog.ModeFallback,
			"Invalidations":   recent,
		},
	})
}

// RefreshCatalog drops every catalog cache so the next request re-reads
// the database. Useful after editing rows outside the admin panel.
func (a *Admin) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	a.invalidator.Invalidate(r.Context(), "catalog", "all", "refresh")
	slog.Info("catalog refreshed by user", "user", sess.Email)
	redirect(w, r, "/admin/dashboard")
}

// --- Calculators CRUD ---

// CalculatorsList renders the stored calculators.
func (a *Admin) CalculatorsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.calculatorStore.ListCalculators(r.Context())
	data := map[string]any{"Items": items}
	if err != nil {
		slog.Error("list calculators failed", "error", err)
		data["Error"] = "The stored calculators could not be loaded."
	}

	a.renderer.Page(w, r, "calculators_list", &render.PageData{
		Title:   "Calculators",
		Section: "calculators",
		Data:    data,
	})
}

// CalculatorNew renders the new calculator form.
func (a *Admin) CalculatorNew(w http.ResponseWriter, r *http.Request) {
	a.renderCalculatorForm(w, r, nil, true, "")
}

// CalculatorCreate handles the new calculator form submission.
func (a *Admin) CalculatorCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := calculatorFromForm(r)

	if errMsg := validateCalculator(c); errMsg != "" {
		a.renderCalculatorForm(w, r, c, true, errMsg)
		return
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}

	if existing, _ := a.calculatorStore.FindBySlug(ctx, c.Slug); existing != nil {
		a.renderCalculatorForm(w, r, c, true, "A calculator with this slug already exists.")
		return
	}

	created, err := a.calculatorStore.Create(ctx, c)
	if err != nil {
		slog.Error("create calculator failed", "error", err, "slug", c.Slug)
		a.renderCalculatorForm(w, r, c, true, "Failed to create calculator.")
		return
	}

	a.invalidator.Invalidate(ctx, "calculator", created.ID, "create")
	redirect(w, r, "/admin/calculators")
}

// CalculatorEdit renders the edit form for a stored calculator.
func (a *Admin) CalculatorEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := a.calculatorStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find calculator failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}
	a.renderCalculatorForm(w, r, c, false, "")
}

// CalculatorUpdate handles the edit form submission.
func (a *Admin) CalculatorUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c := calculatorFromForm(r)
	c.ID = id.String()
	if errMsg := validateCalculator(c); errMsg != "" {
		a.renderCalculatorForm(w, r, c, false, errMsg)
		return
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}

	if existing, _ := a.calculatorStore.FindBySlug(ctx, c.Slug); existing != nil && existing.ID != c.ID {
		a.renderCalculatorForm(w, r, c, false, "A calculator with this slug already exists.")
		return
	}

	if err := a.calculatorStore.Update(ctx, c); err != nil {
		slog.Error("update calculator failed", "error", err, "id", c.ID)
		a.renderCalculatorForm(w, r, c, false, "Failed to save calculator.")
		return
	}

	a.invalidator.Invalidate(ctx, "calculator", c.ID, "update")
	redirect(w, r, "/admin/calculators")
}

// CalculatorDelete removes a stored calculator. A fallback calculator with
// the same slug reappears in the catalog afterwards.
func (a *Admin) CalculatorDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := a.calculatorStore.Delete(ctx, id); err != nil {
		slog.Error("delete calculator failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.invalidator.Invalidate(ctx, "calculator", id.String(), "delete")
	redirect(w, r, "/admin/calculators")
}

func (a *Admin) renderCalculatorForm(w http.ResponseWriter, r *http.Request, c *models.Calculator, isNew bool, errMsg string) {
	title := "Edit Calculator"
	if isNew {
		title = "New Calculator"
	}
	data := map[string]any{
		"IsNew":      isNew,
		"Kinds":      calculators.Kinds(),
		"Categories": a.resolver.Categories(r.Context()).Data,
	}
	if c != nil {
		data["Item"] = c
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.Page(w, r, "calculator_form", &render.PageData{
		Title:   title,
		Section: "calculators",
		Data:    data,
	})
}

func calculatorFromForm(r *http.Request) *models.Calculator {
	return &models.Calculator{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Slug:         strings.TrimSpace(r.FormValue("slug")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		Component:    strings.TrimSpace(r.FormValue("component")),
		Icon:         strings.TrimSpace(r.FormValue("icon")),
		CategorySlug: strings.TrimSpace(r.FormValue("category_slug")),
	}
}

// --- Categories CRUD ---

// CategoriesList renders the stored categories.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.categoryStore.ListCategoriesByName(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	a.renderer.Page(w, r, "categories_list", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    map[string]any{"Items": items},
	})
}

// CategoryNew renders the new category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.renderCategoryForm(w, r, nil, true, "")
}

// CategoryCreate handles the new category form submission.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := categoryFromForm(r)

	if errMsg := validateCategory(c); errMsg != "" {
		a.renderCategoryForm(w, r, c, true, errMsg)
		return
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}

	created, err := a.categoryStore.Create(ctx, c)
	if err != nil {
		slog.Error("create category failed", "error", err, "slug", c.Slug)
		a.renderCategoryForm(w, r, c, true, "Failed to create category. The slug may already exist.")
		return
	}

	a.invalidator.Invalidate(ctx, "category", created.ID, "create")
	redirect(w, r, "/admin/categories")
}

// CategoryEdit renders the edit form for a stored category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := a.categoryStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}
	a.renderCategoryForm(w, r, c, false, "")
}

// CategoryUpdate handles the edit form submission.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c := categoryFromForm(r)
	c.ID = id.String()
	if errMsg := validateCategory(c); errMsg != "" {
		a.renderCategoryForm(w, r, c, false, errMsg)
		return
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}

	if err := a.categoryStore.Update(ctx, c); err != nil {
		slog.Error("update category failed", "error", err, "id", c.ID)
		a.renderCategoryForm(w, r, c, false, "Failed to save category. The slug may already exist.")
		return
	}

	a.invalidator.Invalidate(ctx, "category", c.ID, "update")
	redirect(w, r, "/admin/categories")
}

// CategoryDelete removes a stored category. Its calculators stay stored
// but drop out of category views until a category with their slug exists.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := a.categoryStore.Delete(ctx, id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.invalidator.Invalidate(ctx, "category", id.String(), "delete")
	redirect(w, r, "/admin/categories")
}

func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, c *models.Category, isNew bool, errMsg string) {
	title := "Edit Category"
	if isNew {
		title = "New Category"
	}
	data := map[string]any{"IsNew": isNew}
	if c != nil {
		data["Item"] = c
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data:    data,
	})
}

func categoryFromForm(r *http.Request) *models.Category {
	return &models.Category{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Icon:        strings.TrimSpace(r.FormValue("icon")),
	}
}

// --- Users ---

// UsersList renders the user management page.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
	}

	a.renderer.Page(w, r, "users_list", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users},
	})
}

// UserNew renders the new user creation form.
func (a *Admin) UserNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "user_form", &render.PageData{
		Title:   "New User",
		Section: "users",
		Data:    map[string]any{"Role": string(models.RoleEditor)},
	})
}

// UserCreate handles the new user form submission.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	password := r.FormValue("password")
	role := models.Role(r.FormValue("role"))

	formErr := func(msg string) {
		a.renderer.Page(w, r, "user_form", &render.PageData{
			Title:   "New User",
			Section: "users",
			Data: map[string]any{
				"Error":       msg,
				"Email":       email,
				"DisplayName": displayName,
				"Role":        string(role),
			},
		})
	}

	if errMsg := validateUser(email, displayName, password, role); errMsg != "" {
		formErr(errMsg)
		return
	}

	if existing, _ := a.userStore.FindByEmail(ctx, email); existing != nil {
		formErr("A user with this email already exists.")
		return
	}

	if _, err := a.userStore.Create(ctx, email, password, displayName, role); err != nil {
		slog.Error("create user failed", "error", err)
		formErr("Failed to create user.")
		return
	}

	sess := middleware.SessionFromCtx(ctx)
	slog.Info("user created", "admin", sess.Email, "new_user", email, "role", role)
	redirect(w, r, "/admin/users")
}

// UserUpdateRole changes another user's role.
func (a *Admin) UserUpdateRole(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	targetID, ok := parseID(w, r)
	if !ok {
		return
	}
	if targetID == sess.UserID {
		http.Error(w, "Cannot change your own role", http.StatusForbidden)
		return
	}
	role := models.Role(r.FormValue("role"))
	if !models.ValidRole(role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	if err := a.userStore.UpdateRole(r.Context(), targetID, role); err != nil {
		slog.Error("update role failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user role changed", "admin", sess.Email, "target_user", targetID, "role", role)
	redirect(w, r, "/admin/users")
}

// UserResetTwoFA resets another user's 2FA, forcing re-setup on next login.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	targetID, ok := parseID(w, r)
	if !ok {
		return
	}
	if targetID == sess.UserID {
		http.Error(w, "Cannot reset your own 2FA", http.StatusForbidden)
		return
	}

	if err := a.userStore.ResetTOTP(r.Context(), targetID); err != nil {
		slog.Error("reset 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("2fa reset by admin", "admin", sess.Email, "target_user", targetID)
	redirect(w, r, "/admin/users")
}

// UserDelete removes another user.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	targetID, ok := parseID(w, r)
	if !ok {
		return
	}
	if targetID == sess.UserID {
		http.Error(w, "Cannot delete yourself", http.StatusForbidden)
		return
	}

	if err := a.userStore.Delete(r.Context(), targetID); err != nil {
		slog.Error("delete user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user deleted", "admin", sess.Email, "target_user", targetID)
	redirect(w, r, "/admin/users")
}

// --- Settings ---

// SettingsPage renders the settings page.
func (a *Admin) SettingsPage(w http.ResponseWriter, r *http.Request) {
	a.renderSettings(w, r, map[string]any{})
}

// SettingsSave stores the editable site settings. Settings change what
// public pages show, so rendered pages are purged afterwards.
func (a *Admin) SettingsSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(models.EditableSettings))
	for _, key := range models.EditableSettings {
		values[key] = strings.TrimSpace(r.PostFormValue(key))
	}
	// Unchecked checkboxes are not submitted at all.
	if values[models.SettingSuggestionsOn] != "true" {
		values[models.SettingSuggestionsOn] = "false"
	}

	if err := a.settingStore.SetMany(ctx, values); err != nil {
		slog.Error("save settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.invalidator.Invalidate(ctx, "settings", "site", "update")
	a.renderSettings(w, r, map[string]any{"Saved": true})
}

// SettingsAIProvider switches the active AI provider.
func (a *Admin) SettingsAIProvider(w http.ResponseWriter, r *http.Request) {
	if a.aiRegistry == nil {
		http.NotFound(w, r)
		return
	}
	name := r.FormValue("provider")
	if err := a.aiRegistry.SetActive(name); err != nil {
		http.Error(w, "Unknown or unconfigured provider", http.StatusBadRequest)
		return
	}
	a.aiConfig.ActiveProvider = name
	for i := range a.aiConfig.Providers {
		a.aiConfig.Providers[i].Active = a.aiConfig.Providers[i].Name == name
	}

	sess := middleware.SessionFromCtx(r.Context())
	slog.Info("ai provider switched", "admin", sess.Email, "provider", name)
	redirect(w, r, "/admin/settings")
}

// SettingsIssueToken issues a short-lived admin bearer token for the
// current user so scripts can call the admin JSON API.
func (a *Admin) SettingsIssueToken(w http.ResponseWriter, r *http.Request) {
	if a.tokens == nil {
		http.NotFound(w, r)
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	raw, err := a.tokens.Issue(sess.UserID.String(), sess.Email, sess.IsAdmin(), apiTokenTTL)
	if err != nil {
		slog.Error("issue api token failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("api token issued", "user", sess.Email, "ttl", apiTokenTTL)
	a.renderSettings(w, r, map[string]any{"Token": raw})
}

func (a *Admin) renderSettings(w http.ResponseWriter, r *http.Request, data map[string]any) {
	settings, err := a.settingStore.All(r.Context())
	if err != nil {
		slog.Error("load settings failed", "error", err)
	}
	if settings == nil {
		settings = models.SiteSettings{}
	}
	data["Settings"] = settings
	data["Providers"] = a.aiConfig.Providers

	a.renderer.Page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data:    data,
	})
}

// --- helpers ---

// parseID reads the {id} URL parameter, answering 400 when it is not a UUID.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// redirect sends HTMX requests an HX-Redirect and everything else a 303.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
