// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure. Public and API
// handlers run against an in-memory catalog source; admin and auth tests
// need PostgreSQL and Valkey and are skipped when those are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"calchub/internal/ai"
	"calchub/internal/cache"
	"calchub/internal/catalog"
	"calchub/internal/database"
	"calchub/internal/middleware"
	"calchub/internal/models"
	"calchub/internal/render"
	"calchub/internal/session"
	"calchub/internal/store"
	"calchub/internal/token"
)

var errStoreDown = errors.New("store unavailable")

// fakeSource is an in-memory catalog.Source.
type fakeSource struct {
	mu          sync.Mutex
	calculators []models.Calculator
	categories  []models.Category
	calcErr     error
	catErr      error
	calcCalls   int
}

func (f *fakeSource) ListCalculators(context.Context) ([]models.Calculator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calcCalls++
	if f.calcErr != nil {
		return nil, f.calcErr
	}
	return append([]models.Calculator(nil), f.calculators...), nil
}

func (f *fakeSource) ListCategoriesByName(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.catErr != nil {
		return nil, f.catErr
	}
	return append([]models.Category(nil), f.categories...), nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calcCalls
}

// fakeSettings is an in-memory SettingsReader.
type fakeSettings struct {
	values models.SiteSettings
	err    error
}

func (f *fakeSettings) All(context.Context) (models.SiteSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(models.SiteSettings, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

// fakeLog records invalidations.
type fakeLog struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeLog) Log(_ context.Context, entityType, entityID, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entityType+"/"+entityID+"/"+action)
}

// mockGenerator implements ai.Generator for suggestion tests.
type mockGenerator struct {
	response string
	err      error
}

func (m *mockGenerator) Generate(context.Context, string, string) (string, error) {
	return m.response, m.err
}

// remoteCatalog is a small stored catalog that overrides one fallback
// calculator and adds one of its own.
func remoteCatalog() *fakeSource {
	return &fakeSource{
		calculators: []models.Calculator{
			{ID: "r1", Name: "Stored BMI", Slug: "bmi-calculator", Component: "BMICalculator", CategorySlug: "health",
				Description: "Stored **BMI** description."},
			{ID: "r2", Name: "Warp Drive", Slug: "warp-drive", Component: "WarpDriveCalculator", CategorySlug: "physics"},
		},
		categories: []models.Category{
			{ID: "c1", Name: "Finance", Slug: "finance"},
			{ID: "c2", Name: "Health", Slug: "health", Description: "Body and fitness."},
			{ID: "c3", Name: "Physics", Slug: "physics"},
		},
	}
}

// publicEnv wires the public and API handlers without external services.
type publicEnv struct {
	Source      *fakeSource
	Settings    *fakeSettings
	Log         *fakeLog
	Resolver    *catalog.Resolver
	Invalidator *CatalogInvalidator
	Public      *Public
	API         *API
}

func newPublicEnv(t *testing.T, src *fakeSource, gen ai.Generator) *publicEnv {
	t.Helper()

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	settings := &fakeSettings{values: models.SiteSettings{}}
	resolver := catalog.New(src, catalog.DefaultCalculators)
	log := &fakeLog{}
	inv := NewCatalogInvalidator(resolver, nil, log)

	var suggester *ai.Suggester
	if gen != nil {
		suggester = ai.NewSuggester(gen, func(ctx context.Context) string {
			s, _ := settings.All(ctx)
			return s.Get(models.SettingFallbackSuggest, "")
		})
	}

	return &publicEnv{
		Source:      src,
		Settings:    settings,
		Log:         log,
		Resolver:    resolver,
		Invalidator: inv,
		Public:      NewPublic(renderer, resolver, settings, nil, suggester),
		API:         NewAPI(resolver, inv),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "calchub")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "calchub")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"calchub:session:*", "calchub:page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for admin and auth integration tests.
type testEnv struct {
	DB              *sql.DB
	Valkey          *redis.Client
	Sessions        *session.Store
	UserStore       *store.UserStore
	CalculatorStore *store.CalculatorStore
	CategoryStore   *store.CategoryStore
	SettingStore    *store.SiteSettingStore
	InvalidationLog *store.InvalidationLogStore
	PageCache       *cache.PageCache
	Resolver        *catalog.Resolver
	Tokens          *token.Verifier
	Admin           *Admin
	Auth            *Auth
	Public          *Public
}

// newTestEnv creates a complete test environment backed by real services.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	calcStore := store.NewCalculatorStore(db)
	catStore := store.NewCategoryStore(db)
	settingStore := store.NewSiteSettingStore(db)
	invLog := store.NewInvalidationLogStore(db)
	pageCache := cache.NewPageCache(vk, time.Minute)
	resolver := catalog.New(store.CatalogSource{Calculators: calcStore, Categories: catStore}, catalog.DefaultCalculators)
	inv := NewCatalogInvalidator(resolver, pageCache, invLog)
	tokens := token.NewVerifier("handler-test-secret-handler-test-secret", "calchub-test")

	aiRegistry := ai.NewRegistry("test", map[string]ai.ProviderConfig{})
	aiCfg := &AIConfig{
		ActiveProvider: "test",
		Providers:      []AIProviderInfo{{Name: "test", Label: "Test Provider", HasKey: true, Active: true}},
	}

	return &testEnv{
		DB:              db,
		Valkey:          vk,
		Sessions:        sessions,
		UserStore:       userStore,
		CalculatorStore: calcStore,
		CategoryStore:   catStore,
		SettingStore:    settingStore,
		InvalidationLog: invLog,
		PageCache:       pageCache,
		Resolver:        resolver,
		Tokens:          tokens,
		Admin: NewAdmin(renderer, userStore, calcStore, catStore, settingStore, invLog,
			resolver, inv, aiRegistry, aiCfg, tokens),
		Auth:   NewAuth(renderer, sessions, userStore),
		Public: NewPublic(renderer, resolver, settingStore, pageCache, nil),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	r = withChiURLParam(r, key, value)
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

func cleanCalculators(db *sql.DB, slugs ...string) {
	for _, s := range slugs {
		db.Exec("DELETE FROM calculators WHERE slug = $1", s)
	}
}

func cleanCategories(db *sql.DB, slugs ...string) {
	for _, s := range slugs {
		db.Exec("DELETE FROM calculator_categories WHERE slug = $1", s)
	}
}

func cleanUsers(db *sql.DB, emails ...string) {
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}
