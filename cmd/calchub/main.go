// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the CalcHub server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calchub/internal/ai"
	"calchub/internal/cache"
	"calchub/internal/catalog"
	"calchub/internal/config"
	"calchub/internal/database"
	"calchub/internal/handlers"
	"calchub/internal/middleware"
	"calchub/internal/models"
	"calchub/internal/render"
	"calchub/internal/router"
	"calchub/internal/session"
	"calchub/internal/store"
	"calchub/internal/token"
	"calchub/web"
)

// Login attempts allowed per client IP per window.
const (
	loginRate   = 10
	loginWindow = 15 * time.Minute
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	slog.SetDefault(newLogger(cfg))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, catalog.DefaultCalculators, catalog.DefaultCategories()); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (page cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are Secure (HTTPS-only) outside development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	calculatorStore := store.NewCalculatorStore(db)
	categoryStore := store.NewCategoryStore(db)
	settingStore := store.NewSiteSettingStore(db)
	invalidationLog := store.NewInvalidationLogStore(db)

	// Catalog resolver: stored records merged over the bundled list, cached
	// in memory until the next invalidation.
	resolver := catalog.New(store.CatalogSource{
		Calculators: calculatorStore,
		Categories:  categoryStore,
	}, catalog.DefaultCalculators)

	// L2 page cache (rendered public pages in Valkey).
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)
	invalidator := handlers.NewCatalogInvalidator(resolver, pageCache, invalidationLog)

	// AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// Provider overview for the admin settings page.
	aiCfg := &handlers.AIConfig{
		ActiveProvider: cfg.AIProvider,
		Providers: []handlers.AIProviderInfo{
			{Name: "openai", Label: "OpenAI", HasKey: cfg.OpenAIKey != "", Active: cfg.AIProvider == "openai", Model: cfg.OpenAIModel, KeyEnvVar: "OPENAI_API_KEY"},
			{Name: "claude", Label: "Anthropic Claude", HasKey: cfg.ClaudeKey != "", Active: cfg.AIProvider == "claude", Model: cfg.ClaudeModel, KeyEnvVar: "CLAUDE_API_KEY"},
			{Name: "mistral", Label: "Mistral", HasKey: cfg.MistralKey != "", Active: cfg.AIProvider == "mistral", Model: cfg.MistralModel, KeyEnvVar: "MISTRAL_API_KEY"},
		},
	}

	// Suggestions fall back to the text configured in site settings.
	suggester := ai.NewSuggester(aiRegistry, func(ctx context.Context) string {
		text, err := settingStore.Get(ctx, models.SettingFallbackSuggest, "")
		if err != nil {
			slog.Warn("load fallback suggestion failed", "error", err)
		}
		return text
	})

	tokens := token.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)

	suggestLimiter := middleware.NewRateLimiter(cfg.SuggestRate, cfg.SuggestWindow)
	defer suggestLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(loginRate, loginWindow)
	defer loginLimiter.Stop()

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	r := router.New(router.Deps{
		Sessions:       sessionStore,
		Tokens:         tokens,
		SecureCookies:  secureCookies,
		LoginLimiter:   loginLimiter,
		SuggestLimiter: suggestLimiter,
		Static:         static,
		Admin: handlers.NewAdmin(renderer, userStore, calculatorStore, categoryStore, settingStore,
			invalidationLog, resolver, invalidator, aiRegistry, aiCfg, tokens),
		Auth:   handlers.NewAuth(renderer, sessionStore, userStore),
		Public: handlers.NewPublic(renderer, resolver, settingStore, pageCache, suggester),
		API:    handlers.NewAPI(resolver, invalidator),
	})

	// WriteTimeout must cover the suggestion endpoint waiting on a provider.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
