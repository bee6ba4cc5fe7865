// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"net/http"
	"strings"
	"time"
)

// newMistral creates a Mistral provider. Mistral's chat API is
// OpenAI-compatible and lives under /v1 of its base URL.
func newMistral(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai"
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	cfg.BaseURL = base

	return &openAIProvider{
		name:   "mistral",
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}
