// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Global setting keys editable from the admin settings page.
const (
	SettingSiteName         = "site_name"
	SettingTagline          = "tagline"
	SettingSuggestionsOn    = "ai_suggestions_enabled"
	SettingFallbackSuggest  = "ai_fallback_suggestion"
	SettingFeaturedCategory = "featured_category"
)

// EditableSettings lists the keys the settings form may write, in display order.
var EditableSettings = []string{
	SettingSiteName,
	SettingTagline,
	SettingSuggestionsOn,
	SettingFallbackSuggest,
	SettingFeaturedCategory,
}

// SiteSettings is a convenience map for accessing settings by key.
type SiteSettings map[string]string

// Get returns the value for a key, or the fallback if the key is missing or empty.
func (s SiteSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Enabled interprets a boolean-ish setting. Missing keys use def.
func (s SiteSettings) Enabled(key string, def bool) bool {
	switch s[key] {
	case "true", "on", "1", "yes":
		return true
	case "false", "off", "0", "no":
		return false
	}
	return def
}
