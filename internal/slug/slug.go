// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug builds and checks the URL keys used for calculators and
// categories (e.g. "bmi-calculator", "finance").
package slug

import (
	"strings"
	"unicode"
)

// MaxLen is the longest slug Generate produces and Valid accepts.
const MaxLen = 64

// Generate creates a URL-friendly slug from the given string. Letters and
// digits are kept (lowercased ASCII only), whitespace, hyphens and
// underscores become single hyphens, and everything else is dropped.
// Results longer than MaxLen are cut at the last hyphen that fits.
// Example: "Loan Calculator (2026)" → "loan-calculator-2026"
func Generate(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			pendingHyphen = true
		}
	}
	return truncate(b.String())
}

// Valid reports whether s is already a canonical slug.
func Valid(s string) bool {
	return s != "" && len(s) <= MaxLen && Generate(s) == s
}

func truncate(s string) string {
	if len(s) <= MaxLen {
		return s
	}
	cut := s[:MaxLen]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		return cut[:i]
	}
	return cut
}
