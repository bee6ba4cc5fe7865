// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"calchub/internal/models"
)

// ErrMalformedRecord is reported when a remote calculator lacks a slug.
var ErrMalformedRecord = errors.New("catalog: malformed record")

// Defaults for categories synthesized from calculator category slugs.
const (
	synthesizedIcon = "calculator"
)

// validateCalculators rejects remote lists the merge cannot key on.
func validateCalculators(calcs []models.Calculator) error {
	for i, c := range calcs {
		if strings.TrimSpace(c.Slug) == "" {
			return fmt.Errorf("%w: calculator %d (id %q) has no slug", ErrMalformedRecord, i, c.ID)
		}
	}
	return nil
}

// mergeCalculators returns remote records in order followed by the local
// records whose slug no earlier record used. A remote record replaces a
// local one with the same slug as a whole.
func mergeCalculators(remote, local []models.Calculator) []models.Calculator {
	seen := make(map[string]struct{}, len(remote)+len(local))
	merged := make([]models.Calculator, 0, len(remote)+len(local))

	for _, list := range [][]models.Calculator{remote, local} {
		for _, c := range list {
			if _, dup := seen[c.Slug]; dup {
				continue
			}
			seen[c.Slug] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}

// assignCalculators fills each category's Calculators, preserving
// calculator order. It returns how many calculators matched no category.
func assignCalculators(categories []models.Category, calcs []models.Calculator) ([]models.Category, int) {
	out := make([]models.Category, 0, len(categories))
	known := make(map[string]struct{}, len(categories))

	for _, cat := range categories {
		if _, dup := known[cat.Slug]; dup {
			continue
		}
		known[cat.Slug] = struct{}{}

		cat.Calculators = []models.Calculator{}
		for _, c := range calcs {
			if c.CategorySlug == cat.Slug {
				cat.Calculators = append(cat.Calculators, c)
			}
		}
		out = append(out, cat)
	}

	var orphans int
	for _, c := range calcs {
		if _, ok := known[c.CategorySlug]; !ok {
			orphans++
		}
	}
	return out, orphans
}

// synthesizeCategories groups calculators by category slug, one category
// per distinct slug in first-seen order.
func synthesizeCategories(calcs []models.Calculator) []models.Category {
	var out []models.Category
	index := make(map[string]int)

	for _, c := range calcs {
		i, ok := index[c.CategorySlug]
		if !ok {
			name := displayName(c.CategorySlug)
			out = append(out, models.Category{
				ID:          c.CategorySlug,
				Name:        name,
				Slug:        c.CategorySlug,
				Description: "Calculators in the " + name + " category",
				Icon:        synthesizedIcon,
				Calculators: []models.Calculator{},
			})
			i = len(out) - 1
			index[c.CategorySlug] = i
		}
		out[i].Calculators = append(out[i].Calculators, c)
	}
	return out
}

// displayName capitalizes each hyphen-separated word of a slug.
// Example: "unit-conversion" → "Unit Conversion"
func displayName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return "Other"
	}
	return strings.Join(words, " ")
}

func cloneCalculators(in []models.Calculator) []models.Calculator {
	if in == nil {
		return nil
	}
	out := make([]models.Calculator, len(in))
	copy(out, in)
	return out
}

func cloneCategories(in []models.Category) []models.Category {
	if in == nil {
		return nil
	}
	out := make([]models.Category, len(in))
	for i, c := range in {
		c.Calculators = cloneCalculators(c.Calculators)
		out[i] = c
	}
	return out
}
