// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "calchub/internal/models"

// DefaultCalculators is the catalog bundled with the binary. It is served
// whenever the database cannot be read and fills gaps in the stored catalog.
var DefaultCalculators = []models.Calculator{
	{
		ID:           "local-bmi-calculator",
		Name:         "BMI Calculator",
		Slug:         "bmi-calculator",
		Description:  "Body mass index from **weight** in kilograms and **height** in centimetres.",
		Component:    "BMICalculator",
		Icon:         "scale",
		CategorySlug: "health",
	},
	{
		ID:           "local-bmr-calculator",
		Name:         "BMR Calculator",
		Slug:         "bmr-calculator",
		Description:  "Basal metabolic rate using the Mifflin-St Jeor equation.",
		Component:    "BMRCalculator",
		Icon:         "flame",
		CategorySlug: "health",
	},
	{
		ID:           "local-kg-to-lb",
		Name:         "Kg to Lb",
		Slug:         "kg-to-lb",
		Description:  "Convert kilograms to pounds.",
		Component:    "KgToLbConverter",
		Icon:         "weight",
		CategorySlug: "health",
	},
	{
		ID:           "local-loan-calculator",
		Name:         "Loan Calculator",
		Slug:         "loan-calculator",
		Description:  "Monthly payment and total interest of a fixed-rate amortized loan.",
		Component:    "LoanCalculator",
		Icon:         "bank",
		CategorySlug: "finance",
	},
	{
		ID:           "local-currency-converter",
		Name:         "Currency Converter",
		Slug:         "currency-converter",
		Description:  "Convert an amount using an exchange rate you provide.",
		Component:    "CurrencyConverter",
		Icon:         "coins",
		CategorySlug: "finance",
	},
	{
		ID:           "local-percentage-calculator",
		Name:         "Percentage Calculator",
		Slug:         "percentage-calculator",
		Description:  "What is *x* percent of *y*?",
		Component:    "PercentageCalculator",
		Icon:         "percent",
		CategorySlug: "math",
	},
	{
		ID:           "local-gpa-calculator",
		Name:         "GPA Calculator",
		Slug:         "gpa-calculator",
		Description:  "Credit-weighted grade point average on a 4.0 scale.",
		Component:    "GPACalculator",
		Icon:         "graduation-cap",
		CategorySlug: "education",
	},
	{
		ID:           "local-concrete-calculator",
		Name:         "Concrete Calculator",
		Slug:         "concrete-calculator",
		Description:  "Volume of concrete needed for a rectangular slab, in cubic metres.",
		Component:    "ConcreteCalculator",
		Icon:         "brick",
		CategorySlug: "construction",
	},
}

// DefaultCategories groups DefaultCalculators into categories named after
// their slugs. Development seeding writes these to the database.
func DefaultCategories() []models.Category {
	return synthesizeCategories(cloneCalculators(DefaultCalculators))
}
