// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package calculators maps catalog component keys to the calculator
// implementations compiled into this build. Every key the catalog may
// reference resolves to a Kind; keys this build does not know resolve to
// KindUnknown so pages can show a placeholder instead of failing.
package calculators

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies one calculator implementation.
type Kind string

const (
	KindUnknown    Kind = ""
	KindBMI        Kind = "BMICalculator"
	KindBMR        Kind = "BMRCalculator"
	KindLoan       Kind = "LoanCalculator"
	KindPercentage Kind = "PercentageCalculator"
	KindGPA        Kind = "GPACalculator"
	KindConcrete   Kind = "ConcreteCalculator"
	KindKgToLb     Kind = "KgToLbConverter"
	KindCurrency   Kind = "CurrencyConverter"
)

var (
	// ErrUnknownComponent means a catalog record names a component this
	// build cannot render.
	ErrUnknownComponent = errors.New("unknown calculator component")
	// ErrMissingInput means a required field was empty.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidInput means a field was not a number or out of range.
	ErrInvalidInput = errors.New("invalid input")
)

// Field describes one numeric form input.
type Field struct {
	Name     string
	Label    string
	Unit     string
	Min      float64
	Optional bool
}

// Line is one labelled value in a calculation outcome.
type Line struct {
	Label string
	Value float64
	Unit  string
}

// Outcome is what a calculator produces: a headline value plus details.
type Outcome struct {
	Summary string
	Lines   []Line
}

// Definition is the static description of a Kind.
type Definition struct {
	Kind    Kind
	Label   string
	Fields  []Field
	compute func(in map[string]float64) (Outcome, error)
}

// definitions is the exhaustive registry. Adding a Kind without an entry
// here makes Lookup report it as unknown.
var definitions = map[Kind]Definition{
	KindBMI:        bmiDefinition,
	KindBMR:        bmrDefinition,
	KindLoan:       loanDefinition,
	KindPercentage: percentageDefinition,
	KindGPA:        gpaDefinition,
	KindConcrete:   concreteDefinition,
	KindKgToLb:     kgToLbDefinition,
	KindCurrency:   currencyDefinition,
}

// Lookup resolves a component key. Unknown keys return KindUnknown.
func Lookup(component string) Kind {
	k := Kind(strings.TrimSpace(component))
	if _, ok := definitions[k]; ok {
		return k
	}
	return KindUnknown
}

// Validate returns ErrUnknownComponent for keys Lookup cannot resolve.
func Validate(component string) error {
	if Lookup(component) == KindUnknown {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, component)
	}
	return nil
}

// Get returns the definition for a kind. ok is false for KindUnknown.
func Get(k Kind) (Definition, bool) {
	d, ok := definitions[k]
	return d, ok
}

// Kinds returns every known kind, sorted, for admin form selects.
func Kinds() []Kind {
	out := make([]Kind, 0, len(definitions))
	for k := range definitions {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compute parses raw form values and runs the calculator.
func (d Definition) Compute(raw map[string]string) (Outcome, error) {
	in := make(map[string]float64, len(d.Fields))
	for _, f := range d.Fields {
		s := strings.TrimSpace(raw[f.Name])
		if s == "" {
			if f.Optional {
				continue
			}
			return Outcome{}, fmt.Errorf("%w: %s", ErrMissingInput, f.Label)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, f.Label)
		}
		// ParseFloat accepts "NaN" and "Inf", and NaN compares false against Min.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Outcome{}, fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, f.Label)
		}
		if v < f.Min {
			return Outcome{}, fmt.Errorf("%w: %s must be at least %g", ErrInvalidInput, f.Label, f.Min)
		}
		in[f.Name] = v
	}

	out, err := d.compute(in)
	if err != nil {
		return Outcome{}, err
	}
	for _, l := range out.Lines {
		if math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
			return Outcome{}, fmt.Errorf("%w: %s is out of range", ErrInvalidInput, l.Label)
		}
	}
	return out, nil
}
