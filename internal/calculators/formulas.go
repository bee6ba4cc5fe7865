// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package calculators

import (
	"fmt"
	"math"
	"strconv"
)

const lbPerKg = 2.20462

// maxCourses bounds the GPA form.
const maxCourses = 8

var bmiDefinition = Definition{
	Kind:  KindBMI,
	Label: "Body Mass Index",
	Fields: []Field{
		{Name: "weight", Label: "Weight", Unit: "kg", Min: 1},
		{Name: "height", Label: "Height", Unit: "cm", Min: 30},
	},
	compute: func(in map[string]float64) (Outcome, error) {
		m := in["height"] / 100
		bmi := round(in["weight"]/(m*m), 1)
		return Outcome{
			Summary: fmt.Sprintf("BMI %.1f (%s)", bmi, bmiBand(bmi)),
			Lines:   []Line{{Label: "BMI", Value: bmi, Unit: "kg/m²"}},
		}, nil
	},
}

func bmiBand(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal weight"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

var bmrDefinition = Definition{
	Kind:  KindBMR,
	Label: "Basal Metabolic Rate",
	Fields: []Field{
		{Name: "weight", Label: "Weight", Unit: "kg", Min: 1},
		{Name: "height", Label: "Height", Unit: "cm", Min: 30},
		{Name: "age", Label: "Age", Unit: "years", Min: 1},
		{Name: "male", Label: "Male (1) or female (0)", Min: 0},
	},
	compute: func(in map[string]float64) (Outcome, error) {
		if in["male"] != 0 && in["male"] != 1 {
			return Outcome{}, fmt.Errorf("%w: sex must be 0 or 1", ErrInvalidInput)
		}
		// Mifflin-St Jeor.
		bmr := 10*in["weight"] + 6.25*in["height"] - 5*in["age"]
		if in["male"] == 1 {
			bmr += 5
		} else {
			bmr -= 161
		}
		bmr = round(bmr, 0)
		return Outcome{
			Summary: fmt.Sprintf("%.0f kcal/day at rest", bmr),
			Lines:   []Line{{Label: "BMR", Value: bmr, Unit: "kcal/day"}},
		}, nil
	},
}

var loanDefinition = Definition{
	Kind:  KindLoan,
	Label: "Loan Amortization",
	Fields: []Field{
		{Name: "principal", Label: "Loan amount", Min: 1},
		{Name: "rate", Label: "Annual interest rate", Unit: "%", Min: 0},
		{Name: "years", Label: "Term", Unit: "years", Min: 1},
	},
	compute: func(in map[string]float64) (Outcome, error) {
		p := in["principal"]
		n := in["years"] * 12
		r := in["rate"] / 100 / 12

		var payment float64
		if r == 0 {
			payment = p / n
		} else {
			f := math.Pow(1+r, n)
			if math.IsInf(f, 0) {
				return Outcome{}, fmt.Errorf("%w: rate and term are too large", ErrInvalidInput)
			}
			payment = p * r * f / (f - 1)
		}
		total := payment * n
		return Outcome{
			Summary: fmt.Sprintf("Monthly payment %.2f", payment),
			Lines: []Line{
				{Label: "Monthly payment", Value: round(payment, 2)},
				{Label: "Total paid", Value: round(total, 2)},
				{Label: "Total interest", Value: round(total-p, 2)},
			},
		}, nil
	},
}

var percentageDefinition = Definition{
	Kind:  KindPercentage,
	Label: "Percentage",
	Fields: []Field{
		{Name: "percent", Label: "Percent", Unit: "%", Min: math.Inf(-1)},
		{Name: "value", Label: "Of value", Min: math.Inf(-1)},
	},
	compute: func(in map[string]float64) (Outcome, error) {
		v := round(in["percent"]/100*in["value"], 4)
		return Outcome{
			Summary: fmt.Sprintf("%g%% of %g is %g", in["percent"], in["value"], v),
			Lines:   []Line{{Label: "Result", Value: v}},
		}, nil
	},
}

var gpaDefinition = Definition{
	Kind:   KindGPA,
	Label:  "Grade Point Average",
	Fields: gpaFields(),
	compute: func(in map[string]float64) (Outcome, error) {
		var points, credits float64
		for i := 1; i <= maxCourses; i++ {
			g, hasGrade := in[gradeKey(i)]
			c, hasCredits := in[creditKey(i)]
			if !hasGrade && !hasCredits {
				continue
			}
			if hasGrade != hasCredits {
				return Outcome{}, fmt.Errorf("%w: course %d needs both grade and credits", ErrMissingInput, i)
			}
			if g > 4 {
				return Outcome{}, fmt.Errorf("%w: course %d grade must be at most 4.0", ErrInvalidInput, i)
			}
			points += g * c
			credits += c
		}
		if credits == 0 {
			return Outcome{}, fmt.Errorf("%w: at least one course with credits", ErrMissingInput)
		}
		gpa := round(points/credits, 2)
		return Outcome{
			Summary: fmt.Sprintf("GPA %.2f over %g credits", gpa, credits),
			Lines: []Line{
				{Label: "GPA", Value: gpa},
				{Label: "Credits", Value: credits},
			},
		}, nil
	},
}

func gpaFields() []Field {
	fields := make([]Field, 0, maxCourses*2)
	for i := 1; i <= maxCourses; i++ {
		fields = append(fields,
			Field{Name: gradeKey(i), Label: "Course " + strconv.Itoa(i) + " grade", Min: 0, Optional: true},
			Field{Name: creditKey(i), Label: "Course " + strconv.Itoa(i) + " credits", Min: 0, Optional: true},
		)
	}
	return fields
}

func gradeKey(i int) string  { return "grade" + strconv.Itoa(i) }
func creditKey(i int) string { return "credits" + strconv.Itoa(i) }

var concreteDefinition = Definition{
	Kind:  KindConcrete,
	Label: "Concrete Slab Volume",
	Fields: []Field{
		{Name: "length", Label: "Length", Unit: "m", Min: 0},
		{Name: "width", Label: "Width", Unit: "m", Min: 0},
		{Name: "depth", Label: "Depth", Unit: "cm", Min: 0},
	},
	compute: func(in map[string]float64) (Outcome, error) {
		v := round(in["length"]*in["width"]*in["depth"]/100, 3)
		return Outcome{
			Summary: fmt.Sprintf("%.3f m³ of concrete", v),
			Lines:   []Line{{Label: "Volume", Value: v, Unit: "m³"}},
		}, nil
	},
}

var kgToLbDefinition = Definition{
	Kind:   KindKgToLb,
	Label:  "Kilograms to Pounds",
	Fields: []Field{{Name: "kg", Label: "Weight", Unit: "kg", Min: 0}},
	compute: func(in map[string]float64) (Outcome, error) {
		lb := round(in["kg"]*lbPerKg, 2)
		return Outcome{
			Summary: fmt.Sprintf("%g kg = %.2f lb", in["kg"], lb),
			Lines:   []Line{{Label: "Pounds", Value: lb, Unit: "lb"}},
		}, nil
	},
}

var currencyDefinition = Definition{
	Kind:  KindCurrency,
	Label: "Currency Conversion",
	Fields: []Field{
		{Name: "amount", Label: "Amount", Min: 0},
		{Name: "rate", Label: "Exchange rate", Min: 0},
	},
	compute: func(in map[string]float64) (Outcome, error) {
		if in["rate"] == 0 {
			return Outcome{}, fmt.Errorf("%w: exchange rate must be positive", ErrInvalidInput)
		}
		v := round(in["amount"]*in["rate"], 2)
		return Outcome{
			Summary: fmt.Sprintf("%.2f converted", v),
			Lines:   []Line{{Label: "Converted amount", Value: v}},
		}, nil
	},
}

// round rounds x to the given number of decimal places.
func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
