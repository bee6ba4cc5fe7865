// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultFallback is returned whenever no provider can answer.
const DefaultFallback = "Save this result and compare it with a second calculation using slightly different inputs."

const (
	// maxContextRunes bounds the caller-supplied context sent to a provider.
	maxContextRunes = 2000
	// maxSuggestionRunes bounds the returned suggestion.
	maxSuggestionRunes = 600
	// defaultSuggestTimeout bounds a single provider call.
	defaultSuggestTimeout = 15 * time.Second
)

// ErrEmptyContext means the caller sent nothing to base a suggestion on.
var ErrEmptyContext = errors.New("suggestion context is empty")

const suggestSystemPrompt = `You help people interpret the result of an online calculator.
Reply with one or two plain sentences suggesting a sensible next step.
Do not give medical, legal or financial advice beyond general guidance.
Do not use markdown.`

// Generator is the slice of Registry the Suggester needs.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SuggestRequest describes a finished calculation.
type SuggestRequest struct {
	Calculator string `json:"calculator"`
	Context    string `json:"context"`
}

// Suggestion is what the endpoint returns. Fallback is true when Text is
// the static fallback rather than model output.
type Suggestion struct {
	Text     string `json:"suggestion"`
	Fallback bool   `json:"fallback"`
}

// Suggester produces next-step suggestions and never fails once the
// request itself is valid: provider errors degrade to a static string.
type Suggester struct {
	gen      Generator
	fallback func(ctx context.Context) string
	timeout  time.Duration
}

// NewSuggester wraps gen. fallback supplies the static text, typically
// from site settings; a nil fallback or empty result uses DefaultFallback.
func NewSuggester(gen Generator, fallback func(ctx context.Context) string) *Suggester {
	return &Suggester{gen: gen, fallback: fallback, timeout: defaultSuggestTimeout}
}

// Suggest asks the provider for a suggestion. The only error it returns is
// ErrEmptyContext.
func (s *Suggester) Suggest(ctx context.Context, req SuggestRequest) (Suggestion, error) {
	text := strings.TrimSpace(req.Context)
	if text == "" {
		return Suggestion{}, ErrEmptyContext
	}

	if s.gen == nil {
		return s.fallbackSuggestion(ctx), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.gen.Generate(callCtx, suggestSystemPrompt, buildPrompt(req.Calculator, text))
	if err != nil {
		slog.Warn("ai suggestion failed, using fallback", "calculator", req.Calculator, "error", err)
		return s.fallbackSuggestion(ctx), nil
	}

	out = truncateRunes(strings.TrimSpace(out), maxSuggestionRunes)
	if out == "" {
		slog.Warn("ai suggestion empty, using fallback", "calculator", req.Calculator)
		return s.fallbackSuggestion(ctx), nil
	}
	return Suggestion{Text: out}, nil
}

func (s *Suggester) fallbackSuggestion(ctx context.Context) Suggestion {
	text := DefaultFallback
	if s.fallback != nil {
		if v := strings.TrimSpace(s.fallback(ctx)); v != "" {
			text = v
		}
	}
	return Suggestion{Text: text, Fallback: true}
}

func buildPrompt(calculator, context string) string {
	var b strings.Builder
	if calculator = strings.TrimSpace(calculator); calculator != "" {
		fmt.Fprintf(&b, "Calculator: %s\n", truncateRunes(calculator, 100))
	}
	fmt.Fprintf(&b, "Result: %s", truncateRunes(context, maxContextRunes))
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
