// Package parse extracts structured scene arrays from unreliable LLM output.
//
// LLMs wrap JSON in markdown fences, prepend prose, and emit trailing commas.
// Parsing runs ordered fallback strategies and stops at the first success.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/filmforge/filmforge/internal/domain/model"
)

// ErrNoJSONArray is returned when no strategy could extract a JSON array.
var ErrNoJSONArray = errors.New("no JSON array found in response")

var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	arrayExtractRe  = regexp.MustCompile(`(?s)\[.*\]`)
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// SceneArray parses a batch LLM response into scene drafts. Strategies, in
// order: (1) direct parse after stripping markdown code fences; (2) extract
// the first [...] substring and parse; (3) repair the extracted substring
// (trailing commas, control characters) and parse again.
func SceneArray(raw string) ([]model.SceneDraft, error) {
	candidates := candidateTexts(raw)

	var lastErr error
	for _, text := range candidates {
		drafts, err := unmarshalDrafts(text)
		if err == nil {
			return drafts, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return nil, ErrNoJSONArray
	}
	return nil, fmt.Errorf("%w: %v", ErrNoJSONArray, lastErr)
}

// candidateTexts yields the strategy inputs in fallback order. Duplicates are
// skipped so a clean response is only parsed once.
func candidateTexts(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(stripCodeFences(raw))

	extracted := extractArray(raw)
	add(extracted)

	if extracted != "" {
		add(repair(extracted))
	}
	return out
}

// stripCodeFences unwraps a ```json ... ``` block, or returns the input
// unchanged when no fence is present.
func stripCodeFences(raw string) string {
	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// extractArray returns the first [...] region of the text, greedy to the last
// closing bracket so nested arrays survive.
func extractArray(raw string) string {
	return arrayExtractRe.FindString(raw)
}

// repair applies light fixes: trailing commas before ] or }, and control
// characters that break encoding/json.
func repair(text string) string {
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unmarshalDrafts(text string) ([]model.SceneDraft, error) {
	var drafts []model.SceneDraft
	if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// ValidateBatch checks that a parsed array delivered at least the requested
// number of units. A short array means the provider under-delivered and the
// batch should be retried.
func ValidateBatch(drafts []model.SceneDraft, requested int) error {
	if len(drafts) < requested {
		return fmt.Errorf("provider under-delivered: got %d units, requested %d", len(drafts), requested)
	}
	for i := range drafts {
		if err := drafts[i].Validate(); err != nil {
			return fmt.Errorf("unit %d invalid: %w", i, err)
		}
	}
	return nil
}
