// Package jsonrepair extracts valid JSON from generative-backend output that
// is frequently malformed: fenced, wrapped in prose, or syntactically broken.
// Strategies escalate from free syntactic fixes to one bounded repair call
// back to the backend, stopping at the first success.
package jsonrepair

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"vantage/internal/llmclient"
)

const (
	// Only the head of a broken payload is sent to the repair call, to bound
	// cost and latency.
	repairInputLimit = 3000

	// How much of the original text a RecoveryError keeps for diagnostics.
	errorExcerptLimit = 500

	repairMaxTokens = 2048
)

// Generator is the slice of TextClient the repair strategy needs. Tests
// substitute a counting fake to assert exactly when the network is touched.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts llmclient.GenerateOptions) (string, error)
}

// RecoveryError means every strategy failed; Excerpt holds a truncated prefix
// of the original text for diagnostics.
type RecoveryError struct {
	Excerpt string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("jsonrepair: all strategies exhausted; raw text starts: %s", e.Excerpt)
}

// strategy attempts one recovery approach. ok=false means "try the next one",
// including when the repair call itself fails: a broken repair is just an
// exhausted strategy, not a new failure mode.
type strategy struct {
	name  string
	apply func(ctx context.Context, e *Engine, text string) (json.RawMessage, bool)
}

// Engine runs the ordered strategy chain. gen is only touched by the final
// repair strategy; a nil gen skips it.
type Engine struct {
	gen        Generator
	strategies []strategy
}

// New returns an engine whose last resort issues a repair generation call
// through gen.
func New(gen Generator) *Engine {
	return &Engine{
		gen: gen,
		strategies: []strategy{
			{name: "direct", apply: tryDirect},
			{name: "strip-fences", apply: tryStripFences},
			{name: "brace-slice", apply: tryBraceSlice},
			{name: "repair-call", apply: tryRepairCall},
		},
	}
}

// Recover returns the first JSON object any strategy can extract from text.
func (e *Engine) Recover(ctx context.Context, text string) (json.RawMessage, error) {
	for _, s := range e.strategies {
		if raw, ok := s.apply(ctx, e, text); ok {
			return raw, nil
		}
	}
	return nil, &RecoveryError{Excerpt: truncateExcerpt(text)}
}

// truncateExcerpt caps the diagnostic at errorExcerptLimit bytes without
// splitting a multi-byte rune.
func truncateExcerpt(text string) string {
	if len(text) <= errorExcerptLimit {
		return text
	}
	cut := errorExcerptLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func parseObject(text string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}
	var scratch any
	if err := json.Unmarshal([]byte(trimmed), &scratch); err != nil {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

func tryDirect(_ context.Context, _ *Engine, text string) (json.RawMessage, bool) {
	return parseObject(text)
}

var (
	reFenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	reFenceClose = regexp.MustCompile("\\s*```\\s*$")
)

func stripFences(text string) string {
	out := strings.TrimSpace(text)
	out = reFenceOpen.ReplaceAllString(out, "")
	out = reFenceClose.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func tryStripFences(_ context.Context, _ *Engine, text string) (json.RawMessage, bool) {
	return parseObject(stripFences(text))
}

// tryBraceSlice handles prose before/after the payload by parsing the
// substring between the first '{' and the last '}'.
func tryBraceSlice(_ context.Context, _ *Engine, text string) (json.RawMessage, bool) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return nil, false
	}
	return parseObject(text[first : last+1])
}

func repairPrompt(broken string) string {
	if len(broken) > repairInputLimit {
		broken = broken[:repairInputLimit]
	}
	return `<|system|>
You are a JSON repair tool. Output ONLY the corrected, valid JSON with no explanation.
<|user|>
The following text is supposed to be JSON but has syntax errors. Fix it and return valid JSON only:

` + broken + `
<|assistant|>`
}

// tryRepairCall spends one model call at zero temperature asking the backend
// to emit corrected JSON, then reapplies the cheap fixes to the result.
func tryRepairCall(ctx context.Context, e *Engine, text string) (json.RawMessage, bool) {
	if e.gen == nil {
		return nil, false
	}
	repaired, err := e.gen.Generate(ctx, repairPrompt(text), llmclient.GenerateOptions{
		MaxTokens:   repairMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, false
	}
	if raw, ok := parseObject(repaired); ok {
		return raw, true
	}
	return parseObject(stripFences(repaired))
}
