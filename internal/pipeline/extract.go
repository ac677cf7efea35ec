package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vantage/internal/llm"
	"vantage/internal/llmclient"
	"vantage/internal/types"
)

// ErrInputTooShort means the raw text failed the minimum-length sanity check
// before any network call was made. Surface as a validation failure; do not
// retry.
var ErrInputTooShort = errors.New("raw text is too short to be a syllabus")

const minRawTextLen = 50

const (
	extractMaxTokens   = 2048
	extractTemperature = 0.1
)

// Extract runs Pass 1: prompt the backend with the raw document text, recover
// the JSON payload, and normalize every assignment. Partial extraction is
// preferred over total failure: missing course metadata defaults to
// placeholders and unknown top-level fields are ignored.
func (p *Pipeline) Extract(ctx context.Context, rawText string) (*types.Extraction, error) {
	if len(strings.TrimSpace(rawText)) < minRawTextLen {
		return nil, fmt.Errorf("%w: got %d characters, need at least %d", ErrInputTooShort, len(strings.TrimSpace(rawText)), minRawTextLen)
	}

	ctx = llm.WithPhase(ctx, "extract")
	text, err := p.llm.Generate(ctx, extractionPrompt(rawText), llmclient.GenerateOptions{
		MaxTokens:   extractMaxTokens,
		Temperature: extractTemperature,
	})
	if err != nil {
		return nil, err
	}

	raw, err := p.repair.Recover(llm.WithPhase(ctx, "repair"), text)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Recover guarantees valid JSON but not an object (a bare array or
		// scalar parses too).
		return nil, fmt.Errorf("extraction payload is not a JSON object: %w", err)
	}

	out := &types.Extraction{
		CourseName:     stringOr(parsed["courseName"], "Unknown Course"),
		Instructor:     stringOr(parsed["instructor"], "Unknown Instructor"),
		Term:           stringOr(parsed["term"], "Unknown Term"),
		Assignments:    []types.Assignment{},
		Policies:       map[string]*string{},
		ImportantDates: []types.ImportantDate{},
	}

	if items, ok := parsed["assignments"].([]any); ok {
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out.Assignments = append(out.Assignments, normalizeAssignment(obj, i))
		}
	}

	if policies, ok := parsed["policies"].(map[string]any); ok {
		for name, v := range policies {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				out.Policies[name] = &s
			} else {
				out.Policies[name] = nil
			}
		}
	}

	if dates, ok := parsed["importantDates"].([]any); ok {
		for _, item := range dates {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			d := types.ImportantDate{
				Date:        asString(obj["date"]),
				Description: asString(obj["description"]),
			}
			if d.Date == "" && d.Description == "" {
				continue
			}
			out.ImportantDates = append(out.ImportantDates, d)
		}
	}

	return out, nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
