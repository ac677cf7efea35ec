package pipeline

import (
	"fmt"
	"strings"

	"vantage/internal/types"
)

// Confidence levels computed for extracted assignments. Never taken from
// backend output.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// assignmentDefaults is the single source of truth for field defaults
// substituted during normalization.
var assignmentDefaults = struct {
	Title          string
	Description    string
	EstimatedHours float64
	Type           string
	Priority       string
}{
	Title:          "Untitled Assignment",
	Description:    "",
	EstimatedHours: 2,
	Type:           "assignment",
	Priority:       "medium",
}

// fallbackMinutes is used when estimatedHours is not a positive number.
const fallbackMinutes = 120

// scoreConfidence rates an assignment by completeness. Title and description
// substance are required at every level above low; a missing date only costs
// one level because "TBD" dates are the most common acceptable gap.
func scoreConfidence(dueDate *string, title, description string) string {
	hasDate := dueDate != nil && strings.TrimSpace(*dueDate) != ""
	hasTitle := len(strings.TrimSpace(title)) > 8
	hasDesc := len(strings.TrimSpace(description)) > 25

	switch {
	case hasDate && hasTitle && hasDesc:
		return ConfidenceHigh
	case hasTitle && hasDesc:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// normalizeAssignment fills every field of one backend-supplied assignment
// object, substituting defaults for anything absent or of the wrong type.
// index is zero-based and produces sequential ids ("t1", "t2", ...) when the
// backend omitted one. Confidence is scored against the raw record before any
// default is substituted: a placeholder title must not lift the score.
func normalizeAssignment(raw map[string]any, index int) types.Assignment {
	a := types.Assignment{
		ID:             asString(raw["id"]),
		Title:          asString(raw["title"]),
		Description:    asString(raw["description"]),
		DueDate:        asDateString(raw["dueDate"]),
		Type:           asString(raw["type"]),
		Priority:       asString(raw["priority"]),
		RubricPoints:   asNumberPtr(raw["rubricPoints"]),
		EstimatedHours: assignmentDefaults.EstimatedHours,
	}
	a.Confidence = scoreConfidence(a.DueDate, a.Title, a.Description)
	if a.ID == "" {
		a.ID = fmt.Sprintf("t%d", index+1)
	}
	if a.Title == "" {
		a.Title = assignmentDefaults.Title
	}
	if a.Type == "" {
		a.Type = assignmentDefaults.Type
	}
	if a.Priority == "" {
		a.Priority = assignmentDefaults.Priority
	}
	if hours, ok := asNumber(raw["estimatedHours"]); ok && hours > 0 {
		a.EstimatedHours = hours
	}
	return a
}

// estimatedMinutes derives the task duration from estimatedHours. Pure
// post-processing, not part of the model contract.
func estimatedMinutes(hours float64) int {
	if hours <= 0 {
		return fallbackMinutes
	}
	return int(hours*60 + 0.5)
}

// ---- dynamic JSON value helpers ----

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asNumberPtr(v any) *float64 {
	if n, ok := asNumber(v); ok {
		return &n
	}
	return nil
}

// asDateString returns a non-empty string value or nil. Absence and null both
// mean "not stated or ambiguous", never a parsing failure.
func asDateString(v any) *string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
