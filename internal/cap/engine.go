// Package cap builds Cognitive/Accessibility Profiles from onboarding
// answers. Rule-based, no model involved.
package cap

import (
	"strings"
	"time"

	"vantage/internal/types"
)

// Answer pairs a question id with its raw answer. Single/text answers use
// Answer; multi-select answers use Selected.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Answer     string   `json:"answer"`
	Selected   []string `json:"selected,omitempty"`
}

// Build turns the raw onboarding answers into a profile. Unknown question
// ids are ignored; unanswered questions keep their defaults. Answers are
// accepted both as the underlying value and as the display label.
func Build(answers []Answer, now time.Time) types.CAPProfile {
	profile := types.DefaultCAPProfile()
	profile.CreatedAt = now.UTC()

	byID := make(map[string]Question, len(Questions))
	for _, q := range Questions {
		byID[q.ID] = q
	}

	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		switch q.Type {
		case "text":
			if v := strings.TrimSpace(ans.Answer); v != "" {
				setField(&profile, q.Field, v)
			}
		case "multi":
			selected := ans.Selected
			if len(selected) == 0 && ans.Answer != "" {
				selected = []string{ans.Answer}
			}
			flags := make([]string, 0, len(selected))
			for _, item := range selected {
				if v, ok := resolve(q, item); ok {
					flags = append(flags, v)
				} else if strings.TrimSpace(item) != "" {
					flags = append(flags, item)
				}
			}
			profile.SensoryFlags = flags
		default: // single
			if v, ok := resolve(q, ans.Answer); ok {
				setField(&profile, q.Field, v)
			}
		}
	}

	if profile.SensoryFlags == nil {
		profile.SensoryFlags = []string{}
	}
	return profile
}

// resolve maps an answer to its profile value, accepting the value itself or
// its display label.
func resolve(q Question, answer string) (string, bool) {
	for _, v := range q.Values {
		if v == answer {
			return v, true
		}
	}
	for i, label := range q.Options {
		if label == answer && i < len(q.Values) {
			return q.Values[i], true
		}
	}
	return "", false
}

func setField(p *types.CAPProfile, field, value string) {
	switch field {
	case "displayName":
		p.DisplayName = value
	case "informationDensity":
		p.InformationDensity = value
	case "timeHorizon":
		p.TimeHorizon = value
	case "supportLevel":
		p.SupportLevel = value
	}
}
