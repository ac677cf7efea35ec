package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"vantage/internal/llm"
	"vantage/internal/llmclient"
	"vantage/internal/types"
)

const (
	translateMaxTokens   = 2048
	translateTemperature = 0.2
)

// Translate runs Pass 2: rewrite assignments into profile-adapted plain
// language and merge the results back by id. The returned id set is always
// exactly the input id set: the merge only overlays fields, defaulting to
// Pass 1 values when the backend's response omits an id. An empty input
// returns immediately without a model call.
func (p *Pipeline) Translate(ctx context.Context, assignments []types.Assignment, profile types.CAPProfile) ([]types.TranslatedTask, error) {
	if len(assignments) == 0 {
		return []types.TranslatedTask{}, nil
	}

	ctx = llm.WithPhase(ctx, "translate")
	text, err := p.llm.Generate(ctx, translationPrompt(assignments, profile), llmclient.GenerateOptions{
		MaxTokens:   translateMaxTokens,
		Temperature: translateTemperature,
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
		return nil, fmt.Errorf("translation payload is not a JSON object: %w", err)
	}

	byID := map[string]map[string]any{}
	if items, ok := parsed["assignments"].([]any); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if id := asString(obj["id"]); id != "" {
				byID[id] = obj
			}
		}
	}

	return mergeTranslations(assignments, byID, profile), nil
}

// mergeTranslations overlays translation fields onto the originals. Scrambled
// or partial model output cannot add or drop tasks; unmatched assignments
// pass through with their description duplicated as the plain-English form.
func mergeTranslations(originals []types.Assignment, byID map[string]map[string]any, profile types.CAPProfile) []types.TranslatedTask {
	tasks := make([]types.TranslatedTask, 0, len(originals))
	for _, orig := range originals {
		task := types.TranslatedTask{
			Assignment:              orig,
			PlainEnglishDescription: orig.Description,
			EstimatedMinutes:        estimatedMinutes(orig.EstimatedHours),
		}
		if t, ok := byID[orig.ID]; ok {
			if desc := asString(t["plainEnglishDescription"]); desc != "" {
				task.PlainEnglishDescription = desc
			}
			task.Steps = asStringSlice(t["steps"])
			task.SuggestedStartDate = asDateString(t["suggestedStartDate"])
		}
		// Reminder support never includes a step breakdown, whatever the
		// model returned.
		if profile.SupportLevel == types.SupportReminder {
			task.Steps = nil
		}
		tasks = append(tasks, task)
	}
	return tasks
}
