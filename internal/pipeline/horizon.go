package pipeline

import (
	"time"

	"vantage/internal/types"
)

// horizonHours maps a profile's timeHorizon to a look-ahead window.
var horizonHours = map[string]int{
	"24h":    24,
	"72h":    72,
	"1week":  168,
	"2weeks": 336,
}

// FilterByHorizon keeps tasks due within the profile's reminder window.
// Tasks with no due date are always shown (no deadline to miss), and overdue
// tasks are always shown (a past date is inside any cutoff).
func FilterByHorizon(tasks []types.TranslatedTask, timeHorizon string, now time.Time) []types.TranslatedTask {
	hours, ok := horizonHours[timeHorizon]
	if !ok {
		hours = 72
	}
	cutoff := now.Add(time.Duration(hours) * time.Hour)

	out := make([]types.TranslatedTask, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			out = append(out, t)
			continue
		}
		due, err := time.Parse("2006-01-02", *t.DueDate)
		if err != nil {
			out = append(out, t)
			continue
		}
		if !due.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
