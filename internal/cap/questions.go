package cap

// Question is one onboarding prompt. Options are display labels, Values the
// profile values mapped by index; answers may arrive as either.
type Question struct {
	ID       string   `json:"id"`
	Field    string   `json:"field"`
	Question string   `json:"question"`
	Type     string   `json:"type"` // "single" | "multi" | "text"
	Options  []string `json:"options"`
	Values   []string `json:"values"`
}

// Questions are the five Cognitive/Accessibility Profile questions, served to
// the onboarding UI and consumed by Build.
var Questions = []Question{
	{
		ID:       "q1",
		Field:    "informationDensity",
		Question: "How much detail do you want for each task?",
		Type:     "single",
		Options: []string{
			"Just the essentials — one or two sentences",
			"A bit of context — two or three sentences",
			"Full breakdown — step-by-step instructions",
		},
		Values: []string{"summary", "moderate", "full"},
	},
	{
		ID:       "q2",
		Field:    "timeHorizon",
		Question: "How far ahead do you want deadline reminders?",
		Type:     "single",
		Options: []string{
			"Same day (24 hours before)",
			"3 days ahead",
			"1 week ahead",
			"2 weeks ahead",
		},
		Values: []string{"24h", "72h", "1week", "2weeks"},
	},
	{
		ID:       "q3",
		Field:    "sensoryFlags",
		Question: "What environments make it hard for you to focus? (Select all that apply)",
		Type:     "multi",
		Options: []string{
			"Loud or noisy spaces",
			"Bright lighting",
			"Crowded areas",
			"Open or exposed spaces",
		},
		Values: []string{"loud", "bright", "crowds", "open"},
	},
	{
		ID:       "q4",
		Field:    "supportLevel",
		Question: "How much help do you want with tasks?",
		Type:     "single",
		Options: []string{
			"Just remind me of the due date",
			"Break each task into numbered steps",
			"Full support — steps plus a suggested start date",
		},
		Values: []string{"reminder", "step-by-step", "full-agent"},
	},
	{
		ID:       "q5",
		Field:    "displayName",
		Question: "What should Vantage call you?",
		Type:     "text",
	},
}
