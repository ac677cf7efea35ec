package types

import "time"

// Assignment is one extracted syllabus item after Pass 1 normalization.
// Every field is populated: normalization substitutes defaults for anything
// the backend omitted, and Confidence is always computed locally.
type Assignment struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	DueDate        *string  `json:"dueDate"`
	EstimatedHours float64  `json:"estimatedHours"`
	Type           string   `json:"type"`
	Priority       string   `json:"priority"`
	RubricPoints   *float64 `json:"rubricPoints"`
	Confidence     string   `json:"confidence"`
}

// TranslatedTask is an Assignment with the Pass 2 plain-language overlay.
// Steps is nil when no step breakdown was requested for the support level.
type TranslatedTask struct {
	Assignment

	PlainEnglishDescription string   `json:"plainEnglishDescription"`
	Steps                   []string `json:"steps"`
	SuggestedStartDate      *string  `json:"suggestedStartDate"`
	EstimatedMinutes        int      `json:"estimatedMinutes"`
}

// ImportantDate is a dated course event outside the assignment list.
type ImportantDate struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Extraction is the full Pass 1 output for one document.
type Extraction struct {
	CourseName     string             `json:"courseName"`
	Instructor     string             `json:"instructor"`
	Term           string             `json:"term"`
	Assignments    []Assignment       `json:"assignments"`
	Policies       map[string]*string `json:"policies"`
	ImportantDates []ImportantDate    `json:"importantDates"`
}

// PipelineResult is the shaped output of a full two-pass run. It is written
// once to the durable cache and never updated.
type PipelineResult struct {
	CourseName     string             `json:"courseName"`
	Instructor     string             `json:"instructor"`
	Term           string             `json:"term"`
	Tasks          []TranslatedTask   `json:"tasks"`
	Policies       map[string]*string `json:"policies"`
	ImportantDates []ImportantDate    `json:"importantDates"`
	ProcessedAt    time.Time          `json:"processedAt"`
}

// Document is one uploaded syllabus held in the session store until the
// pipeline reads it. Never mutated after creation.
type Document struct {
	RawText    string    `json:"rawText"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
}
