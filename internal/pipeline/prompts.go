package pipeline

import (
	"encoding/json"

	"vantage/internal/types"
)

// The backend is instruction-tuned against this exact four-part delimited
// structure (<|system|> rules, <|user|> task + schema + data, empty
// <|assistant|> as the generation cue). Treat the prompt builders as a
// versioned wire format: pure functions, reformatting degrades output.

const extractionSystem = `You are an academic syllabus parser. Your only job is to extract structured data from syllabus text and output it as valid JSON.

Rules:
- Output ONLY valid JSON. No preamble, no explanation, no markdown, no code fences.
- Your entire response must be directly parseable by JSON.parse().
- If a field is unknown or missing, use null.
- For dueDate, use ISO 8601 format (YYYY-MM-DD) or null if unclear or not mentioned.
- For estimatedHours, give a realistic estimate based on the task type if not stated.
- For priority: exams and final projects are "high", regular assignments "medium", readings "low".`

// extractionPrompt builds the Pass 1 prompt embedding rawText verbatim.
func extractionPrompt(rawText string) string {
	return `<|system|>
` + extractionSystem + `
<|user|>
Parse this syllabus. Extract every assignment, exam, quiz, project, lab, and reading. Return this exact JSON structure with no other text:

{
  "courseName": "string",
  "instructor": "string",
  "term": "string",
  "assignments": [
    {
      "id": "t1",
      "title": "string (assignment name)",
      "description": "string (what the student must do, from the syllabus)",
      "dueDate": "YYYY-MM-DD or null",
      "estimatedHours": 2,
      "type": "assignment|exam|quiz|project|reading|lab|other",
      "priority": "high|medium|low",
      "rubricPoints": 100
    }
  ],
  "policies": {
    "attendance": "string or null",
    "lateWork": "string or null",
    "academicIntegrity": "string or null"
  },
  "importantDates": [
    { "date": "YYYY-MM-DD", "description": "string" }
  ]
}

Syllabus text:
` + rawText + `
<|assistant|>`
}

const translationSystem = `You are an accessibility specialist who rewrites academic task descriptions in plain English tailored to each student's cognitive preferences.

Rules:
- Output ONLY valid JSON. No preamble, no explanation, no markdown, no code fences.
- Your entire response must be directly parseable by JSON.parse().
- Never use academic jargon if plain words exist.
- Write for the student directly (use "you" and "your").
- Be warm, clear, and direct. Avoid passive voice.`

// densityRule selects prompt wording for the profile's information density.
// A ternary instruction baked into the prompt text, not a numeric knob.
func densityRule(density string) string {
	switch density {
	case types.DensitySummary:
		return "Write 1-2 plain sentences only. Get straight to what needs to be done and when."
	case types.DensityFull:
		return "Write a complete, thorough explanation. Include what to do, why it matters, and any important details from the description."
	default:
		return "Write 2-3 plain sentences. Include what to do, the key requirement, and any important detail."
	}
}

// supportRule selects prompt wording for the profile's support level. The
// full-agent start-date arithmetic is described to the model rather than
// computed locally, keeping the date consistent with the model's own step
// breakdown.
func supportRule(level string) string {
	switch level {
	case types.SupportReminder:
		return "Set steps to null. Just remind them of the due date in the description."
	case types.SupportFullAgent:
		return "Include a steps array with 3-5 numbered concrete micro-actions (each under 15 words). Also include a suggestedStartDate in YYYY-MM-DD format — calculate it as the dueDate minus estimatedHours divided by 2 days of work."
	default:
		return "Include a steps array with 3-5 numbered concrete micro-actions (each under 15 words). Set suggestedStartDate to null."
	}
}

// translationPrompt builds the Pass 2 prompt embedding the full assignment
// list as JSON plus the profile-derived instructions.
func translationPrompt(assignments []types.Assignment, profile types.CAPProfile) string {
	list, _ := json.MarshalIndent(assignments, "", "  ")
	return `<|system|>
` + translationSystem + `
<|user|>
Rewrite these assignments for a student with these preferences:
- Information density: ` + profile.InformationDensity + ` — ` + densityRule(profile.InformationDensity) + `
- Support level: ` + profile.SupportLevel + ` — ` + supportRule(profile.SupportLevel) + `
- Deadline horizon: ` + profile.TimeHorizon + ` (for context only, do not include in output)

Return this exact JSON structure with no other text:

{
  "assignments": [
    {
      "id": "t1",
      "plainEnglishDescription": "string",
      "steps": ["Step 1: ...", "Step 2: ...", "Step 3: ..."] or null,
      "suggestedStartDate": "YYYY-MM-DD or null"
    }
  ]
}

Assignments to rewrite:
` + string(list) + `
<|assistant|>`
}
