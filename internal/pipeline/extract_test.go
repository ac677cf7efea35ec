package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vantage/internal/llm"
)

const sampleSyllabus = `CS 3430 Data Structures, Spring 2025, Dr. Sarah Chen.
Programming Assignment 1 is due 2025-02-14 and covers REST API design.
The midterm exam is on 2025-02-28.`

func TestExtractRejectsShortInput(t *testing.T) {
	fake := llm.NewFakeClient()
	p := New(fake)

	_, err := p.Extract(context.Background(), "too short")
	if !errors.Is(err, ErrInputTooShort) {
		t.Fatalf("expected ErrInputTooShort, got %v", err)
	}
	if fake.Calls() != 0 {
		t.Fatalf("validation must run before any network call, got %d calls", fake.Calls())
	}
}

func TestExtractRejectsWhitespacePadding(t *testing.T) {
	fake := llm.NewFakeClient()
	p := New(fake)

	_, err := p.Extract(context.Background(), strings.Repeat(" ", 200)+"hi")
	if !errors.Is(err, ErrInputTooShort) {
		t.Fatalf("expected ErrInputTooShort, got %v", err)
	}
}

func TestExtractNormalizesAssignments(t *testing.T) {
	fake := llm.NewFakeClient(`{
		"courseName": "CS 3430 — Data Structures",
		"instructor": "Dr. Sarah Chen",
		"term": "Spring 2025",
		"assignments": [
			{
				"id": "t1",
				"title": "Programming Assignment 1 — REST API Design",
				"description": "Design and build a small REST API with three endpoints.",
				"dueDate": "2025-02-14",
				"estimatedHours": 6,
				"type": "assignment",
				"priority": "high",
				"rubricPoints": 100,
				"confidence": "critical"
			},
			{"title": "Lab"}
		],
		"policies": {"attendance": "Max 3 absences", "lateWork": null},
		"importantDates": [{"date": "2025-02-28", "description": "Midterm"}],
		"someGarbageField": [1, 2, 3]
	}`)
	p := New(fake)

	out, err := p.Extract(context.Background(), sampleSyllabus)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if out.CourseName != "CS 3430 — Data Structures" {
		t.Errorf("CourseName = %q", out.CourseName)
	}
	if len(out.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(out.Assignments))
	}

	first := out.Assignments[0]
	if first.Confidence != ConfidenceHigh {
		t.Errorf("backend-supplied confidence must be overwritten; got %q", first.Confidence)
	}
	if first.RubricPoints == nil || *first.RubricPoints != 100 {
		t.Errorf("RubricPoints = %v", first.RubricPoints)
	}

	second := out.Assignments[1]
	if second.ID != "t2" {
		t.Errorf("missing id must be assigned sequentially, got %q", second.ID)
	}
	if second.EstimatedHours != 2 || second.Priority != "medium" || second.Type != "assignment" {
		t.Errorf("defaults not substituted: %+v", second)
	}
	if second.Confidence != ConfidenceLow {
		t.Errorf("thin assignment must score low, got %q", second.Confidence)
	}

	if v, ok := out.Policies["attendance"]; !ok || v == nil || *v != "Max 3 absences" {
		t.Errorf("attendance policy = %v", v)
	}
	if v, ok := out.Policies["lateWork"]; !ok || v != nil {
		t.Errorf("null policy must stay nil, got %v", v)
	}
	if len(out.ImportantDates) != 1 || out.ImportantDates[0].Date != "2025-02-28" {
		t.Errorf("ImportantDates = %+v", out.ImportantDates)
	}
}

func TestExtractDefaultsCourseMetadata(t *testing.T) {
	fake := llm.NewFakeClient(`{"assignments": []}`)
	p := New(fake)

	out, err := p.Extract(context.Background(), sampleSyllabus)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.CourseName != "Unknown Course" || out.Instructor != "Unknown Instructor" || out.Term != "Unknown Term" {
		t.Errorf("placeholders not applied: %q / %q / %q", out.CourseName, out.Instructor, out.Term)
	}
	if out.Assignments == nil || out.Policies == nil || out.ImportantDates == nil {
		t.Error("collections must be non-nil even when empty")
	}
	if !strings.Contains(fake.Prompt(0), sampleSyllabus) {
		t.Error("raw text not embedded in the extraction prompt")
	}
}

func TestExtractRecoversFencedResponse(t *testing.T) {
	fake := llm.NewFakeClient("```json\n{\"courseName\": \"PHIL 200\", \"assignments\": []}\n```")
	p := New(fake)

	out, err := p.Extract(context.Background(), sampleSyllabus)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.CourseName != "PHIL 200" {
		t.Errorf("CourseName = %q", out.CourseName)
	}
	if fake.Calls() != 1 {
		t.Errorf("fence recovery must not spend a repair call, got %d calls", fake.Calls())
	}
}
