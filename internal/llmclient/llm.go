package llmclient

import (
	"context"
	"fmt"
)

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// TextClient is the minimal surface of a text-generation backend. It returns
// raw text; turning that text into structured data is the caller's problem
// (see internal/jsonrepair). Cross-cutting concerns (retries, logging, hooks)
// are applied via internal/llm middleware.
type TextClient interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Close() error
}

// AuthError means the credential exchange failed; treat as a configuration
// or outage problem, not something to retry blindly.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth: token exchange failed (%d): %s", e.Status, e.Body)
	}
	return "auth: " + e.Body
}

// GenerationError carries the upstream status and body when the backend
// returns a non-success response or an unusable shape.
type GenerationError struct {
	Status int
	Body   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: backend error (%d): %s", e.Status, e.Body)
}

// PermanentError marks an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

const maxDiagnosticBody = 2048

func truncateBody(b []byte) string {
	if len(b) > maxDiagnosticBody {
		b = b[:maxDiagnosticBody]
	}
	return string(b)
}
