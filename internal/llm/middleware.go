package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"vantage/internal/llmclient"
)

// Middleware decorates a TextClient to inject cross-cutting concerns
// (retries, logging, hooks, etc.).
type Middleware func(llmclient.TextClient) llmclient.TextClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.TextClient, mws ...Middleware) llmclient.TextClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Retry with exponential backoff --------

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent and auth errors stop it early, as does context
// cancellation. The raw clients never retry on their own; applying this
// middleware is the orchestrator's choice.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.TextClient) llmclient.TextClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next llmclient.TextClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Generate(ctx context.Context, prompt string, opts llmclient.GenerateOptions) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		text, err := r.next.Generate(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		var pErr *llmclient.PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		var aErr *llmclient.AuthError
		if errors.As(err, &aErr) {
			return "", err
		}
		last = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		time.Sleep(r.base * time.Duration(1<<i))
	}
	return "", last
}

// -------- Logging & Hooks --------

// WithLogging logs prompt sizes and errors. Pass nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.TextClient) llmclient.TextClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.TextClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, prompt string, opts llmclient.GenerateOptions) (string, error) {
	l.log.Printf("LLM request (%s): %d bytes, maxTokens=%d temp=%.2f", PhaseFrom(ctx), len(prompt), opts.MaxTokens, opts.Temperature)
	text, err := l.next.Generate(ctx, prompt, opts)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", PhaseFrom(ctx), err)
	}
	return text, err
}

// WithHooks calls HookFrom(ctx).Before/After around Generate.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next llmclient.TextClient) llmclient.TextClient {
		return &hookedMW{next: next}
	}
}

type hookedMW struct{ next llmclient.TextClient }

func (h *hookedMW) Name() string { return h.next.Name() }
func (h *hookedMW) Close() error { return h.next.Close() }

func (h *hookedMW) Generate(ctx context.Context, prompt string, opts llmclient.GenerateOptions) (string, error) {
	if hook := HookFrom(ctx); hook != nil {
		hook.Before(ctx, PhaseFrom(ctx), prompt)
	}
	text, err := h.next.Generate(ctx, prompt, opts)
	if hook := HookFrom(ctx); hook != nil {
		hook.After(ctx, PhaseFrom(ctx), text, err)
	}
	return text, err
}
