package llm

import (
	"context"
	"sync"

	"vantage/internal/llmclient"
)

// FakeClient is a scripted TextClient for offline use and tests. Each call
// consumes the next queued response; when the script runs out, the last
// response repeats. Calls are counted per phase.
type FakeClient struct {
	mu      sync.Mutex
	script  []string
	next    int
	err     error
	calls   int
	byPhase map[string]int
	prompts []string
}

// NewFakeClient queues the given responses in order.
func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{script: responses, byPhase: map[string]int{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Fail makes every subsequent call return err.
func (f *FakeClient) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls reports how many times Generate ran.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// CallsFor reports how many times Generate ran under the given phase.
func (f *FakeClient) CallsFor(phase string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPhase[phase]
}

// Prompt returns the i-th prompt Generate received.
func (f *FakeClient) Prompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.prompts) {
		return ""
	}
	return f.prompts[i]
}

func (f *FakeClient) Generate(ctx context.Context, prompt string, _ llmclient.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.byPhase[PhaseFrom(ctx)]++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.script) == 0 {
		return "{}", nil
	}
	resp := f.script[f.next]
	if f.next < len(f.script)-1 {
		f.next++
	}
	return resp, nil
}
