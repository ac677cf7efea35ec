package jsonrepair

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"vantage/internal/llmclient"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	reply   string
	err     error
	prompts []string
	opts    []llmclient.GenerateOptions
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, opts llmclient.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestRecoverDirectParseNoNetwork(t *testing.T) {
	gen := &fakeGenerator{}
	engine := New(gen)

	raw, err := engine.Recover(context.Background(), `{"a":1}`)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if string(raw) != `{"a":1}` {
		t.Fatalf("got %s", raw)
	}
	if gen.calls != 0 {
		t.Fatalf("direct parse must not touch the generator, got %d calls", gen.calls)
	}
}

func TestRecoverStripsCodeFences(t *testing.T) {
	gen := &fakeGenerator{}
	engine := New(gen)

	for _, text := range []string{
		"```json\n{\"a\":1}\n```",
		"```\n{\"a\":1}\n```",
		"```JSON\n{\"a\":1}\n```",
	} {
		raw, err := engine.Recover(context.Background(), text)
		if err != nil {
			t.Fatalf("Recover(%q): %v", text, err)
		}
		if string(raw) != `{"a":1}` {
			t.Fatalf("Recover(%q) = %s", text, raw)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("fence stripping must not touch the generator, got %d calls", gen.calls)
	}
}

func TestRecoverBraceSlice(t *testing.T) {
	gen := &fakeGenerator{}
	engine := New(gen)

	raw, err := engine.Recover(context.Background(), `Here is your JSON: {"a":1} hope that helps!`)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if string(raw) != `{"a":1}` {
		t.Fatalf("got %s", raw)
	}
	if gen.calls != 0 {
		t.Fatalf("brace slicing must not touch the generator, got %d calls", gen.calls)
	}
}

func TestRecoverRepairCall(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"fixed\":true}\n```"}
	engine := New(gen)

	raw, err := engine.Recover(context.Background(), `{"broken": trailing,}`)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if string(raw) != `{"fixed":true}` {
		t.Fatalf("got %s", raw)
	}
	if gen.calls != 1 {
		t.Fatalf("expected exactly one repair call, got %d", gen.calls)
	}
	if gen.opts[0].Temperature != 0 {
		t.Fatalf("repair call must run at zero temperature, got %v", gen.opts[0].Temperature)
	}
	if !strings.Contains(gen.prompts[0], "JSON repair tool") {
		t.Fatalf("repair prompt missing instruction block:\n%s", gen.prompts[0])
	}
}

func TestRecoverRepairInputBounded(t *testing.T) {
	gen := &fakeGenerator{reply: `{"ok":true}`}
	engine := New(gen)

	long := "x" + strings.Repeat("y", 10_000)
	if _, err := engine.Recover(context.Background(), long); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(gen.prompts[0]) > repairInputLimit+500 {
		t.Fatalf("repair prompt not bounded: %d bytes", len(gen.prompts[0]))
	}
}

func TestRecoverExhaustion(t *testing.T) {
	gen := &fakeGenerator{reply: "still not json"}
	engine := New(gen)

	_, err := engine.Recover(context.Background(), "complete garbage with no braces")
	var rErr *RecoveryError
	if !errors.As(err, &rErr) {
		t.Fatalf("expected *RecoveryError, got %v", err)
	}
	if !strings.Contains(rErr.Excerpt, "complete garbage") {
		t.Fatalf("excerpt missing original text: %q", rErr.Excerpt)
	}
	if gen.calls != 1 {
		t.Fatalf("expected exactly one repair attempt, got %d", gen.calls)
	}
}

func TestRecoverRepairFailureIsExhaustion(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend down")}
	engine := New(gen)

	_, err := engine.Recover(context.Background(), "not json at all")
	var rErr *RecoveryError
	if !errors.As(err, &rErr) {
		t.Fatalf("expected *RecoveryError when the repair call fails, got %v", err)
	}
}

func TestRecoverErrorExcerptTruncated(t *testing.T) {
	engine := New(nil)

	long := strings.Repeat("z", 2000)
	_, err := engine.Recover(context.Background(), long)
	var rErr *RecoveryError
	if !errors.As(err, &rErr) {
		t.Fatalf("expected *RecoveryError, got %v", err)
	}
	if len(rErr.Excerpt) != errorExcerptLimit {
		t.Fatalf("excerpt length = %d, want %d", len(rErr.Excerpt), errorExcerptLimit)
	}
}

func TestRecoverErrorExcerptKeepsRunesIntact(t *testing.T) {
	engine := New(nil)

	// 3-byte runes that do not divide the limit evenly, so a byte slice at
	// the limit would land mid-rune.
	long := strings.Repeat("課", 400)
	_, err := engine.Recover(context.Background(), long)
	var rErr *RecoveryError
	if !errors.As(err, &rErr) {
		t.Fatalf("expected *RecoveryError, got %v", err)
	}
	if !utf8.ValidString(rErr.Excerpt) {
		t.Fatalf("excerpt is not valid UTF-8: %q", rErr.Excerpt)
	}
	if len(rErr.Excerpt) > errorExcerptLimit {
		t.Fatalf("excerpt length = %d, want at most %d", len(rErr.Excerpt), errorExcerptLimit)
	}
	if len(rErr.Excerpt) < errorExcerptLimit-utf8.UTFMax {
		t.Fatalf("excerpt over-truncated: %d bytes", len(rErr.Excerpt))
	}
}
