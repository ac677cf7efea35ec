package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func watsonxTestClient(t *testing.T, gen http.HandlerFunc) (*WatsonxClient, func()) {
	t.Helper()
	var exchanges atomic.Int64
	iam := iamServer(t, &exchanges, 3600)
	srv := httptest.NewServer(gen)
	tokens := NewIAMTokenSource("test-key", iam.URL, iam.Client())
	client := NewWatsonxClient(tokens, srv.URL, "ibm/granite-13b-instruct-v2", "proj-123")
	return client, func() {
		iam.Close()
		srv.Close()
	}
}

func TestWatsonxGenerateRequestShape(t *testing.T) {
	var got watsonxGenReq
	client, done := watsonxTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ml/v1/text/generation" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("version") != "2023-05-29" {
			t.Errorf("version = %q", r.URL.Query().Get("version"))
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"results": [{"generated_text": "{\"assignments\": []}"}]}`)
	})
	defer done()

	text, err := client.Generate(context.Background(), "<|system|>extract<|assistant|>", GenerateOptions{MaxTokens: 2048, Temperature: 0.1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"assignments": []}` {
		t.Errorf("text = %q", text)
	}

	if got.ModelID != "ibm/granite-13b-instruct-v2" || got.ProjectID != "proj-123" {
		t.Errorf("model/project = %q/%q", got.ModelID, got.ProjectID)
	}
	if got.Input != "<|system|>extract<|assistant|>" {
		t.Errorf("input = %q", got.Input)
	}
	p := got.Parameters
	if p.MaxNewTokens != 2048 || p.Temperature != 0.1 || p.RepetitionPenalty != 1.05 {
		t.Errorf("parameters = %+v", p)
	}
}

func TestWatsonxGenerateClientErrorIsPermanent(t *testing.T) {
	client, done := watsonxTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors": [{"code": "invalid_input"}]}`, http.StatusBadRequest)
	})
	defer done()

	_, err := client.Generate(context.Background(), "p", GenerateOptions{})
	var ge *GenerationError
	if !errors.As(err, &ge) || ge.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 *GenerationError, got %v", err)
	}
	var pe *PermanentError
	if !errors.As(err, &pe) {
		t.Errorf("4xx must be permanent, got %v", err)
	}
}

func TestWatsonxGenerateRateLimitIsRetryable(t *testing.T) {
	client, done := watsonxTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})
	defer done()

	_, err := client.Generate(context.Background(), "p", GenerateOptions{})
	var ge *GenerationError
	if !errors.As(err, &ge) || ge.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 *GenerationError, got %v", err)
	}
	var pe *PermanentError
	if errors.As(err, &pe) {
		t.Error("429 must stay retryable")
	}
}

func TestWatsonxGenerateMissingText(t *testing.T) {
	client, done := watsonxTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{}]}`)
	})
	defer done()

	_, err := client.Generate(context.Background(), "p", GenerateOptions{})
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
}

func TestWatsonxGenerateMissingProject(t *testing.T) {
	tokens := NewIAMTokenSource("test-key", "", nil)
	client := NewWatsonxClient(tokens, "", "", "")
	_, err := client.Generate(context.Background(), "p", GenerateOptions{})
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
}
