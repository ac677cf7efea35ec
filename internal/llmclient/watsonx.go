package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const watsonxGenerationPath = "/ml/v1/text/generation?version=2023-05-29"

// WatsonxClient calls the WatsonX text-generation endpoint. It is a thin,
// fail-fast boundary: one request, a hard timeout, no retries.
type WatsonxClient struct {
	http      *http.Client
	tokens    *IAMTokenSource
	baseURL   string
	modelID   string
	projectID string
}

// NewWatsonxClient creates a client for the given deployment. tokens must not
// be nil; baseURL defaults to the us-south region.
func NewWatsonxClient(tokens *IAMTokenSource, baseURL, modelID, projectID string) *WatsonxClient {
	if baseURL == "" {
		baseURL = "https://us-south.ml.cloud.ibm.com"
	}
	if modelID == "" {
		modelID = "ibm/granite-13b-instruct-v2"
	}
	return &WatsonxClient{
		http:      &http.Client{Timeout: 60 * time.Second},
		tokens:    tokens,
		baseURL:   baseURL,
		modelID:   modelID,
		projectID: projectID,
	}
}

func (c *WatsonxClient) Name() string { return "WatsonX:" + c.modelID }
func (c *WatsonxClient) Close() error { return nil }

type watsonxGenReq struct {
	ModelID    string           `json:"model_id"`
	Input      string           `json:"input"`
	Parameters watsonxGenParams `json:"parameters"`
	ProjectID  string           `json:"project_id"`
}

type watsonxGenParams struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type watsonxGenResp struct {
	Results []struct {
		GeneratedText *string `json:"generated_text"`
	} `json:"results"`
}

// Generate sends the formatted prompt and returns the raw generated text.
// Non-success statuses and responses without a generated_text field surface
// as *GenerationError with the upstream status and body.
func (c *WatsonxClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c.projectID == "" {
		return "", &GenerationError{Body: "watsonx project id is not set"}
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	body, err := json.Marshal(watsonxGenReq{
		ModelID: c.modelID,
		Input:   prompt,
		Parameters: watsonxGenParams{
			MaxNewTokens:      opts.MaxTokens,
			Temperature:       opts.Temperature,
			RepetitionPenalty: 1.05,
		},
		ProjectID: c.projectID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+watsonxGenerationPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		genErr := &GenerationError{Status: resp.StatusCode, Body: truncateBody(raw)}
		// 4xx responses other than rate limiting will not resolve with retries.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", NewPermanentError(genErr)
		}
		return "", genErr
	}

	var out watsonxGenResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Status: resp.StatusCode, Body: "unparseable generation response: " + err.Error()}
	}
	if len(out.Results) == 0 || out.Results[0].GeneratedText == nil {
		return "", &GenerationError{Status: resp.StatusCode, Body: "generation response missing generated_text"}
	}
	return *out.Results[0].GeneratedText, nil
}
