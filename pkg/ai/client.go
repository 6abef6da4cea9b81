// Package ai is a thin pass-through client for a locally hosted Ollama
// text-generation service. Model inference itself is out of scope; this only
// forwards prompts and relays the response.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "llama2"

// Config holds Ollama connection settings.
type Config struct {
	// Endpoint is the Ollama base URL, e.g. http://ollama:11434
	Endpoint string
	// Model is the default model name; empty means DefaultModel.
	Model string
	// Timeout bounds each generation round trip. Generation is slow, so the
	// default is generous.
	Timeout time.Duration
}

// GenerateResponse is the non-streaming Ollama generation payload.
type GenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at,omitempty"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// Client calls the Ollama /api/generate endpoint.
type Client struct {
	endpoint     string
	defaultModel string
	httpClient   *http.Client
}

// NewClient creates an Ollama client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ai: endpoint is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		defaultModel: model,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

// Generate sends prompt to the model and returns the completed response.
// An empty model falls back to the configured default.
func (c *Client) Generate(ctx context.Context, model, prompt string) (*GenerateResponse, error) {
	if prompt == "" {
		return nil, fmt.Errorf("ai: prompt is required")
	}
	if model == "" {
		model = c.defaultModel
	}

	payload, err := json.Marshal(map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai: generation failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("ai: decode response: %w", err)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
