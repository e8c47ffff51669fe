package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Failure kinds the orchestrator distinguishes. Both map to server errors at
// the transport layer; callers must never surface the wrapped cause.
var (
	ErrGeneration = errors.New("generation failed")
	ErrEmbedding  = errors.New("embedding failed")
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
}

// Client talks to an OpenAI-compatible API for chat completion and embedding.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete sends the prompt messages and returns the assistant text.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": messages,
		"stream":   false,
	}
	raw, err := c.post(ctx, "/chat/completions", reqBody, ErrGeneration)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrGeneration, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrGeneration)
	}
	return parsed.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one embedding per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: empty input text", ErrEmbedding)
		}
	}

	reqBody := map[string]interface{}{
		"model": c.cfg.EmbeddingModel,
		"input": texts,
	}
	raw, err := c.post(ctx, "/embeddings", reqBody, ErrEmbedding)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrEmbedding, err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbedding, len(parsed.Data), len(texts))
	}
	result := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		if len(parsed.Data[i].Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty vector at position %d", ErrEmbedding, i)
		}
		result[i] = parsed.Data[i].Embedding
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody interface{}, kind error) ([]byte, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", kind, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", kind, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", kind, resp.StatusCode, string(raw))
	}
	return raw, nil
}
