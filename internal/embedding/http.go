package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UnrecognizedResponseError is returned when the embedding service
// answers with neither the batch shape {"data":[{"embedding":...}]}
// nor the single-vector shape {"embedding":...}.
type UnrecognizedResponseError struct {
	Body []byte
}

func (e *UnrecognizedResponseError) Error() string {
	return fmt.Sprintf("unrecognized embedding response: %s", e.Body)
}

// Client talks to an OpenAI-compatible embedding endpoint over HTTP.
// The transport behind the endpoint (local model server or hosted
// service) is none of its business.
type Client struct {
	endpoint   string
	model      string
	dimensions int // expected vector length, 0 disables the check
	httpClient *http.Client
}

func NewClient(endpoint, model string, dimensions int) *Client {
	return &Client{
		endpoint:   endpoint,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Embedding []float32 `json:"embedding"`
}

// EmbedDocuments embeds a batch of texts in a single request. The
// returned vectors align positionally with texts.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := c.post(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(vecs))
	}
	return vecs, nil
}

// EmbedQuery embeds a single string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.post(ctx, text)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *Client) post(ctx context.Context, input any) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: input})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding API error: status %d, body: %s", resp.StatusCode, respBody)
	}

	vecs, err := parseResponse(respBody)
	if err != nil {
		return nil, err
	}
	if c.dimensions > 0 {
		for i, v := range vecs {
			if len(v) != c.dimensions {
				return nil, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(v), c.dimensions)
			}
		}
	}
	return vecs, nil
}

// parseResponse tries the batch shape first and falls back to the
// single-vector shape.
func parseResponse(data []byte) ([][]float32, error) {
	var resp embedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &UnrecognizedResponseError{Body: data}
	}
	if len(resp.Data) > 0 {
		vecs := make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			if len(d.Embedding) == 0 {
				return nil, &UnrecognizedResponseError{Body: data}
			}
			vecs[i] = d.Embedding
		}
		return vecs, nil
	}
	if len(resp.Embedding) > 0 {
		return [][]float32{resp.Embedding}, nil
	}
	return nil, &UnrecognizedResponseError{Body: data}
}
