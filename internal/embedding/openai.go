package embedding

import (
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAI builds an embedder backed by an OpenAI-compatible API
// (OpenAI, OpenRouter, or any server speaking the same protocol). The
// returned EmbedderImpl satisfies the Embedder interface.
func NewOpenAI(baseURL, apiKey, model string) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(strings.TrimPrefix(apiKey, "Bearer ")),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}
