// Package embedder adapts the Gemini embedding API to the Eino embedder
// interface used by the retrieval path.
package embedder

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"
)

// Gemini embeds texts through the Gemini embedding models.
type Gemini struct {
	client *genai.Client
	model  string
	dims   int
}

var _ embedding.Embedder = (*Gemini)(nil)

// NewGemini builds an embedder on an existing genai client.
func NewGemini(client *genai.Client, model string, dims int) *Gemini {
	return &Gemini{client: client, model: model, dims: dims}
}

// EmbedStrings embeds the texts in one batched call.
func (g *Gemini) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	cfg := &genai.EmbedContentConfig{}
	if g.dims > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(g.dims))
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed content: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	out := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out, nil
}
