// Package retrieve finds narrative budget excerpts to ground answers that
// no structured query could produce. Vector search runs first; keyword
// search covers the case where no embedder is configured or the vector
// path comes back empty.
package retrieve

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/model"
	logx "github.com/landover-agents/server/pkg/logger"
)

// Retriever searches the excerpt store, by embedding when an embedder is
// available and by keywords otherwise.
type Retriever struct {
	embedder embedding.Embedder // nil disables the vector path
	store    model.ExcerptStore
	k        int
}

// New builds a Retriever returning at most k excerpts per search.
func New(embedder embedding.Embedder, store model.ExcerptStore, k int) *Retriever {
	if k <= 0 {
		k = 5
	}
	return &Retriever{embedder: embedder, store: store, k: k}
}

// Search returns up to k evidence excerpts for the question, or nil when
// nothing relevant is stored.
func (r *Retriever) Search(ctx context.Context, question string) ([]model.Evidence, error) {
	if r.embedder != nil {
		found, err := r.searchByVector(ctx, question)
		if err != nil {
			logx.Warn().Err(err).Msg("vector search failed, falling back to keywords")
		} else if len(found) > 0 {
			return found, nil
		}
	}
	return r.searchByKeywords(ctx, question)
}

func (r *Retriever) searchByVector(ctx context.Context, question string) ([]model.Evidence, error) {
	vectors, err := r.embedder.EmbedStrings(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, nil
	}
	return r.store.SearchByEmbedding(ctx, vectors[0], r.k)
}

func (r *Retriever) searchByKeywords(ctx context.Context, question string) ([]model.Evidence, error) {
	filters := extract.Filters(question)
	if filters.FiscalYear != nil || filters.Department != "" {
		return r.store.SearchByKeywords(ctx, filters.FiscalYear, filters.Department, nil, r.k)
	}
	tokens := extract.Tokens(question, 4)
	if len(tokens) == 0 {
		return nil, nil
	}
	return r.store.SearchByKeywords(ctx, nil, "", tokens, r.k)
}
