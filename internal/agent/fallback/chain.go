// Package fallback answers the questions the dispatcher left unanswered.
// It walks a fixed chain of deterministic analyzers, then retrieval, and
// always produces an envelope.
package fallback

import (
	"context"
	"strings"

	"github.com/landover-agents/server/internal/agent/analyze"
	"github.com/landover-agents/server/internal/agent/classify"
	"github.com/landover-agents/server/internal/agent/composer"
	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/retrieve"
	logx "github.com/landover-agents/server/pkg/logger"
)

// NoDataAnswer is the last-resort answer when no step produced anything.
const NoDataAnswer = "I couldn't find specific data matching your question."

// Chain runs the fallback pipeline. Steps self-gate and return nil to pass
// the question along; the first envelope wins.
type Chain struct {
	analyzer  *analyze.Analyzer
	retriever *retrieve.Retriever
	composer  *composer.Composer
}

// New builds the fallback chain.
func New(analyzer *analyze.Analyzer, retriever *retrieve.Retriever, comp *composer.Composer) *Chain {
	return &Chain{analyzer: analyzer, retriever: retriever, composer: comp}
}

// Answer resolves the question through the chain. It never returns nil;
// step errors are logged and treated as a pass.
func (c *Chain) Answer(ctx context.Context, question string) (*model.ResultEnvelope, error) {
	qt := classify.Question(question)

	steps := []struct {
		name string
		run  func(context.Context, string) (*model.ResultEnvelope, error)
		gate bool
	}{
		{"comparison", c.analyzer.Comparison, qt == model.QCategoryComparisons},
		{"trend", c.analyzer.Trend, qt == model.QTrendAnalysis},
		{"breakdown", c.analyzer.Breakdown, qt == model.QBreakdownsShares},
		{"aggregate", c.analyzer.Aggregate, true},
		{"retrieval", c.retrieve, true},
	}
	for _, step := range steps {
		if !step.gate {
			continue
		}
		env, err := step.run(ctx, question)
		if err != nil {
			logx.Warn().Err(err).Str("step", step.name).Msg("fallback step failed")
			continue
		}
		if env == nil {
			continue
		}
		if strings.TrimSpace(env.Answer) == "" {
			env.Answer = c.composer.Compose(ctx, question, env)
		}
		logx.Debug().Str("step", step.name).Str("question_type", env.QuestionType).Msg("fallback answered")
		return env, nil
	}

	return &model.ResultEnvelope{
		Answer:       NoDataAnswer,
		Filters:      model.ParamsFromFilters(extract.Filters(question)),
		QuestionType: string(qt),
	}, nil
}

// retrieve wraps the excerpt search as a chain step.
func (c *Chain) retrieve(ctx context.Context, question string) (*model.ResultEnvelope, error) {
	evidence, err := c.retriever.Search(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(evidence) == 0 {
		return nil, nil
	}
	return &model.ResultEnvelope{
		Evidence:     evidence,
		Filters:      model.ParamsFromFilters(extract.Filters(question)),
		QuestionType: string(classify.Question(question)),
	}, nil
}
