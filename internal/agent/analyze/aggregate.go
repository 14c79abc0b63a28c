package analyze

import (
	"context"

	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/model"
)

// Aggregate runs the generic conjunctive aggregation over raw facts for
// amount questions. The Answer is always left for the composer.
func (a *Analyzer) Aggregate(ctx context.Context, question string) (*model.ResultEnvelope, error) {
	if !extract.IsAmountQuestion(question) {
		return nil, nil
	}
	filters := extract.Filters(question)

	total, count, top, err := a.facts.SumFacts(ctx, filters)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	return &model.ResultEnvelope{
		Evidence:     top,
		Total:        model.Float64Ptr(total),
		Filters:      model.ParamsFromFilters(filters),
		QuestionType: string(model.QCustomFilters),
	}, nil
}
