// Package analyze holds the deterministic fallback analyzers that answer
// classified question shapes the dispatcher could not. Each analyzer
// returns nil when its preconditions (classification, filters, data) are
// not met, letting the chain continue. An envelope with an empty Answer
// signals that the caller should compose the final sentence.
package analyze

import (
	"context"

	"github.com/landover-agents/server/internal/agent/model"
)

// Analyzer runs the comparison, trend, breakdown, and generic aggregation
// fallbacks over the budget stores.
type Analyzer struct {
	agg   model.AggregateStore
	facts model.FactStore
}

// New builds an Analyzer over the aggregate and fact stores.
func New(agg model.AggregateStore, facts model.FactStore) *Analyzer {
	return &Analyzer{agg: agg, facts: facts}
}

func (a *Analyzer) categoryTotals(ctx context.Context, year model.FiscalYear, limit int) ([]model.CategoryTotalRow, error) {
	rows, err := a.agg.CategoryTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
