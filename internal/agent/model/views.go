package model

import "context"

// YearYoYRow is one row of the v_year_yoy view. Change is nil for the base
// year, which has no predecessor.
type YearYoYRow struct {
	Year   FiscalYear
	Total  float64
	Change *float64
}

// CategoryTotalRow is one row of the v_category_totals view.
type CategoryTotalRow struct {
	Year     FiscalYear
	Category string
	Total    float64
}

// CategoryShareRow is one row of the v_category_shares view.
type CategoryShareRow struct {
	Year      FiscalYear
	Category  string
	Total     float64
	PctOfYear float64
}

// CategoryYoYRow is one row of the v_category_yoy view. ChangePct is nil
// when the prior year total is zero.
type CategoryYoYRow struct {
	Year         FiscalYear
	Category     string
	Total        float64
	PrevTotal    float64
	ChangeAmount float64
	ChangePct    *float64
}

// AggregateStore reads the pre-aggregated budget views. Absent data is
// reported through the ok/nil result, never as an error.
type AggregateStore interface {
	YearTotal(ctx context.Context, year FiscalYear) (total float64, ok bool, err error)
	YearYoY(ctx context.Context) ([]YearYoYRow, error)
	CategoryTotals(ctx context.Context, year FiscalYear) ([]CategoryTotalRow, error)
	CategoryTotal(ctx context.Context, year FiscalYear, category string) (total float64, ok bool, err error)
	CategoryShare(ctx context.Context, year FiscalYear, category string) (*CategoryShareRow, error)
	LineItemTotal(ctx context.Context, year FiscalYear, category, lineItem string) (total float64, ok bool, err error)
	CategoryYoY(ctx context.Context, year FiscalYear, category string) (*CategoryYoYRow, error)
}

// FactStore runs the generic conjunctive aggregation over raw budget facts.
// top holds the largest matching rows (at most five) as evidence.
type FactStore interface {
	SumFacts(ctx context.Context, f FilterSet) (total float64, count int, top []Evidence, err error)
}

// ExcerptStore retrieves narrative budget excerpts as last-resort evidence.
type ExcerptStore interface {
	SearchByEmbedding(ctx context.Context, vec []float64, k int) ([]Evidence, error)
	SearchByKeywords(ctx context.Context, year *FiscalYear, department string, tokens []string, k int) ([]Evidence, error)
}

// AnswerCache is an optional read-through cache of final envelopes.
type AnswerCache interface {
	Get(ctx context.Context, question string) (*ResultEnvelope, bool, error)
	Set(ctx context.Context, question string, env *ResultEnvelope) error
}

// BudgetFact is one raw expenditure/revenue row as loaded into the store.
type BudgetFact struct {
	FiscalYear FiscalYear
	Department string
	LineItem   string
	Amount     float64
}

// Excerpt is one narrative chunk from the budget book, optionally embedded.
type Excerpt struct {
	FiscalYear FiscalYear // 0 when the chunk is not year-specific
	Department string
	Text       string
	Embedding  []float64
}
