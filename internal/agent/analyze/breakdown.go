package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/model"
)

// Breakdown answers percentage/share questions from the per-category
// breakdown of the year the question names. It needs an explicit year and
// a non-zero year total.
func (a *Analyzer) Breakdown(ctx context.Context, question string) (*model.ResultEnvelope, error) {
	filters := extract.Filters(question)
	if filters.FiscalYear == nil {
		return nil, nil
	}
	year := *filters.FiscalYear

	yearTotal, ok, err := a.agg.YearTotal(ctx, year)
	if err != nil || !ok || yearTotal == 0 {
		return nil, err
	}
	rows, err := a.agg.CategoryTotals(ctx, year)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	label := year.Label()
	evidence := make([]model.Evidence, 0, 5)
	for _, row := range rows {
		if len(evidence) == 5 {
			break
		}
		evidence = append(evidence, model.Evidence{
			FiscalYear: label,
			Category:   row.Category,
			Amount:     row.Total,
			Percent:    model.Float64Ptr(row.Total / yearTotal * 100),
			Source:     "v_category_totals",
		})
	}

	env := &model.ResultEnvelope{
		Evidence:     evidence,
		Total:        model.Float64Ptr(yearTotal),
		Filters:      model.ParamsFromFilters(filters),
		QuestionType: string(model.QBreakdownsShares),
	}

	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "percentage"):
		if filters.Department == "" {
			env.Answer = "I couldn't identify which department you're asking about for the percentage calculation."
			break
		}
		env.Answer = fmt.Sprintf("I couldn't find %s in the %s budget data.",
			model.TitleCategory(filters.Department), label)
		for _, row := range rows {
			if row.Category == filters.Department {
				env.Answer = fmt.Sprintf("%s of the %s budget came from %s.",
					model.FormatPercent(row.Total/yearTotal*100), label, model.TitleCategory(row.Category))
				break
			}
		}
	case strings.Contains(q, "top 5"):
		top := rows
		if len(top) > 5 {
			top = top[:5]
		}
		parts := make([]string, len(top))
		for i, row := range top {
			parts[i] = fmt.Sprintf("%s (%s)", model.TitleCategory(row.Category), model.FormatMoneyN(row.Total, 2))
		}
		env.Answer = fmt.Sprintf("The top 5 categories by amount in %s are: %s.", label, strings.Join(parts, ", "))
	case strings.Contains(q, "share"):
		if filters.Department == "" {
			env.Answer = "I couldn't identify which department you're asking about for the share calculation."
			break
		}
		env.Answer = fmt.Sprintf("I can see %s budget data, but I need more specific information about the line item you're asking about.",
			model.TitleCategory(filters.Department))
	}
	return env, nil
}
