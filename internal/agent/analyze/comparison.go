package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/model"
)

// Comparison answers category-comparison questions from the per-category
// totals of the year the question names. It needs an explicit year.
func (a *Analyzer) Comparison(ctx context.Context, question string) (*model.ResultEnvelope, error) {
	filters := extract.Filters(question)
	if filters.FiscalYear == nil {
		return nil, nil
	}
	year := *filters.FiscalYear

	rows, err := a.categoryTotals(ctx, year, 10)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	totalBudget := 0.0
	for _, row := range rows {
		totalBudget += row.Total
	}

	evidence := make([]model.Evidence, 0, 5)
	for _, row := range rows {
		if len(evidence) == 5 {
			break
		}
		evidence = append(evidence, model.Evidence{
			FiscalYear: year.Label(),
			Category:   row.Category,
			Amount:     row.Total,
			Source:     "v_category_totals",
		})
	}

	env := &model.ResultEnvelope{
		Evidence:     evidence,
		Total:        model.Float64Ptr(totalBudget),
		Filters:      model.ParamsFromFilters(filters),
		QuestionType: string(model.QCategoryComparisons),
	}

	q := strings.ToLower(question)
	label := year.Label()
	switch {
	case strings.Contains(q, "most funding"):
		top := rows[0]
		env.Answer = fmt.Sprintf("%s received the most funding in %s with %s.",
			model.TitleCategory(top.Category), label, model.FormatMoneyN(top.Total, 2))
	case strings.Contains(q, "compare"):
		if filters.Department == "" {
			env.Answer = "I found budget comparison data, but couldn't identify the specific departments to compare."
			break
		}
		env.Answer = fmt.Sprintf("I couldn't find budget data for %s.", model.TitleCategory(filters.Department))
		for _, row := range rows {
			if row.Category == filters.Department {
				env.Answer = fmt.Sprintf("%s had a budget of %s in %s.",
					model.TitleCategory(row.Category), model.FormatMoneyN(row.Total, 2), label)
				break
			}
		}
	case strings.Contains(q, "rank"):
		if filters.Department == "" {
			env.Answer = "I couldn't determine the ranking for the specified department."
			break
		}
		env.Answer = fmt.Sprintf("I couldn't find %s in the budget rankings.", model.TitleCategory(filters.Department))
		for i, row := range rows {
			if row.Category == filters.Department {
				env.Answer = fmt.Sprintf("%s ranked #%d in %s with %s.",
					model.TitleCategory(row.Category), i+1, label, model.FormatMoneyN(row.Total, 2))
				break
			}
		}
	}
	// empty Answer: caller composes from the evidence
	return env, nil
}
