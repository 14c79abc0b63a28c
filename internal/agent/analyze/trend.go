package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/model"
)

// categoryChange is one per-category movement between two fiscal years.
type categoryChange struct {
	Category     string
	OldAmount    float64
	NewAmount    float64
	ChangeAmount float64
	ChangePct    float64
}

// Trend answers change-over-time questions. It needs at least two fiscal
// years mentioned in the question and compares the earliest to the latest.
func (a *Analyzer) Trend(ctx context.Context, question string) (*model.ResultEnvelope, error) {
	years := extract.Years(question)
	if len(years) < 2 {
		return nil, nil
	}
	fromYear, toYear := years[0], years[len(years)-1]

	oldRows, err := a.agg.CategoryTotals(ctx, fromYear)
	if err != nil {
		return nil, err
	}
	newRows, err := a.agg.CategoryTotals(ctx, toYear)
	if err != nil {
		return nil, err
	}
	if len(oldRows) == 0 || len(newRows) == 0 {
		return nil, nil
	}

	oldByCat := make(map[string]float64, len(oldRows))
	for _, row := range oldRows {
		oldByCat[row.Category] = row.Total
	}

	var changes []categoryChange
	for _, row := range newRows {
		oldAmount, ok := oldByCat[row.Category]
		if !ok {
			continue
		}
		pct := 0.0
		if oldAmount > 0 {
			pct = (row.Total - oldAmount) / oldAmount * 100
		}
		changes = append(changes, categoryChange{
			Category:     row.Category,
			OldAmount:    oldAmount,
			NewAmount:    row.Total,
			ChangeAmount: row.Total - oldAmount,
			ChangePct:    pct,
		})
	}
	if len(changes) == 0 {
		return nil, nil
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return abs(changes[i].ChangeAmount) > abs(changes[j].ChangeAmount)
	})

	evidence := make([]model.Evidence, 0, 5)
	for _, c := range changes {
		if len(evidence) == 5 {
			break
		}
		evidence = append(evidence, model.Evidence{
			FiscalYear: toYear.Label(),
			Category:   c.Category,
			Amount:     c.NewAmount,
			Prior:      model.Float64Ptr(c.OldAmount),
			Delta:      model.Float64Ptr(c.ChangeAmount),
			Percent:    model.Float64Ptr(c.ChangePct),
			Source:     "v_category_totals",
		})
	}

	env := &model.ResultEnvelope{
		Evidence:     evidence,
		Filters:      model.Params{YearFrom: fromYear.Label(), YearTo: toYear.Label(), PartialData: fromYear.IsPartial() || toYear.IsPartial()},
		QuestionType: string(model.QTrendAnalysis),
	}

	q := strings.ToLower(question)
	fromLabel, toLabel := fromYear.Label(), toYear.Label()
	switch {
	case strings.Contains(q, "how did") && strings.Contains(q, "change"):
		dept := extract.Department(q)
		if dept == "" {
			env.Answer = "I found trend data, but couldn't identify the specific department to analyze."
			break
		}
		env.Answer = fmt.Sprintf("I couldn't find trend data for %s.", model.TitleCategory(dept))
		for _, c := range changes {
			if c.Category != dept {
				continue
			}
			name := model.TitleCategory(c.Category)
			switch {
			case c.ChangePct > 0:
				env.Answer = fmt.Sprintf("%s funding increased by %s from %s to %s between %s and %s.",
					name, model.FormatPercent(c.ChangePct),
					model.FormatMoneyN(c.OldAmount, 2), model.FormatMoneyN(c.NewAmount, 2), fromLabel, toLabel)
			case c.ChangePct < 0:
				env.Answer = fmt.Sprintf("%s funding decreased by %s from %s to %s between %s and %s.",
					name, model.FormatPercent(-c.ChangePct),
					model.FormatMoneyN(c.OldAmount, 2), model.FormatMoneyN(c.NewAmount, 2), fromLabel, toLabel)
			default:
				env.Answer = fmt.Sprintf("%s funding remained unchanged at %s between %s and %s.",
					name, model.FormatMoneyN(c.OldAmount, 2), fromLabel, toLabel)
			}
			break
		}
	case strings.Contains(q, "grew the most"):
		var best *categoryChange
		for i := range changes {
			if changes[i].ChangePct > 0 && (best == nil || changes[i].ChangePct > best.ChangePct) {
				best = &changes[i]
			}
		}
		if best == nil {
			env.Answer = fmt.Sprintf("No departments showed growth between %s and %s.", fromLabel, toLabel)
			break
		}
		env.Answer = fmt.Sprintf("%s grew the most with a %s increase between %s and %s.",
			model.TitleCategory(best.Category), model.FormatPercent(best.ChangePct), fromLabel, toLabel)
	case strings.Contains(q, "decreased"):
		var worst *categoryChange
		for i := range changes {
			if changes[i].ChangePct < 0 && (worst == nil || changes[i].ChangePct < worst.ChangePct) {
				worst = &changes[i]
			}
		}
		if worst == nil {
			env.Answer = fmt.Sprintf("No departments showed decreases between %s and %s.", fromLabel, toLabel)
			break
		}
		env.Answer = fmt.Sprintf("%s had the largest decrease of %s between %s and %s.",
			model.TitleCategory(worst.Category), model.FormatPercent(-worst.ChangePct), fromLabel, toLabel)
	}
	return env, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
