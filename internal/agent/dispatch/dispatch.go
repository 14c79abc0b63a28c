// Package dispatch executes StructuredIntents against the aggregate views.
// Every successful answer embeds its source view name; absent data is a nil
// envelope, never an error, so the fallback chain can continue.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/landover-agents/server/internal/agent/model"
)

// Dispatcher runs the per-action deterministic computations.
type Dispatcher struct {
	store model.AggregateStore
}

// New builds a Dispatcher over the given aggregate store.
func New(store model.AggregateStore) *Dispatcher {
	return &Dispatcher{store: store}
}

// Execute runs the intent's action. A nil envelope with nil error means the
// data needed for the answer is absent.
func (d *Dispatcher) Execute(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	if in == nil {
		return nil, nil
	}
	switch in.Action {
	case model.ActionYearTotal:
		return d.yearTotal(ctx, in)
	case model.ActionYoYDifference:
		return d.yoyDifference(ctx, in)
	case model.ActionYoYAll:
		return d.yoyAll(ctx, in)
	case model.ActionCategoryRank:
		return d.categoryRank(ctx, in)
	case model.ActionCategoryShare:
		return d.categoryShare(ctx, in)
	case model.ActionLineItemTotal:
		return d.lineItemTotal(ctx, in)
	case model.ActionPercentChange:
		return d.percentChange(ctx, in)
	case model.ActionScenarioCut:
		return d.scenarioCut(ctx, in)
	case model.ActionWhatIfScenario:
		return d.whatIf(ctx, in)
	case model.ActionHelp:
		return helpEnvelope(in), nil
	}
	return nil, nil
}

func helpEnvelope(in *model.StructuredIntent) *model.ResultEnvelope {
	answer := in.Question
	if answer == "" {
		answer = model.HelpText
	}
	return &model.ResultEnvelope{
		Answer:       answer,
		Evidence:     []model.Evidence{},
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionHelp),
	}
}

// partialNote returns the mandatory note when any referenced year is partial.
func partialNote(years ...model.FiscalYear) string {
	for _, y := range years {
		if y.IsPartial() {
			return model.PartialNote
		}
	}
	return ""
}

func (d *Dispatcher) yearTotal(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	total, ok, err := d.store.YearTotal(ctx, in.Year)
	if err != nil || !ok {
		return nil, err
	}
	label := in.Year.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("Total %s budget: %s. Source: v_year_totals(%s).%s",
			label, model.FormatMoney(total), label, partialNote(in.Year)),
		Evidence: []model.Evidence{
			{FiscalYear: label, Amount: total, Source: "v_year_totals"},
		},
		Total:        model.Float64Ptr(total),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionYearTotal),
	}, nil
}

func (d *Dispatcher) yoyDifference(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	fromTotal, okFrom, err := d.store.YearTotal(ctx, in.YearFrom)
	if err != nil {
		return nil, err
	}
	toTotal, okTo, err := d.store.YearTotal(ctx, in.YearTo)
	if err != nil {
		return nil, err
	}
	if !okFrom || !okTo {
		return nil, nil
	}
	delta := toTotal - fromTotal
	fromLabel, toLabel := in.YearFrom.Label(), in.YearTo.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("Change from %s to %s: %s (%s -> %s). Source: v_year_yoy.%s",
			fromLabel, toLabel, model.FormatMoney(delta),
			model.FormatMoney(fromTotal), model.FormatMoney(toTotal),
			partialNote(in.YearFrom, in.YearTo)),
		Evidence: []model.Evidence{
			{FiscalYear: fromLabel, Amount: fromTotal, Source: "v_year_yoy"},
			{FiscalYear: toLabel, Amount: toTotal, Source: "v_year_yoy"},
		},
		Total:        model.Float64Ptr(toTotal),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionYoYDifference),
	}, nil
}

func (d *Dispatcher) yoyAll(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	rows, err := d.store.YearYoY(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	lines := make([]string, 0, len(rows))
	evidence := make([]model.Evidence, 0, len(rows))
	partial := ""
	for _, row := range rows {
		label := row.Year.Label()
		if row.Year.IsPartial() {
			partial = model.PartialNote
		}
		if row.Change == nil {
			lines = append(lines, fmt.Sprintf("%s: base %s", label, model.FormatMoney(row.Total)))
			evidence = append(evidence, model.Evidence{FiscalYear: label, Amount: row.Total, Source: "v_year_yoy"})
			continue
		}
		sign := "+"
		change := *row.Change
		if change < 0 {
			sign = "-"
			change = -change
		}
		lines = append(lines, fmt.Sprintf("%s: %s%s (total %s)",
			label, sign, model.FormatMoney(change), model.FormatMoney(row.Total)))
		evidence = append(evidence, model.Evidence{
			FiscalYear: label, Amount: row.Total, Delta: row.Change, Source: "v_year_yoy",
		})
	}
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("Year-over-year changes:\n- %s\nSource: v_year_yoy.%s",
			strings.Join(lines, "\n- "), partial),
		Evidence:     evidence,
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionYoYAll),
	}, nil
}

func (d *Dispatcher) categoryRank(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	rows, err := d.store.CategoryTotals(ctx, in.Year)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	if len(rows) > in.TopN {
		rows = rows[:in.TopN]
	}
	label := in.Year.Label()
	lines := make([]string, len(rows))
	evidence := make([]model.Evidence, len(rows))
	for i, row := range rows {
		lines[i] = fmt.Sprintf("%d. %s: %s", i+1, row.Category, model.FormatMoney(row.Total))
		evidence[i] = model.Evidence{
			FiscalYear: label, Category: row.Category, Amount: row.Total, Source: "v_category_totals",
		}
	}
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("Top %d categories in %s:\n%s\nSource: v_category_totals(%s).%s",
			in.TopN, label, strings.Join(lines, "\n"), label, partialNote(in.Year)),
		Evidence:     evidence,
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionCategoryRank),
	}, nil
}

func (d *Dispatcher) categoryShare(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	label := in.Year.Label()

	// The share view is preferred; it already guards zero year totals.
	row, err := d.store.CategoryShare(ctx, in.Year, in.Category)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return &model.ResultEnvelope{
			Answer: fmt.Sprintf("%s in %s: %s (%s of total). Source: v_category_shares(%s).%s",
				in.Category, label, model.FormatMoney(row.Total),
				model.FormatPercent(row.PctOfYear), label, partialNote(in.Year)),
			Evidence: []model.Evidence{
				{FiscalYear: label, Category: in.Category, Amount: row.Total,
					Percent: model.Float64Ptr(row.PctOfYear), Source: "v_category_shares"},
			},
			Total:        model.Float64Ptr(row.Total),
			Filters:      model.ParamsFromIntent(in),
			QuestionType: string(model.ActionCategoryShare),
		}, nil
	}

	catTotal, okCat, err := d.store.CategoryTotal(ctx, in.Year, in.Category)
	if err != nil {
		return nil, err
	}
	yearTotal, okYear, err := d.store.YearTotal(ctx, in.Year)
	if err != nil {
		return nil, err
	}
	// zero denominators short-circuit to absent rather than dividing
	if !okCat || !okYear || yearTotal == 0 {
		return nil, nil
	}
	pct := roundTo1(catTotal / yearTotal * 100)
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("%s in %s: %s (%s of total). Source: v_category_totals(%s).%s",
			in.Category, label, model.FormatMoney(catTotal),
			model.FormatPercent(pct), label, partialNote(in.Year)),
		Evidence: []model.Evidence{
			{FiscalYear: label, Category: in.Category, Amount: catTotal,
				Percent: model.Float64Ptr(pct), Source: "v_category_totals"},
		},
		Total:        model.Float64Ptr(catTotal),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionCategoryShare),
	}, nil
}

func (d *Dispatcher) lineItemTotal(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	total, ok, err := d.store.LineItemTotal(ctx, in.Year, in.Category, in.LineItem)
	if err != nil || !ok {
		return nil, err
	}
	label := in.Year.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("%s %s -> %s: %s. Source: v_line_items.%s",
			label, in.Category, in.LineItem, model.FormatMoney(total), partialNote(in.Year)),
		Evidence: []model.Evidence{
			{FiscalYear: label, Category: in.Category, LineItem: in.LineItem,
				Amount: total, Source: "v_line_items"},
		},
		Total:        model.Float64Ptr(total),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionLineItemTotal),
	}, nil
}

func (d *Dispatcher) percentChange(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	fromTotal, toTotal, ok, err := d.percentChangeTotals(ctx, in)
	if err != nil || !ok {
		return nil, err
	}

	var changeText string
	var pct *float64
	switch {
	case fromTotal == 0 && toTotal == 0:
		changeText = "0.0%"
		pct = model.Float64Ptr(0)
	case fromTotal == 0:
		changeText = fmt.Sprintf("not defined (no prior amount) - absolute change: %s",
			model.FormatMoneyN(toTotal, 0))
	default:
		v := (toTotal - fromTotal) / abs(fromTotal) * 100
		changeText = model.FormatPercent(v)
		pct = model.Float64Ptr(v)
	}

	absChange := toTotal - fromTotal
	fromLabel, toLabel := in.YearFrom.Label(), in.YearTo.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("%s changed by %s from %s to %s, moving from %s to %s (%s). Source: v_category_totals(%s,%s).%s",
			in.Category, changeText, fromLabel, toLabel,
			model.FormatMoneyN(fromTotal, 0), model.FormatMoneyN(toTotal, 0),
			model.FormatMoneyN(absChange, 0), fromLabel, toLabel, partialNote(in.YearTo)),
		Evidence: []model.Evidence{
			{FiscalYear: toLabel, Category: in.Category, Amount: toTotal,
				Prior: model.Float64Ptr(fromTotal), Delta: model.Float64Ptr(absChange),
				Percent: pct, Source: "v_category_totals"},
		},
		Total:        model.Float64Ptr(toTotal),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionPercentChange),
	}, nil
}

// percentChangeTotals prefers the v_category_yoy view when the requested
// pair is adjacent, falling back to two category total lookups.
func (d *Dispatcher) percentChangeTotals(ctx context.Context, in *model.StructuredIntent) (from, to float64, ok bool, err error) {
	if in.YearTo == in.YearFrom+1 {
		row, err := d.store.CategoryYoY(ctx, in.YearTo, in.Category)
		if err != nil {
			return 0, 0, false, err
		}
		if row != nil {
			return row.PrevTotal, row.Total, true, nil
		}
	}
	fromTotal, okFrom, err := d.store.CategoryTotal(ctx, in.YearFrom, in.Category)
	if err != nil {
		return 0, 0, false, err
	}
	toTotal, okTo, err := d.store.CategoryTotal(ctx, in.YearTo, in.Category)
	if err != nil {
		return 0, 0, false, err
	}
	return fromTotal, toTotal, okFrom && okTo, nil
}

func (d *Dispatcher) scenarioCut(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	if in.Scope == model.ScopeCategory {
		return d.scenarioCutCategory(ctx, in)
	}
	return d.scenarioCutAll(ctx, in)
}

func (d *Dispatcher) scenarioCutAll(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	rows, err := d.store.CategoryTotals(ctx, in.Year)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	oldTotal, ok, err := d.store.YearTotal(ctx, in.Year)
	if err != nil || !ok {
		return nil, err
	}

	factor := 1 - in.CutPct/100
	newTotal := 0.0
	evidence := make([]model.Evidence, len(rows))
	for i, row := range rows {
		newAmount := row.Total * factor
		newTotal += newAmount
		saved := row.Total - newAmount
		evidence[i] = model.Evidence{
			FiscalYear: in.Year.Label(),
			Category:   row.Category,
			Amount:     newAmount,
			Prior:      model.Float64Ptr(row.Total),
			Delta:      model.Float64Ptr(-saved),
			Source:     "v_category_totals",
		}
	}
	savings := oldTotal - newTotal

	// list the top categories by savings; uniform cuts keep the total order
	ranked := make([]model.Evidence, len(evidence))
	copy(ranked, evidence)
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Prior-ranked[i].Amount > *ranked[j].Prior-ranked[j].Amount
	})
	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	lines := make([]string, len(top))
	for i, item := range top {
		lines[i] = fmt.Sprintf("- %s: old %s, new %s",
			item.Category, model.FormatMoneyN(*item.Prior, 0), model.FormatMoneyN(item.Amount, 0))
	}
	categoryText := strings.Join(lines, "\n")
	if len(evidence) > 5 {
		categoryText += "\n- Others scale similarly."
	}

	label := in.Year.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("A %s across-the-board reduction in %s would save %s and reduce the total from %s to %s. By category:\n%s\nSource: v_category_totals(%s).%s",
			formatPct(in.CutPct), label, model.FormatMoneyN(savings, 0),
			model.FormatMoneyN(oldTotal, 0), model.FormatMoneyN(newTotal, 0),
			categoryText, label, partialNote(in.Year)),
		Evidence:     evidence,
		Total:        model.Float64Ptr(newTotal),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionScenarioCut),
	}, nil
}

func (d *Dispatcher) scenarioCutCategory(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	oldCat, okCat, err := d.store.CategoryTotal(ctx, in.Year, in.Category)
	if err != nil {
		return nil, err
	}
	oldYear, okYear, err := d.store.YearTotal(ctx, in.Year)
	if err != nil {
		return nil, err
	}
	if !okCat || !okYear {
		return nil, nil
	}

	newCat := oldCat * (1 - in.CutPct/100)
	savings := oldCat - newCat
	newYear := oldYear - savings
	label := in.Year.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("A %s cut to %s in %s would save %s and reduce the total budget from %s to %s. %s would go from %s to %s. Source: v_category_totals(%s).%s",
			formatPct(in.CutPct), in.Category, label, model.FormatMoneyN(savings, 0),
			model.FormatMoneyN(oldYear, 0), model.FormatMoneyN(newYear, 0),
			in.Category, model.FormatMoneyN(oldCat, 0), model.FormatMoneyN(newCat, 0),
			label, partialNote(in.Year)),
		Evidence: []model.Evidence{
			{FiscalYear: label, Category: in.Category, Amount: newCat,
				Prior: model.Float64Ptr(oldCat), Delta: model.Float64Ptr(-savings),
				Source: "v_category_totals"},
		},
		Total:        model.Float64Ptr(newYear),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionScenarioCut),
	}, nil
}

func (d *Dispatcher) whatIf(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
	current, okCat, err := d.store.CategoryTotal(ctx, in.Year, in.Category)
	if err != nil {
		return nil, err
	}
	yearTotal, okYear, err := d.store.YearTotal(ctx, in.Year)
	if err != nil {
		return nil, err
	}
	if !okCat || !okYear || yearTotal == 0 {
		return nil, nil
	}

	var newTotal float64
	var changeText string
	if in.ScenarioType == model.ScenarioIncrease {
		newTotal = current * (1 + in.PercentageChange/100)
		changeText = "increased"
	} else {
		newTotal = current * (1 - in.PercentageChange/100)
		changeText = "decreased"
	}
	changeAmount := abs(newTotal - current)

	// the share comparison holds the year denominator fixed
	currentPct := current / yearTotal * 100
	newPct := newTotal / yearTotal * 100
	label := in.Year.Label()
	return &model.ResultEnvelope{
		Answer: fmt.Sprintf("If %s %s by %s in %s: New total would be %s (change of %s). This would change its share from %s to %s of the total budget. Source: v_category_totals(%s).%s",
			in.Category, changeText, formatPct(in.PercentageChange), label,
			model.FormatMoneyN(newTotal, 0), model.FormatMoneyN(changeAmount, 0),
			model.FormatPercent(currentPct), model.FormatPercent(newPct),
			label, partialNote(in.Year)),
		Evidence: []model.Evidence{
			{FiscalYear: label, Category: in.Category, Amount: newTotal,
				Prior:   model.Float64Ptr(current),
				Delta:   model.Float64Ptr(newTotal - current),
				Percent: model.Float64Ptr(newPct),
				Source:  "v_category_totals"},
		},
		Total:        model.Float64Ptr(newTotal),
		Filters:      model.ParamsFromIntent(in),
		QuestionType: string(model.ActionWhatIfScenario),
	}, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// formatPct renders a percentage without trailing zeros, e.g. "10%".
func formatPct(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".") + "%"
}
