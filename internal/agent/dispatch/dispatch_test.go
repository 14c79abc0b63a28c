package dispatch

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landover-agents/server/internal/agent/model"
)

// stubStore serves fixed aggregates from maps.
type stubStore struct {
	yearTotals map[model.FiscalYear]float64
	catTotals  map[model.FiscalYear]map[string]float64
	shares     map[string]*model.CategoryShareRow // key category, one year is enough
	catYoY     map[string]*model.CategoryYoYRow
}

func (s *stubStore) YearTotal(_ context.Context, year model.FiscalYear) (float64, bool, error) {
	total, ok := s.yearTotals[year]
	return total, ok, nil
}

func (s *stubStore) YearYoY(_ context.Context) ([]model.YearYoYRow, error) {
	years := make([]model.FiscalYear, 0, len(s.yearTotals))
	for y := range s.yearTotals {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	var rows []model.YearYoYRow
	var prev *float64
	for _, y := range years {
		total := s.yearTotals[y]
		row := model.YearYoYRow{Year: y, Total: total}
		if prev != nil {
			row.Change = model.Float64Ptr(total - *prev)
		}
		prev = model.Float64Ptr(total)
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *stubStore) CategoryTotals(_ context.Context, year model.FiscalYear) ([]model.CategoryTotalRow, error) {
	cats := s.catTotals[year]
	var rows []model.CategoryTotalRow
	for c, total := range cats {
		rows = append(rows, model.CategoryTotalRow{Year: year, Category: c, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

func (s *stubStore) CategoryTotal(_ context.Context, year model.FiscalYear, category string) (float64, bool, error) {
	total, ok := s.catTotals[year][category]
	return total, ok, nil
}

func (s *stubStore) CategoryShare(_ context.Context, _ model.FiscalYear, category string) (*model.CategoryShareRow, error) {
	return s.shares[category], nil
}

func (s *stubStore) LineItemTotal(_ context.Context, year model.FiscalYear, category, lineItem string) (float64, bool, error) {
	if year == 2025 && category == "POLICE DEPARTMENT" && lineItem == "overtime" {
		return 510_000, true, nil
	}
	return 0, false, nil
}

func (s *stubStore) CategoryYoY(_ context.Context, _ model.FiscalYear, category string) (*model.CategoryYoYRow, error) {
	return s.catYoY[category], nil
}

func newStubStore() *stubStore {
	return &stubStore{
		yearTotals: map[model.FiscalYear]float64{
			2024: 20_000_000,
			2025: 22_000_000,
			2026: 9_000_000,
		},
		catTotals: map[model.FiscalYear]map[string]float64{
			2024: {
				"TAXES":             11_000_000,
				"POLICE DEPARTMENT": 4_000_000,
				"PUBLIC WORKS":      2_500_000,
				"ADMINISTRATION":    1_500_000,
				"GRANTS":            1_000_000,
			},
			2025: {
				"TAXES":             12_000_000,
				"POLICE DEPARTMENT": 4_400_000,
				"PUBLIC WORKS":      2_600_000,
				"ADMINISTRATION":    1_600_000,
				"GRANTS":            1_100_000,
				"ELECTIONS":         300_000,
			},
		},
	}
}

func exec(t *testing.T, store model.AggregateStore, in *model.StructuredIntent) *model.ResultEnvelope {
	t.Helper()
	in.Normalize()
	require.NoError(t, in.Validate())
	env, err := New(store).Execute(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, env)
	return env
}

func TestYearTotal(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{Action: model.ActionYearTotal, Year: 2025})
	assert.Equal(t, "Total FY25 budget: $22,000,000. Source: v_year_totals(FY25).", env.Answer)
	require.NotNil(t, env.Total)
	assert.Equal(t, 22_000_000.0, *env.Total)
	assert.Equal(t, "year_total", env.QuestionType)
}

func TestYearTotalPartialYearNote(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{Action: model.ActionYearTotal, Year: 2026})
	assert.True(t, strings.HasSuffix(env.Answer, " Note: FY26 data is partial."), env.Answer)
	assert.True(t, env.Filters.PartialData)
}

func TestYearTotalAbsent(t *testing.T) {
	store := newStubStore()
	delete(store.yearTotals, 2024)
	in := &model.StructuredIntent{Action: model.ActionYearTotal, Year: 2024}
	in.Normalize()
	env, err := New(store).Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestYoYDifference(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionYoYDifference, YearFrom: 2024, YearTo: 2025,
	})
	assert.Equal(t,
		"Change from FY24 to FY25: $2,000,000 ($20,000,000 -> $22,000,000). Source: v_year_yoy.",
		env.Answer)
	assert.Len(t, env.Evidence, 2)
}

func TestYoYAll(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{Action: model.ActionYoYAll})
	assert.Contains(t, env.Answer, "FY24: base $20,000,000")
	assert.Contains(t, env.Answer, "FY25: +$2,000,000 (total $22,000,000)")
	assert.Contains(t, env.Answer, "FY26: -$13,000,000 (total $9,000,000)")
	assert.Contains(t, env.Answer, "Note: FY26 data is partial.")
}

func TestCategoryRankTruncatesToTopN(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionCategoryRank, Year: 2025, TopN: 3,
	})
	assert.Contains(t, env.Answer, "1. TAXES: $12,000,000")
	assert.Contains(t, env.Answer, "3. PUBLIC WORKS: $2,600,000")
	assert.NotContains(t, env.Answer, "ELECTIONS")
	assert.Len(t, env.Evidence, 3)
	assert.Contains(t, env.Answer, "Source: v_category_totals(FY25).")
}

func TestCategoryShareFromView(t *testing.T) {
	store := newStubStore()
	store.shares = map[string]*model.CategoryShareRow{
		"TAXES": {Year: 2025, Category: "TAXES", Total: 12_000_000, PctOfYear: 54.5},
	}
	env := exec(t, store, &model.StructuredIntent{
		Action: model.ActionCategoryShare, Year: 2025, Category: "TAXES",
	})
	assert.Equal(t,
		"TAXES in FY25: $12,000,000 (54.5% of total). Source: v_category_shares(FY25).",
		env.Answer)
}

func TestCategoryShareManualFallback(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionCategoryShare, Year: 2025, Category: "TAXES",
	})
	// 12M / 22M = 54.5 after rounding to one decimal
	assert.Contains(t, env.Answer, "(54.5% of total)")
	assert.Contains(t, env.Answer, "Source: v_category_totals(FY25).")
}

func TestCategoryShareZeroDenominator(t *testing.T) {
	store := newStubStore()
	store.yearTotals[2025] = 0
	in := &model.StructuredIntent{Action: model.ActionCategoryShare, Year: 2025, Category: "TAXES"}
	in.Normalize()
	env, err := New(store).Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestLineItemTotal(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionLineItemTotal, Year: 2025,
		Category: "POLICE DEPARTMENT", LineItem: "overtime",
	})
	assert.Equal(t,
		"FY25 POLICE DEPARTMENT -> overtime: $510,000. Source: v_line_items.",
		env.Answer)
}

func TestPercentChange(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionPercentChange, YearFrom: 2024, YearTo: 2025,
		Category: "POLICE DEPARTMENT",
	})
	assert.Contains(t, env.Answer, "changed by 10.0%")
	assert.Contains(t, env.Answer, "Source: v_category_totals(FY24,FY25).")
	require.Len(t, env.Evidence, 1)
	require.NotNil(t, env.Evidence[0].Percent)
	assert.InDelta(t, 10.0, *env.Evidence[0].Percent, 1e-9)
}

func TestPercentChangePrefersYoYView(t *testing.T) {
	store := newStubStore()
	store.catYoY = map[string]*model.CategoryYoYRow{
		"TAXES": {Year: 2025, Category: "TAXES", Total: 12_000_000,
			PrevTotal: 11_000_000, ChangeAmount: 1_000_000,
			ChangePct: model.Float64Ptr(9.1)},
	}
	env := exec(t, store, &model.StructuredIntent{
		Action: model.ActionPercentChange, YearFrom: 2024, YearTo: 2025, Category: "TAXES",
	})
	assert.Contains(t, env.Answer, "changed by 9.1%")
}

func TestPercentChangeZeroCases(t *testing.T) {
	store := newStubStore()
	store.catTotals[2024]["ELECTIONS"] = 0
	store.catTotals[2025]["ELECTIONS"] = 0
	env := exec(t, store, &model.StructuredIntent{
		Action: model.ActionPercentChange, YearFrom: 2024, YearTo: 2025, Category: "ELECTIONS",
	})
	assert.Contains(t, env.Answer, "changed by 0.0%")

	store.catTotals[2025]["ELECTIONS"] = 300_000
	env = exec(t, store, &model.StructuredIntent{
		Action: model.ActionPercentChange, YearFrom: 2024, YearTo: 2025, Category: "ELECTIONS",
	})
	assert.Contains(t, env.Answer, "not defined (no prior amount) - absolute change: $300,000")
}

func TestScenarioCutAll(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionScenarioCut, Year: 2025, Scope: model.ScopeAll, CutPct: 10,
	})
	assert.Contains(t, env.Answer, "A 10% across-the-board reduction in FY25 would save $2,200,000")
	assert.Contains(t, env.Answer, "reduce the total from $22,000,000 to $19,800,000")
	assert.Contains(t, env.Answer, "- TAXES: old $12,000,000, new $10,800,000")
	// six categories, only five listed
	assert.Contains(t, env.Answer, "- Others scale similarly.")
	assert.Len(t, env.Evidence, 6)
}

func TestScenarioCutCategory(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionScenarioCut, Year: 2025, Scope: model.ScopeCategory,
		Category: "POLICE DEPARTMENT", CutPct: 10,
	})
	assert.Contains(t, env.Answer, "A 10% cut to POLICE DEPARTMENT in FY25 would save $440,000")
	assert.Contains(t, env.Answer, "from $22,000,000 to $21,560,000")
	assert.Contains(t, env.Answer, "POLICE DEPARTMENT would go from $4,400,000 to $3,960,000")
}

func TestWhatIfDecreaseHoldsDenominatorFixed(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionWhatIfScenario, Year: 2025, Category: "POLICE DEPARTMENT",
		PercentageChange: 10, ScenarioType: model.ScenarioDecrease,
	})
	assert.Contains(t, env.Answer, "If POLICE DEPARTMENT decreased by 10% in FY25")
	assert.Contains(t, env.Answer, "New total would be $3,960,000 (change of $440,000)")
	// shares computed against the unchanged 22M year total
	assert.Contains(t, env.Answer, "from 20.0% to 18.0%")
	assert.Contains(t, env.Answer, "Source: v_category_totals(FY25).")
}

func TestWhatIfIncrease(t *testing.T) {
	env := exec(t, newStubStore(), &model.StructuredIntent{
		Action: model.ActionWhatIfScenario, Year: 2025, Category: "GRANTS",
		PercentageChange: 20, ScenarioType: model.ScenarioIncrease,
	})
	assert.Contains(t, env.Answer, "If GRANTS increased by 20% in FY25")
	assert.Contains(t, env.Answer, "New total would be $1,320,000")
}

func TestHelp(t *testing.T) {
	env := exec(t, newStubStore(), model.HelpIntent(""))
	assert.Equal(t, model.HelpText, env.Answer)
}

func TestNilIntent(t *testing.T) {
	env, err := New(newStubStore()).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, env)
}
