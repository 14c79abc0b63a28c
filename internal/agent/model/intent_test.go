package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeYearTotalDefaultsToLatestComplete(t *testing.T) {
	in := &StructuredIntent{Action: ActionYearTotal}
	in.Normalize()
	assert.Equal(t, LatestCompleteYear, in.Year)
	assert.False(t, in.PartialData)
}

func TestNormalizeYoYDefaults(t *testing.T) {
	t.Run("both years missing", func(t *testing.T) {
		in := &StructuredIntent{Action: ActionYoYDifference}
		in.Normalize()
		assert.Equal(t, MinYear, in.YearFrom)
		assert.Equal(t, LatestCompleteYear, in.YearTo)
	})

	t.Run("lone year is the target", func(t *testing.T) {
		in := &StructuredIntent{Action: ActionYoYDifference, YearFrom: 2025}
		in.Normalize()
		assert.Equal(t, FiscalYear(2024), in.YearFrom)
		assert.Equal(t, FiscalYear(2025), in.YearTo)
	})

	t.Run("lone earliest year pairs forward", func(t *testing.T) {
		in := &StructuredIntent{Action: ActionYoYDifference, YearFrom: MinYear}
		in.Normalize()
		assert.Equal(t, MinYear, in.YearFrom)
		assert.Equal(t, MinYear+1, in.YearTo)
	})
}

func TestNormalizePercentChangeCategoryDefault(t *testing.T) {
	in := &StructuredIntent{Action: ActionPercentChange}
	in.Normalize()
	assert.Equal(t, "TAXES", in.Category)
}

func TestNormalizeRankAndShareDefaults(t *testing.T) {
	rank := &StructuredIntent{Action: ActionCategoryRank}
	rank.Normalize()
	assert.Equal(t, 10, rank.TopN)
	assert.Equal(t, LatestCompleteYear, rank.Year)

	share := &StructuredIntent{Action: ActionCategoryShare}
	share.Normalize()
	assert.Equal(t, "TAXES", share.Category)
}

func TestNormalizeScenarioScopeFromCategory(t *testing.T) {
	cut := &StructuredIntent{Action: ActionScenarioCut, Category: "police department", CutPct: 10}
	cut.Normalize()
	assert.Equal(t, ScopeCategory, cut.Scope)
	assert.Equal(t, "POLICE DEPARTMENT", cut.Category)

	all := &StructuredIntent{Action: ActionScenarioCut, CutPct: 10}
	all.Normalize()
	assert.Equal(t, ScopeAll, all.Scope)
}

func TestNormalizeSetsPartialData(t *testing.T) {
	in := &StructuredIntent{Action: ActionYearTotal, Year: PartialYear}
	in.Normalize()
	assert.True(t, in.PartialData)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		in   StructuredIntent
	}{
		{"unknown action", StructuredIntent{Action: "explode"}},
		{"year out of range", StructuredIntent{Action: ActionYearTotal, Year: 2010}},
		{"cut pct zero", StructuredIntent{Action: ActionScenarioCut, Year: 2025, Scope: ScopeAll}},
		{"cut pct full", StructuredIntent{Action: ActionScenarioCut, Year: 2025, Scope: ScopeAll, CutPct: 100}},
		{"category cut without category", StructuredIntent{Action: ActionScenarioCut, Year: 2025, Scope: ScopeCategory, CutPct: 10}},
		{"what if without category", StructuredIntent{Action: ActionWhatIfScenario, Year: 2025, PercentageChange: 10, ScenarioType: ScenarioIncrease}},
		{"what if without pct", StructuredIntent{Action: ActionWhatIfScenario, Year: 2025, Category: "TAXES", ScenarioType: ScenarioIncrease}},
		{"line item without item", StructuredIntent{Action: ActionLineItemTotal, Year: 2025, Category: "TAXES"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.in.Validate())
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	in := &StructuredIntent{Action: ActionScenarioCut, Year: 2025, Scope: ScopeAll, CutPct: 10}
	require.NoError(t, in.Validate())
}

func TestYearsTouched(t *testing.T) {
	in := &StructuredIntent{Action: ActionPercentChange, YearFrom: 2024, YearTo: 2025}
	assert.Equal(t, []FiscalYear{2024, 2025}, in.YearsTouched())
}
