package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landover-agents/server/internal/agent/model"
)

func TestParseIntentResponsePlainJSON(t *testing.T) {
	in, err := ParseIntentResponse(`{"action":"year_total","year":"FY25"}`)
	require.NoError(t, err)
	assert.Equal(t, model.ActionYearTotal, in.Action)
	assert.Equal(t, model.FiscalYear(2025), in.Year)
}

func TestParseIntentResponseCodeFence(t *testing.T) {
	content := "Here is the intent:\n```json\n{\"action\":\"category_share\",\"year\":\"fy 26\",\"category\":\"taxes\"}\n```\nDone."
	in, err := ParseIntentResponse(content)
	require.NoError(t, err)
	assert.Equal(t, model.ActionCategoryShare, in.Action)
	assert.Equal(t, model.FiscalYear(2026), in.Year)
	assert.Equal(t, "TAXES", in.Category)
	assert.True(t, in.PartialData)
}

func TestParseIntentResponseAppliesNormalization(t *testing.T) {
	in, err := ParseIntentResponse(`{"action":"category_rank"}`)
	require.NoError(t, err)
	assert.Equal(t, model.LatestCompleteYear, in.Year)
	assert.Equal(t, 10, in.TopN)
}

func TestParseIntentResponseYearForms(t *testing.T) {
	in, err := ParseIntentResponse(`{"action":"yoy_difference","year_from":"2024","year_to":"FY25"}`)
	require.NoError(t, err)
	assert.Equal(t, model.FiscalYear(2024), in.YearFrom)
	assert.Equal(t, model.FiscalYear(2025), in.YearTo)
}

func TestParseIntentResponseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no object", "sorry, I cannot help"},
		{"unbalanced", `{"action":"year_total"`},
		{"unknown action", `{"action":"fly_to_moon"}`},
		{"year out of range", `{"action":"year_total","year":"FY19"}`},
		{"garbage year", `{"action":"year_total","year":"soon"}`},
		{"invalid scenario", `{"action":"scenario_cut","cut_pct":150,"scope":"all"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseIntentResponse(tt.content)
			require.Error(t, err)
			assert.Nil(t, in)
		})
	}
}

func TestParseIntentResponseTruncatesOversizedContent(t *testing.T) {
	content := `{"action":"year_total","year":"FY25"}` + strings.Repeat(" ", maxContentLen)
	in, err := ParseIntentResponse(content)
	require.NoError(t, err)
	assert.Equal(t, model.ActionYearTotal, in.Action)
}

func TestExtractJSONObjectNested(t *testing.T) {
	body, err := extractJSONObject(`prefix {"a":{"b":"}"},"c":1} suffix`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":"}"},"c":1}`, body)
}
