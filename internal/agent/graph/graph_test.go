package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landover-agents/server/internal/agent/fallback"
	"github.com/landover-agents/server/internal/agent/model"
)

// stubStore backs all three store interfaces with a year-total map.
type stubStore struct {
	yearTotals map[model.FiscalYear]float64
}

func (s *stubStore) YearTotal(_ context.Context, year model.FiscalYear) (float64, bool, error) {
	total, ok := s.yearTotals[year]
	return total, ok, nil
}

func (s *stubStore) YearYoY(_ context.Context) ([]model.YearYoYRow, error) { return nil, nil }

func (s *stubStore) CategoryTotals(_ context.Context, _ model.FiscalYear) ([]model.CategoryTotalRow, error) {
	return nil, nil
}

func (s *stubStore) CategoryTotal(_ context.Context, _ model.FiscalYear, _ string) (float64, bool, error) {
	return 0, false, nil
}

func (s *stubStore) CategoryShare(_ context.Context, _ model.FiscalYear, _ string) (*model.CategoryShareRow, error) {
	return nil, nil
}

func (s *stubStore) LineItemTotal(_ context.Context, _ model.FiscalYear, _, _ string) (float64, bool, error) {
	return 0, false, nil
}

func (s *stubStore) CategoryYoY(_ context.Context, _ model.FiscalYear, _ string) (*model.CategoryYoYRow, error) {
	return nil, nil
}

func (s *stubStore) SumFacts(_ context.Context, _ model.FilterSet) (float64, int, []model.Evidence, error) {
	return 0, 0, nil, nil
}

func (s *stubStore) SearchByEmbedding(_ context.Context, _ []float64, _ int) ([]model.Evidence, error) {
	return nil, nil
}

func (s *stubStore) SearchByKeywords(_ context.Context, _ *model.FiscalYear, _ string, _ []string, _ int) ([]model.Evidence, error) {
	return nil, nil
}

// newRunner compiles the graph with deterministic tiers only: no chat
// models, no embedder, no cache.
func newRunner(t *testing.T, store *stubStore) Runner {
	t.Helper()
	runner, err := BuildAnswerGraph(context.Background(), Config{
		Aggregates: store,
		Facts:      store,
		Excerpts:   store,
	})
	require.NoError(t, err)
	return runner
}

func TestAskAnswersYearTotal(t *testing.T) {
	runner := newRunner(t, &stubStore{
		yearTotals: map[model.FiscalYear]float64{2025: 22_000_000},
	})

	env, err := runner.Ask(context.Background(), model.QueryInput{Question: "What is the total budget for FY25?"})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "Total FY25 budget: $22,000,000. Source: v_year_totals(FY25).", env.Answer)
}

func TestAskCarriesClarifyingQuestionThrough(t *testing.T) {
	runner := newRunner(t, &stubStore{})

	// A targeted cut without a recognized category resolves to a help
	// intent whose Question holds the clarifying text; the answer must be
	// that text, not an echo of the user's question.
	env, err := runner.Ask(context.Background(), model.QueryInput{Question: "Cut the budget by 10%"})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "Which category should the cut apply to?", env.Answer)
	assert.Equal(t, string(model.ActionHelp), env.QuestionType)
}

func TestAskUnmatchedQuestionGetsHelpText(t *testing.T) {
	runner := newRunner(t, &stubStore{})

	env, err := runner.Ask(context.Background(), model.QueryInput{Question: "Tell me a story"})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, model.HelpText, env.Answer)
}

func TestAskFallsBackWhenDataAbsent(t *testing.T) {
	runner := newRunner(t, &stubStore{})

	env, err := runner.Ask(context.Background(), model.QueryInput{Question: "What is the total budget for FY24?"})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, fallback.NoDataAnswer, env.Answer)
}
