package composer

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landover-agents/server/internal/agent/model"
)

type stubChatModel struct {
	reply *schema.Message
	err   error
}

func (s *stubChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	return s.reply, s.err
}

func (s *stubChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestComposeDeterministicPhrasings(t *testing.T) {
	c := New(nil, "")
	ctx := context.Background()

	tests := []struct {
		name string
		env  *model.ResultEnvelope
		want string
	}{
		{
			name: "total with department and year",
			env: &model.ResultEnvelope{
				Total:   model.Float64Ptr(4_400_000),
				Filters: model.Params{Department: "POLICE DEPARTMENT", Year: "FY25"},
			},
			want: "The total budget for Police Department in FY25 is $4,400,000.00.",
		},
		{
			name: "total with year only",
			env: &model.ResultEnvelope{
				Total:   model.Float64Ptr(22_000_000),
				Filters: model.Params{Year: "FY25"},
			},
			want: "The total budget for FY25 is $22,000,000.00.",
		},
		{
			name: "total without filters",
			env:  &model.ResultEnvelope{Total: model.Float64Ptr(100)},
			want: "The total budget is $100.00.",
		},
		{
			name: "evidence only",
			env:  &model.ResultEnvelope{Evidence: []model.Evidence{{Excerpt: "x"}}},
			want: "Based on the available data, here are the relevant findings for your question.",
		},
		{
			name: "nothing",
			env:  &model.ResultEnvelope{},
			want: "I couldn't find specific data matching your question.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Compose(ctx, "q", tt.env))
		})
	}
}

func TestComposeUsesModelReply(t *testing.T) {
	c := New(&stubChatModel{
		reply: schema.AssistantMessage("The police budget grew to $4.4M in FY25.", nil),
	}, "gemini-2.5-flash")

	got := c.Compose(context.Background(), "how much police", &model.ResultEnvelope{
		Total:        model.Float64Ptr(4_400_000),
		QuestionType: "totals_and_aggregates",
	})
	assert.Equal(t, "The police budget grew to $4.4M in FY25.", got)
}

func TestComposeFallsBackOnModelError(t *testing.T) {
	c := New(&stubChatModel{err: errors.New("quota exceeded")}, "gemini-2.5-flash")

	got := c.Compose(context.Background(), "total", &model.ResultEnvelope{
		Total:   model.Float64Ptr(100),
		Filters: model.Params{Year: "FY25"},
	})
	assert.Equal(t, "The total budget for FY25 is $100.00.", got)
}

func TestDetailedInsightsDeterministic(t *testing.T) {
	c := New(nil, "")
	env := &model.ResultEnvelope{
		Total: model.Float64Ptr(16_400_000),
		Evidence: []model.Evidence{
			{Category: "TAXES", Amount: 12_000_000, Percent: model.Float64Ptr(73.2)},
			{Category: "POLICE DEPARTMENT", Amount: 4_400_000},
		},
	}
	got := c.DetailedInsights(context.Background(), "breakdown", env)
	assert.Contains(t, got, "The total budget is $16,400,000.00.")
	assert.Contains(t, got, "- Taxes: $12,000,000.00 (73.2%)")
	assert.Contains(t, got, "- Police Department: $4,400,000.00")
}

func TestUserContentIncludesEvidence(t *testing.T) {
	env := &model.ResultEnvelope{
		Total: model.Float64Ptr(100),
		Evidence: []model.Evidence{
			{FiscalYear: "FY25", Category: "TAXES", Excerpt: "tax collections rose"},
		},
	}
	content := userContent("what happened", env)
	assert.Contains(t, content, "Question: what happened")
	assert.Contains(t, content, "Total: $100.00")
	require.Contains(t, content, "[1] FY25 • TAXES\ntax collections rose")
}
