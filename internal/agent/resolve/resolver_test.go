package resolve

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

// stubChatModel replays a fixed reply or error.
type stubChatModel struct {
	reply *schema.Message
	err   error
	calls int
}

func (s *stubChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestResolveUsesModelTier(t *testing.T) {
	stub := &stubChatModel{
		reply: schema.AssistantMessage(`{"action":"category_share","year":"FY25","category":"TAXES"}`, nil),
	}
	r := New(stub, "gemini-2.5-flash-lite")

	in := r.Resolve(context.Background(), "What percentage of FY25 came from taxes?")
	require.Equal(t, model.ActionCategoryShare, in.Action)
	assert.Equal(t, model.FiscalYear(2025), in.Year)
	assert.Equal(t, 1, stub.calls)
}

func TestResolveFallsBackOnModelError(t *testing.T) {
	stub := &stubChatModel{err: errors.New("quota exceeded")}
	r := New(stub, "gemini-2.5-flash-lite")

	in := r.Resolve(context.Background(), "What is the total budget for FY25?")
	require.Equal(t, model.ActionYearTotal, in.Action)
	assert.Equal(t, model.FiscalYear(2025), in.Year)
}

func TestResolveFallsBackOnUnparseableReply(t *testing.T) {
	stub := &stubChatModel{reply: schema.AssistantMessage("I do not know.", nil)}
	r := New(stub, "gemini-2.5-flash-lite")

	in := r.Resolve(context.Background(), "Which department received the most funding in FY25?")
	require.Equal(t, model.ActionCategoryRank, in.Action)
	assert.Equal(t, 5, in.TopN)
}

func TestResolveWithoutModelUsesRules(t *testing.T) {
	r := New(nil, "")
	in := r.Resolve(context.Background(), "nonsense question")
	assert.Equal(t, model.ActionHelp, in.Action)
}
