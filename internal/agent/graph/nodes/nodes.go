package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/landover-agents/server/internal/agent/classify"
	"github.com/landover-agents/server/internal/agent/dispatch"
	"github.com/landover-agents/server/internal/agent/extract"
	"github.com/landover-agents/server/internal/agent/fallback"
	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/resolve"
	logx "github.com/landover-agents/server/pkg/logger"
)

// Node names used when wiring the answer graph.
const (
	NodeIntentResolver = "IntentResolver"
	NodeDispatcher     = "Dispatcher"
	NodeFallbackChain  = "FallbackChain"
)

// NewIntentResolverPreHandler seeds per-question state before resolution.
func NewIntentResolverPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.Question = in.Question
		s.Filters = extract.Filters(in.Question)
		s.QuestionType = classify.Question(in.Question)
		// Reset accumulated total cost for each new question
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewIntentResolverNode creates the IntentResolver node. Resolution never
// fails; the worst case is a help intent.
func NewIntentResolverNode(resolver *resolve.Resolver) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (*model.StructuredIntent, error) {
		in := resolver.Resolve(ctx, input.Question)
		if in == nil {
			return nil, fmt.Errorf("resolver returned nil intent")
		}
		// in.Question carries the help intent's clarifying text; the raw user
		// question lives in state, so nothing gets written over it here.
		return in, nil
	})
}

// NewIntentResolverPostHandler stores the resolved intent in state.
func NewIntentResolverPostHandler() func(context.Context, *model.StructuredIntent, *model.AppState) (*model.StructuredIntent, error) {
	return func(ctx context.Context, out *model.StructuredIntent, state *model.AppState) (*model.StructuredIntent, error) {
		state.Intent = out
		logx.Debug().
			Str("action", string(out.Action)).
			Str("question_type", string(state.QuestionType)).
			Msg("intent stored in state")
		return out, nil
	}
}

// NewDispatcherNode creates the Dispatcher node. Store failures are logged
// and surfaced as an absent envelope so the fallback chain still runs.
func NewDispatcherNode(dispatcher *dispatch.Dispatcher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.StructuredIntent) (*model.ResultEnvelope, error) {
		env, err := dispatcher.Execute(ctx, in)
		if err != nil {
			logx.Warn().Err(err).Str("action", string(in.Action)).Msg("dispatch failed, falling back")
			return nil, nil
		}
		if env == nil {
			logx.Debug().Str("action", string(in.Action)).Msg("no structured answer, falling back")
		}
		return env, nil
	})
}

// NewAnsweredCondition routes answered envelopes straight to the end and
// everything else to the fallback chain.
func NewAnsweredCondition() func(context.Context, *model.ResultEnvelope) (string, error) {
	return func(ctx context.Context, input *model.ResultEnvelope) (string, error) {
		if input != nil {
			return compose.END, nil
		}
		return NodeFallbackChain, nil
	}
}

// NewFallbackChainNode creates the FallbackChain node. The question comes
// from state since the dispatcher output carries nothing on this path.
func NewFallbackChainNode(chain *fallback.Chain) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *model.ResultEnvelope) (*model.ResultEnvelope, error) {
		var question string
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			question = state.Question
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return chain.Answer(ctx, question)
	})
}
