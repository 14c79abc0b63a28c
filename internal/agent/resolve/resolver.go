// Package resolve turns free-text questions into StructuredIntents. Tier 1
// asks the resolver chat model for a JSON intent; tier 2 is the ordered
// deterministic rule list. Resolution never fails: the worst case is a help
// intent.
package resolve

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/landover-agents/server/internal/agent/graph/parsers"
	"github.com/landover-agents/server/internal/agent/graph/prompts"
	"github.com/landover-agents/server/internal/agent/model"
	logx "github.com/landover-agents/server/pkg/logger"
)

// Resolver resolves questions to intents. A nil chat model skips tier 1.
type Resolver struct {
	chatModel einomodel.BaseChatModel
	modelName string
}

// New builds a Resolver. chatModel may be nil for rule-only resolution.
func New(chatModel einomodel.BaseChatModel, modelName string) *Resolver {
	return &Resolver{chatModel: chatModel, modelName: modelName}
}

// Resolve returns a normalized, validated intent for the question.
func (r *Resolver) Resolve(ctx context.Context, question string) *model.StructuredIntent {
	if in := r.resolveWithModel(ctx, question); in != nil {
		return in
	}
	return FallbackResolve(question)
}

func (r *Resolver) resolveWithModel(ctx context.Context, question string) *model.StructuredIntent {
	if r.chatModel == nil {
		return nil
	}

	msgs, err := prompts.RenderIntentMessages(ctx, question)
	if err != nil {
		logx.Warn().Err(err).Msg("intent prompt render failed, using rule resolver")
		return nil
	}

	reply, err := r.chatModel.Generate(ctx, msgs)
	if err != nil {
		logx.Warn().Err(err).Str("model", r.modelName).Msg("intent model call failed, using rule resolver")
		return nil
	}
	if reply == nil || reply.Content == "" {
		logx.Warn().Str("model", r.modelName).Msg("intent model returned empty reply, using rule resolver")
		return nil
	}

	model.LogUsage(ctx, reply, r.modelName)

	in, err := parsers.ParseIntentResponse(reply.Content)
	if err != nil {
		logx.Warn().Err(err).Msg("intent reply unparseable, using rule resolver")
		return nil
	}

	logx.Debug().
		Str("action", string(in.Action)).
		Str("category", in.Category).
		Bool("partial_data", in.PartialData).
		Msg("intent resolved by model")
	return in
}
