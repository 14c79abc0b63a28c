// Package composer turns an evidence envelope into a final natural-language
// answer. The chat model writes the sentence when one is configured; every
// failure path falls back to a deterministic phrasing so the pipeline never
// returns an empty answer.
package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/landover-agents/server/internal/agent/classify"
	"github.com/landover-agents/server/internal/agent/graph/prompts"
	"github.com/landover-agents/server/internal/agent/model"
	logx "github.com/landover-agents/server/pkg/logger"
)

// Composer writes answers over collected evidence.
type Composer struct {
	chatModel einomodel.BaseChatModel // nil forces deterministic answers
	modelName string
}

// New builds a Composer. A nil chat model is valid and keeps every answer
// deterministic.
func New(chatModel einomodel.BaseChatModel, modelName string) *Composer {
	return &Composer{chatModel: chatModel, modelName: modelName}
}

// Compose returns a single-sentence answer for the envelope.
func (c *Composer) Compose(ctx context.Context, question string, env *model.ResultEnvelope) string {
	return c.compose(ctx, question, env, true)
}

// DetailedInsights returns an expanded, multi-point answer for the envelope.
func (c *Composer) DetailedInsights(ctx context.Context, question string, env *model.ResultEnvelope) string {
	return c.compose(ctx, question, env, false)
}

func (c *Composer) compose(ctx context.Context, question string, env *model.ResultEnvelope, concise bool) string {
	if c.chatModel != nil {
		answer, err := c.composeWithModel(ctx, question, env, concise)
		if err != nil {
			logx.Warn().Err(err).Msg("composer model failed, using deterministic answer")
		} else if answer != "" {
			return answer
		}
	}
	if concise {
		return deterministicAnswer(env)
	}
	return deterministicInsights(env)
}

func (c *Composer) composeWithModel(ctx context.Context, question string, env *model.ResultEnvelope, concise bool) (string, error) {
	qt := model.QuestionType(env.QuestionType)
	if qt == "" {
		qt = classify.Question(question)
	}
	system, err := prompts.RenderComposerSystem(ctx, qt, env.Total, concise)
	if err != nil {
		return "", err
	}

	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(userContent(question, env)),
	}
	reply, err := c.chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("composer generate: %w", err)
	}
	model.LogUsage(ctx, reply, c.modelName)
	return strings.TrimSpace(reply.Content), nil
}

// userContent assembles the question, total, filters, and numbered evidence
// context for the composer model.
func userContent(question string, env *model.ResultEnvelope) string {
	parts := []string{"Question: " + question}
	if env.Total != nil {
		parts = append(parts, "Total: "+model.FormatMoneyN(*env.Total, 2))
	}
	if filters, err := json.Marshal(env.Filters); err == nil {
		parts = append(parts, "Filters Applied: "+string(filters))
	}
	if len(env.Evidence) > 0 {
		lines := make([]string, 0, len(env.Evidence)+1)
		lines = append(lines, "Evidence:")
		for i, ev := range env.Evidence {
			lines = append(lines, fmt.Sprintf("[%d] %s • %s\n%s", i+1, ev.FiscalYear, ev.Category, evidenceText(ev)))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func evidenceText(ev model.Evidence) string {
	if ev.Excerpt != "" {
		return ev.Excerpt
	}
	label := ev.Category
	if ev.LineItem != "" {
		label += " " + ev.LineItem
	}
	return fmt.Sprintf("%s: %s", label, model.FormatMoneyN(ev.Amount, 2))
}

// deterministicAnswer phrases the envelope without any model call.
func deterministicAnswer(env *model.ResultEnvelope) string {
	if env.Total != nil {
		total := model.FormatMoneyN(*env.Total, 2)
		var parts []string
		if env.Filters.Department != "" {
			parts = append(parts, model.TitleCategory(env.Filters.Department))
		}
		if env.Filters.Year != "" {
			parts = append(parts, env.Filters.Year)
		}
		switch len(parts) {
		case 1:
			return fmt.Sprintf("The total budget for %s is %s.", parts[0], total)
		case 2:
			return fmt.Sprintf("The total budget for %s in %s is %s.", parts[0], parts[1], total)
		default:
			return fmt.Sprintf("The total budget is %s.", total)
		}
	}
	if len(env.Evidence) > 0 {
		return "Based on the available data, here are the relevant findings for your question."
	}
	return "I couldn't find specific data matching your question."
}

// deterministicInsights expands the envelope into a short by-category list.
func deterministicInsights(env *model.ResultEnvelope) string {
	if len(env.Evidence) == 0 {
		return deterministicAnswer(env)
	}
	lines := []string{deterministicAnswer(env), "", "Key figures:"}
	for _, ev := range env.Evidence {
		line := fmt.Sprintf("- %s: %s", model.TitleCategory(ev.Category), model.FormatMoneyN(ev.Amount, 2))
		if ev.Percent != nil {
			line += fmt.Sprintf(" (%s)", model.FormatPercent(*ev.Percent))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
