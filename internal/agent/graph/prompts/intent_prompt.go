package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/landover-agents/server/internal/agent/model"
)

//go:embed template/intent_prompt.txt
var intentSystemPrompt string

// RenderIntentMessages renders the intent-resolution prompt via the Eino
// prompt component (so Prompt callbacks fire) and returns the system + user
// message pair for the resolver model.
func RenderIntentMessages(ctx context.Context, question string) ([]*schema.Message, error) {
	years := []model.FiscalYear{model.MinYear, model.LatestCompleteYear, model.PartialYear}
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = fmt.Sprintf("%q", y.Label())
	}

	// Replace known tokens only; the template body is full of JSON braces.
	content := strings.NewReplacer(
		"{allowed_years}", "["+strings.Join(labels, ",")+"]",
		"{latest_complete}", fmt.Sprintf("%q", model.LatestCompleteYear.Label()),
		"{partial_year}", fmt.Sprintf("%q", model.PartialYear.Label()),
	).Replace(intentSystemPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return nil, fmt.Errorf("intent prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("intent prompt callbacks: empty result")
	}

	return []*schema.Message{
		schema.SystemMessage(msgs[0].Content),
		schema.UserMessage(question),
	}, nil
}
