package prompts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/landover-agents/server/internal/agent/model"
)

const composerBasePrompt = "You are an expert municipal budget analyst assistant. " +
	"You answer questions about municipal budgets with precision and clarity."

// conciseTones pick the single-sentence instruction per question type.
var conciseTones = map[model.QuestionType]string{
	model.QTotalsAndAggregates:   "Start with the exact total and briefly explain what it represents.",
	model.QCategoryComparisons:   "State which category received the most funding and the amount.",
	model.QLineItemDetails:       "Provide the specific amount or identify the largest line item.",
	model.QTrendAnalysis:         "State the key change and the percentage or amount difference.",
	model.QCrossYearComparisons:  "Summarize the main year-over-year change in one sentence.",
	model.QBreakdownsShares:      "State the percentage and what it represents.",
	model.QPartialFY26Data:       "Note that this is partial data and provide the available total.",
	model.QCustomFilters:         "State how many items meet the criteria and the total amount.",
	model.QNaturalLanguageTrends: "Provide a clear, one-sentence summary of the key insight.",
	model.QWhatIfHypothetical:    "State the calculated result based on the hypothetical scenario.",
}

// detailedTones pick the expanded-insights instruction per question type.
var detailedTones = map[model.QuestionType]string{
	model.QTotalsAndAggregates: "Provide detailed breakdown of the total, including major components, " +
		"percentages, and context. Always cite evidence IDs like [1], [2].",
	model.QCategoryComparisons: "Provide detailed comparisons between categories, departments, or line items. " +
		"Include rankings, percentages, and clear explanations of differences. Use evidence to support your comparisons.",
	model.QLineItemDetails: "Focus on specific line items and their details. Provide exact amounts, show the largest " +
		"items when requested, and give comprehensive lists when asked for 'all line items'.",
	model.QTrendAnalysis: "Analyze changes over time, growth patterns, and trends. Explain what drove increases " +
		"or decreases, and provide context for the changes you observe.",
	model.QCrossYearComparisons: "Compare data across different fiscal years. Highlight increases, decreases, and new " +
		"or discontinued categories. Provide year-over-year change percentages when relevant.",
	model.QBreakdownsShares: "Calculate and explain percentages, shares, and breakdowns. Provide clear rankings " +
		"(top 5, etc.) and explain what each percentage represents in the overall budget context.",
	model.QPartialFY26Data: "Handle FY26 data carefully since it may be incomplete. Clearly state what data is " +
		"available, what the partial totals represent, and note any limitations due to incomplete data.",
	model.QCustomFilters: "Apply specific filters as requested (amount thresholds, item counts, etc.). Provide " +
		"filtered lists that meet the exact criteria specified in the question.",
	model.QNaturalLanguageTrends: "Explain budget data in plain, understandable language. Summarize key insights, " +
		"explain why certain patterns exist, and provide context that helps users understand the budget structure.",
	model.QWhatIfHypothetical: "Handle hypothetical scenarios carefully. Make calculations based on the specified " +
		"changes, but clearly note that these are hypothetical projections based on current data.",
}

// RenderComposerSystem builds the composer system prompt for a question
// type and renders it through the Eino prompt component so callbacks fire.
func RenderComposerSystem(ctx context.Context, qt model.QuestionType, total *float64, concise bool) (string, error) {
	content := composerBasePrompt
	if concise {
		content += " Provide a single, clear sentence that directly answers the question. "
		if total != nil {
			content += fmt.Sprintf("The total amount is %s. ", model.FormatMoneyN(*total, 2))
		}
		tone, ok := conciseTones[qt]
		if !ok {
			tone = "Provide a direct answer."
		}
		content += tone
	} else {
		content += " " + detailedTones[qt]
		if total != nil {
			content += fmt.Sprintf(" When a total amount is provided (%s), incorporate it into your analysis.",
				model.FormatMoneyN(*total, 2))
		}
	}

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("composer prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("composer prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
