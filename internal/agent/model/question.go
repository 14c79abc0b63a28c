package model

// QuestionType is the classifier label that picks the composer tone.
type QuestionType string

const (
	QTotalsAndAggregates   QuestionType = "totals_and_aggregates"
	QCategoryComparisons   QuestionType = "category_comparisons"
	QLineItemDetails       QuestionType = "line_item_details"
	QTrendAnalysis         QuestionType = "trend_analysis"
	QCrossYearComparisons  QuestionType = "cross_year_comparisons"
	QBreakdownsShares      QuestionType = "breakdowns_shares"
	QPartialFY26Data       QuestionType = "partial_fy26_data"
	QCustomFilters         QuestionType = "custom_filters"
	QNaturalLanguageTrends QuestionType = "natural_language_trends"
	QWhatIfHypothetical    QuestionType = "what_if_hypothetical"
	QGeneral               QuestionType = "general"
)

func (q QuestionType) String() string {
	return string(q)
}
