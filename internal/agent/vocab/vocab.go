// Package vocab holds the immutable vocabulary tables the deterministic
// components match against. Order matters everywhere: the first matching
// entry wins, so the tables are slices rather than maps.
package vocab

import "github.com/landover-agents/server/internal/agent/model"

// Synonym maps a lowercase question phrase to its canonical category.
type Synonym struct {
	Phrase    string
	Canonical string
}

// DepartmentSynonyms is checked before DepartmentPatterns so short common
// phrases resolve to the canonical database spelling.
var DepartmentSynonyms = []Synonym{
	{"police", "POLICE DEPARTMENT"},
	{"police department", "POLICE DEPARTMENT"},
	{"public works", "PUBLIC WORKS"},
	{"administration", "ADMINISTRATION"},
	{"taxes", "TAXES"},
	{"grants", "GRANTS"},
	{"professional services", "PROFESSIONAL SERVICES"},
	{"general office", "GENERAL OFFICE"},
	{"enforcement fees", "ENFORCEMENT FEES"},
	{"license fees", "LICENSE FEES"},
	{"trash removal", "TRASH REMOVAL"},
	{"misc revenues", "MISC. REVENUES"},
	{"miscellaneous grants", "MISCELLANEOUS GRANTS"},
}

// DepartmentPatterns are the canonical category names as stored, matched as
// whole words when no synonym applied.
var DepartmentPatterns = []string{
	"PUBLIC WORKS", "POLICE DEPARTMENT", "PARKS", "FINANCE", "ADMINISTRATION",
	"FIRE", "TRANSPORTATION", "ROADS", "STREETS", "WATER", "SEWER",
	"SEWAGE", "SANITATION", "GENERAL GOVERNMENT", "PLANNING", "RECREATION",
	"LIBRARY", "HEALTH", "SOCIAL SERVICES", "EMERGENCY", "UTILITIES",
	"PUBLIC SAFETY", "COMMUNITY DEVELOPMENT", "HUMAN RESOURCES",
	"GENERAL OFFICE", "GENERAL GOVT. INSURANCE", "MAYOR & COUNCIL",
	"MAYOR AND COUNCIL", "PROFESSIONAL SERVICES", "PUBLIC ASSOCIATIONS",
	"ENFORCEMENT FEES", "ELECTIONS", "COMMUNITY PROMOTIONS", "ANNEXATION",
	"LICENSE FEES", "MISC. REVENUES", "MISCELLANEOUS GRANTS",
	"MUNICIPAL BUILDING", "MUNICIPAL BUILDING GRANT", "POLICE GRANTS",
	"TAXES", "TRASH REMOVAL", "GRANTS",
}

// LineItemPatterns are the recognised line item keywords.
var LineItemPatterns = []string{
	"road repairs", "overtime", "equipment", "salaries", "benefits",
	"maintenance", "utilities", "supplies", "training", "travel",
	"contracts", "services", "materials", "fuel", "insurance",
}

// AmountPatterns mark a question as asking for a numeric amount/total,
// gating the generic aggregation fallback.
var AmountPatterns = []string{
	"how much",
	"what is the total",
	"total amount",
	"budget for",
	"allocated to",
	"spent on",
	"cost of",
	"expense for",
	"funding for",
	"dollar amount",
	"dollars",
	"budget",
	"allocation",
	"expenditure",
}

// CategoryPriority is the fixed keyword priority list the rule-based
// resolver uses to pick a category; the first hit wins.
var CategoryPriority = []Synonym{
	{"taxes", "TAXES"},
	{"police", "POLICE DEPARTMENT"},
	{"public works", "PUBLIC WORKS"},
	{"administration", "ADMINISTRATION"},
	{"grants", "GRANTS"},
}

// ClassifierRule pairs a question type with its trigger keywords.
type ClassifierRule struct {
	Type     model.QuestionType
	Keywords []string
}

// ClassifierRules is evaluated in order; the first rule with any keyword
// contained in the lowercase question wins.
var ClassifierRules = []ClassifierRule{
	{model.QTotalsAndAggregates, []string{"total budget", "total", "sum", "aggregate", "combined"}},
	{model.QCategoryComparisons, []string{"compare", "which category", "rank", "most funding", "highest", "lowest"}},
	{model.QLineItemDetails, []string{"line item", "allocated to", "largest line item", "show me all line items"}},
	{model.QTrendAnalysis, []string{"change from", "grew the most", "decreased from", "trend", "over time"}},
	{model.QCrossYearComparisons, []string{"increased in", "year-over-year", "disappear", "compared to"}},
	{model.QBreakdownsShares, []string{"percentage", "share", "top 5", "breakdown"}},
	{model.QPartialFY26Data, []string{"fy26", "2026", "partial", "currently available"}},
	{model.QCustomFilters, []string{"over $", "more than", "under $", "list categories", "show me all expenditures"}},
	{model.QNaturalLanguageTrends, []string{"biggest drivers", "summarize", "plain english", "why does", "tell me"}},
	{model.QWhatIfHypothetical, []string{"if", "would", "hypothetical", "what if"}},
}
