package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/vocab"
)

var (
	fyPattern      = regexp.MustCompile(`fy\s*(\d{2,4})`)
	percentPattern = regexp.MustCompile(`(\d+)%`)
)

// Rule is one deterministic resolution rule. Match returns nil when the
// rule does not apply; evaluation continues with the next rule.
type Rule struct {
	Name  string
	Match func(q string) *model.StructuredIntent
}

// FallbackRules is the ordered rule list of the deterministic resolver
// tier. Exported so tests can assert the order itself.
var FallbackRules = []Rule{
	{"year_total", matchYearTotal},
	{"yoy_difference", matchYoYDifference},
	{"category_share", matchCategoryShare},
	{"category_rank", matchCategoryRank},
	{"category_spending", matchCategorySpending},
	{"percent_change", matchPercentChange},
	{"scenario_cut", matchScenarioCut},
	{"what_if_scenario", matchWhatIf},
}

// FallbackResolve runs the ordered rule list over the lowercase question.
// Questions no rule claims resolve to a help intent.
func FallbackResolve(question string) *model.StructuredIntent {
	q := strings.ToLower(question)
	for _, rule := range FallbackRules {
		if in := rule.Match(q); in != nil {
			in.Normalize()
			if err := in.Validate(); err != nil {
				break
			}
			return in
		}
	}
	in := model.HelpIntent("")
	in.Normalize()
	return in
}

// questionYear reads the first fy-prefixed year, defaulting to the latest
// complete year.
func questionYear(q string) model.FiscalYear {
	if m := fyPattern.FindStringSubmatch(q); m != nil {
		if y, ok := model.ParseFiscalYear(m[1]); ok {
			return y
		}
	}
	return model.LatestCompleteYear
}

// questionYears reads every fy-prefixed year in mention order.
func questionYears(q string) []model.FiscalYear {
	var years []model.FiscalYear
	for _, m := range fyPattern.FindAllStringSubmatch(q, -1) {
		if y, ok := model.ParseFiscalYear(m[1]); ok {
			years = append(years, y)
		}
	}
	return years
}

// priorityCategory picks a category using the fixed priority list.
func priorityCategory(q string) string {
	for _, s := range vocab.CategoryPriority {
		if strings.Contains(q, s.Phrase) {
			return s.Canonical
		}
	}
	return ""
}

func questionPercent(q string) float64 {
	if m := percentPattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return float64(n)
		}
	}
	return 0
}

func matchYearTotal(q string) *model.StructuredIntent {
	if !strings.Contains(q, "total budget") && !strings.Contains(q, "total for") {
		return nil
	}
	return &model.StructuredIntent{Action: model.ActionYearTotal, Year: questionYear(q)}
}

func matchYoYDifference(q string) *model.StructuredIntent {
	if !strings.Contains(q, "difference") {
		return nil
	}
	years := questionYears(q)
	in := &model.StructuredIntent{Action: model.ActionYoYDifference}
	switch {
	case len(years) >= 2:
		in.YearFrom, in.YearTo = years[0], years[1]
	case len(years) == 1:
		in.YearFrom = years[0] // Normalize pairs it with the year before
	}
	return in
}

func matchCategoryShare(q string) *model.StructuredIntent {
	if !strings.Contains(q, "percentage") && !strings.Contains(q, "make up") {
		return nil
	}
	category := priorityCategory(q)
	if category == "" {
		category = "TAXES"
	}
	return &model.StructuredIntent{
		Action:   model.ActionCategoryShare,
		Year:     questionYear(q),
		Category: category,
	}
}

func matchCategoryRank(q string) *model.StructuredIntent {
	if !strings.Contains(q, "most funding") && !strings.Contains(q, "highest") {
		return nil
	}
	return &model.StructuredIntent{
		Action: model.ActionCategoryRank,
		Year:   questionYear(q),
		TopN:   5,
	}
}

// matchCategorySpending handles "show me ... spending" style listing asks.
func matchCategorySpending(q string) *model.StructuredIntent {
	if !strings.Contains(q, "show me") && !strings.Contains(q, "spending") {
		return nil
	}
	if !strings.Contains(q, "public works") {
		return nil
	}
	return &model.StructuredIntent{
		Action: model.ActionCategoryRank,
		Year:   questionYear(q),
		TopN:   10,
	}
}

func matchPercentChange(q string) *model.StructuredIntent {
	if !strings.Contains(q, "percent change") && !strings.Contains(q, "change from") {
		return nil
	}
	years := questionYears(q)
	if len(years) < 2 {
		return nil
	}
	category := priorityCategory(q)
	if category == "" {
		return nil
	}
	return &model.StructuredIntent{
		Action:   model.ActionPercentChange,
		YearFrom: years[0],
		YearTo:   years[1],
		Category: category,
	}
}

func matchScenarioCut(q string) *model.StructuredIntent {
	if !strings.Contains(q, "cut") && !strings.Contains(q, "reduce") {
		return nil
	}
	pct := questionPercent(q)
	if pct <= 0 {
		return nil
	}
	in := &model.StructuredIntent{
		Action: model.ActionScenarioCut,
		Year:   questionYear(q),
		CutPct: pct,
	}
	if strings.Contains(q, "all departments") || strings.Contains(q, "across") {
		in.Scope = model.ScopeAll
		return in
	}
	category := priorityCategory(q)
	if category == "" {
		// a targeted cut needs a recognized category
		return model.HelpIntent("Which category should the cut apply to?")
	}
	in.Scope = model.ScopeCategory
	in.Category = category
	return in
}

var whatIfPhrases = []string{"if ", "what if", "increase", "decrease", "lose", "gain", "hypothetical"}

func matchWhatIf(q string) *model.StructuredIntent {
	matched := false
	for _, p := range whatIfPhrases {
		if strings.Contains(q, p) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}
	pct := questionPercent(q)
	category := priorityCategory(q)
	if pct <= 0 || category == "" {
		return nil
	}
	scenario := model.ScenarioDecrease
	if strings.Contains(q, "increase") || strings.Contains(q, "gain") {
		scenario = model.ScenarioIncrease
	}
	return &model.StructuredIntent{
		Action:           model.ActionWhatIfScenario,
		Year:             questionYear(q),
		Category:         category,
		PercentageChange: pct,
		ScenarioType:     scenario,
	}
}
