package model

import (
	"fmt"
	"strings"
)

// Action identifies one deterministic computation the dispatcher can run.
type Action string

const (
	ActionYearTotal      Action = "year_total"
	ActionYoYDifference  Action = "yoy_difference"
	ActionYoYAll         Action = "yoy_all"
	ActionCategoryRank   Action = "category_rank"
	ActionCategoryShare  Action = "category_share"
	ActionLineItemTotal  Action = "line_item_total"
	ActionPercentChange  Action = "percent_change"
	ActionScenarioCut    Action = "scenario_cut"
	ActionWhatIfScenario Action = "what_if_scenario"
	ActionHelp           Action = "help"
)

// KnownActions is the closed set of actions an intent may carry.
var KnownActions = map[Action]bool{
	ActionYearTotal:      true,
	ActionYoYDifference:  true,
	ActionYoYAll:         true,
	ActionCategoryRank:   true,
	ActionCategoryShare:  true,
	ActionLineItemTotal:  true,
	ActionPercentChange:  true,
	ActionScenarioCut:    true,
	ActionWhatIfScenario: true,
	ActionHelp:           true,
}

// HelpText is the answer carried by a help intent when no more specific
// guidance applies.
const HelpText = "I couldn't understand your question. Could you rephrase it?"

// Scope values for scenario_cut.
const (
	ScopeAll      = "all"
	ScopeCategory = "category"
)

// ScenarioType values for what_if_scenario.
const (
	ScenarioIncrease = "increase"
	ScenarioDecrease = "decrease"
)

// StructuredIntent is the closed, typed form every question is reduced to
// before any computation runs. Zero-valued fields mean "not provided".
type StructuredIntent struct {
	Action           Action
	Year             FiscalYear
	YearFrom         FiscalYear
	YearTo           FiscalYear
	Category         string
	LineItem         string
	TopN             int
	CutPct           float64
	PercentageChange float64
	Scope            string
	ScenarioType     string
	PartialData      bool
	Question         string // help text when Action == ActionHelp
}

// HelpIntent builds a help intent carrying the given guidance text.
func HelpIntent(text string) *StructuredIntent {
	if text == "" {
		text = HelpText
	}
	return &StructuredIntent{Action: ActionHelp, Question: text}
}

// Normalize fills in the documented defaults per action and applies the
// partial-data guardrail. It is called by both resolver tiers so the
// dispatcher never sees an under-specified intent.
func (in *StructuredIntent) Normalize() {
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	in.LineItem = strings.TrimSpace(in.LineItem)
	in.Scope = strings.ToLower(strings.TrimSpace(in.Scope))
	in.ScenarioType = strings.ToLower(strings.TrimSpace(in.ScenarioType))

	switch in.Action {
	case ActionYearTotal:
		if in.Year == 0 {
			in.Year = LatestCompleteYear
		}
	case ActionYoYDifference, ActionPercentChange:
		switch {
		case in.YearFrom == 0 && in.YearTo == 0:
			in.YearFrom, in.YearTo = MinYear, LatestCompleteYear
		case in.YearFrom != 0 && in.YearTo == 0:
			// a lone year is the target; pair it with the year before
			if in.YearFrom > MinYear {
				in.YearFrom, in.YearTo = in.YearFrom-1, in.YearFrom
			} else {
				in.YearTo = in.YearFrom + 1
			}
		case in.YearFrom == 0 && in.YearTo != 0:
			if in.YearTo > MinYear {
				in.YearFrom = in.YearTo - 1
			} else {
				in.YearFrom, in.YearTo = in.YearTo, in.YearTo+1
			}
		}
		if in.Action == ActionPercentChange && in.Category == "" {
			in.Category = "TAXES"
		}
	case ActionCategoryRank:
		if in.Year == 0 {
			in.Year = LatestCompleteYear
		}
		if in.TopN <= 0 {
			in.TopN = 10
		}
	case ActionCategoryShare:
		if in.Year == 0 {
			in.Year = LatestCompleteYear
		}
		if in.Category == "" {
			in.Category = "TAXES"
		}
	case ActionLineItemTotal:
		if in.Year == 0 {
			in.Year = LatestCompleteYear
		}
	case ActionScenarioCut:
		if in.Year == 0 {
			in.Year = LatestCompleteYear
		}
		if in.Scope == "" {
			if in.Category != "" {
				in.Scope = ScopeCategory
			} else {
				in.Scope = ScopeAll
			}
		}
	case ActionWhatIfScenario:
		if in.Year == 0 {
			in.Year = LatestCompleteYear
		}
		if in.ScenarioType == "" {
			in.ScenarioType = ScenarioIncrease
		}
	}

	in.PartialData = in.Year.IsPartial() || in.YearFrom.IsPartial() || in.YearTo.IsPartial()
}

// Validate rejects intents the dispatcher cannot execute. Callers degrade a
// failed intent to help rather than erroring.
func (in *StructuredIntent) Validate() error {
	if !KnownActions[in.Action] {
		return fmt.Errorf("unknown action %q", in.Action)
	}
	for _, y := range []FiscalYear{in.Year, in.YearFrom, in.YearTo} {
		if y != 0 && !y.Valid() {
			return fmt.Errorf("fiscal year %d outside loaded range", int(y))
		}
	}
	switch in.Action {
	case ActionScenarioCut:
		if in.CutPct <= 0 || in.CutPct >= 100 {
			return fmt.Errorf("scenario_cut requires cut_pct in (0, 100), got %v", in.CutPct)
		}
		if in.Scope == ScopeCategory && in.Category == "" {
			return fmt.Errorf("scenario_cut with category scope requires a category")
		}
	case ActionWhatIfScenario:
		if in.Category == "" {
			return fmt.Errorf("what_if_scenario requires a category")
		}
		if in.PercentageChange <= 0 {
			return fmt.Errorf("what_if_scenario requires a positive percentage_change")
		}
		if in.ScenarioType != ScenarioIncrease && in.ScenarioType != ScenarioDecrease {
			return fmt.Errorf("unknown scenario_type %q", in.ScenarioType)
		}
	case ActionLineItemTotal:
		if in.Category == "" || in.LineItem == "" {
			return fmt.Errorf("line_item_total requires category and line_item")
		}
	}
	return nil
}

// YearsTouched lists the distinct fiscal years this intent references.
func (in *StructuredIntent) YearsTouched() []FiscalYear {
	seen := map[FiscalYear]bool{}
	var out []FiscalYear
	for _, y := range []FiscalYear{in.Year, in.YearFrom, in.YearTo} {
		if y != 0 && !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	return out
}
