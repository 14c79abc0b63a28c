package model

// FilterSet carries the deterministic filters extracted from a question.
// Nil/empty fields mean the question did not constrain that dimension.
type FilterSet struct {
	FiscalYear *FiscalYear
	Department string
	LineItem   string
}

// Empty reports whether no filter was extracted at all.
func (f FilterSet) Empty() bool {
	return f.FiscalYear == nil && f.Department == "" && f.LineItem == ""
}

// Params is the fixed-shape parameter echo attached to every envelope so
// callers can audit exactly what the answer was computed from.
type Params struct {
	Action           string  `json:"action,omitempty"`
	Year             string  `json:"year,omitempty"`
	YearFrom         string  `json:"year_from,omitempty"`
	YearTo           string  `json:"year_to,omitempty"`
	Category         string  `json:"category,omitempty"`
	Department       string  `json:"department,omitempty"`
	LineItem         string  `json:"line_item,omitempty"`
	TopN             int     `json:"top_n,omitempty"`
	CutPct           float64 `json:"cut_pct,omitempty"`
	PercentageChange float64 `json:"percentage_change,omitempty"`
	Scope            string  `json:"scope,omitempty"`
	ScenarioType     string  `json:"scenario_type,omitempty"`
	PartialData      bool    `json:"partial_data,omitempty"`
}

// ParamsFromIntent echoes an intent's parameters into the envelope shape.
func ParamsFromIntent(in *StructuredIntent) Params {
	p := Params{
		Action:           string(in.Action),
		Category:         in.Category,
		LineItem:         in.LineItem,
		TopN:             in.TopN,
		CutPct:           in.CutPct,
		PercentageChange: in.PercentageChange,
		Scope:            in.Scope,
		ScenarioType:     in.ScenarioType,
		PartialData:      in.PartialData,
	}
	if in.Year != 0 {
		p.Year = in.Year.Label()
	}
	if in.YearFrom != 0 {
		p.YearFrom = in.YearFrom.Label()
	}
	if in.YearTo != 0 {
		p.YearTo = in.YearTo.Label()
	}
	return p
}

// ParamsFromFilters echoes an extracted filter set into the envelope shape.
func ParamsFromFilters(f FilterSet) Params {
	p := Params{
		Department: f.Department,
		LineItem:   f.LineItem,
	}
	if f.FiscalYear != nil {
		p.Year = f.FiscalYear.Label()
		p.PartialData = f.FiscalYear.IsPartial()
	}
	return p
}
