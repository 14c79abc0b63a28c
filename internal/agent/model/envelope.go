package model

// Evidence is one auditable record backing an answer. Exactly the fields
// below may appear; free-form maps are not allowed in envelopes.
type Evidence struct {
	FiscalYear string   `json:"fiscal_year,omitempty"`
	Category   string   `json:"category,omitempty"`
	LineItem   string   `json:"line_item,omitempty"`
	Amount     float64  `json:"amount,omitempty"`
	Prior      *float64 `json:"prior,omitempty"`
	Delta      *float64 `json:"delta,omitempty"`
	Percent    *float64 `json:"percent,omitempty"`
	Source     string   `json:"source,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
}

// ResultEnvelope is the uniform result shape every answering path returns.
type ResultEnvelope struct {
	Answer       string     `json:"answer"`
	Evidence     []Evidence `json:"evidence"`
	Total        *float64   `json:"total,omitempty"`
	Filters      Params     `json:"filters"`
	QuestionType string     `json:"question_type"`
}

// Float64Ptr is a small helper for optional numeric fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
