// Package parsers turns resolver model replies into validated intents.
// The reply contract is a single JSON object; anything else is an error the
// caller handles by falling back to the rule-based resolver.
package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/landover-agents/server/internal/agent/model"
	errx "github.com/landover-agents/server/internal/core/error"
	logx "github.com/landover-agents/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 16 * 1024 // 16KB
	maxErrSnippet = 200       // limit error snippet size
)

var yearDigits = regexp.MustCompile(`(\d{2,4})`)

// rawIntent mirrors the JSON schema the resolver model is instructed to
// emit. Years arrive as labels ("FY25"); numbers may arrive as either form.
type rawIntent struct {
	Action           string  `json:"action"`
	Year             string  `json:"year"`
	YearFrom         string  `json:"year_from"`
	YearTo           string  `json:"year_to"`
	Category         string  `json:"category"`
	LineItem         string  `json:"line_item"`
	TopN             int     `json:"top_n"`
	CutPct           float64 `json:"cut_pct"`
	PercentageChange float64 `json:"percentage_change"`
	Scope            string  `json:"scope"`
	ScenarioType     string  `json:"scenario_type"`
	PartialData      bool    `json:"partial_data"`
	Question         string  `json:"question"`
}

// ParseIntentResponse extracts and validates the single JSON intent object
// from a resolver model reply. Code fences and surrounding prose are
// tolerated; everything else about the contract is enforced.
func ParseIntentResponse(content string) (intent *model.StructuredIntent, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "intent_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("intent parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			intent = nil
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "intent_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	body, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("intent reply: %w (snippet: %s)", err, safeSnippet(content))
	}

	var raw rawIntent
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("intent json: %w (snippet: %s)", err, safeSnippet(body))
	}

	action := model.Action(strings.ToLower(strings.TrimSpace(raw.Action)))
	if !model.KnownActions[action] {
		return nil, fmt.Errorf("intent json: unknown action %q", raw.Action)
	}

	out := &model.StructuredIntent{
		Action:           action,
		Category:         raw.Category,
		LineItem:         raw.LineItem,
		TopN:             raw.TopN,
		CutPct:           raw.CutPct,
		PercentageChange: raw.PercentageChange,
		Scope:            raw.Scope,
		ScenarioType:     raw.ScenarioType,
		Question:         strings.TrimSpace(raw.Question),
	}

	if out.Year, err = parseYearField(raw.Year, "year"); err != nil {
		return nil, err
	}
	if out.YearFrom, err = parseYearField(raw.YearFrom, "year_from"); err != nil {
		return nil, err
	}
	if out.YearTo, err = parseYearField(raw.YearTo, "year_to"); err != nil {
		return nil, err
	}

	out.Normalize()
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("intent validation: %w", err)
	}
	return out, nil
}

// parseYearField normalises a year label such as "FY25", "fy 25", or "2025".
// Empty means "not provided"; anything unparseable or outside the loaded
// range is an error.
func parseYearField(s, name string) (model.FiscalYear, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	m := yearDigits.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("intent json: %s %q has no year digits", name, s)
	}
	y, ok := model.ParseFiscalYear(m[1])
	if !ok || !y.Valid() {
		return 0, fmt.Errorf("intent json: %s %q outside loaded range", name, s)
	}
	return y, nil
}

// extractJSONObject strips code fences and surrounding prose, returning the
// first top-level {...} object in the content.
func extractJSONObject(content string) (string, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object")
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
