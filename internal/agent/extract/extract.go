// Package extract derives deterministic filters (fiscal year, department,
// line item) from question text. It is pure string work: same question in,
// same FilterSet out.
package extract

import (
	"regexp"
	"strings"

	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/vocab"
)

// yearPatterns are tried in order; the first capture group that matches
// provides the year digits.
var yearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`fy\s*(\d{2,4})`),
	regexp.MustCompile(`fiscal\s+year\s+(\d{2,4})`),
	regexp.MustCompile(`(\d{4})\s*budget`),
	regexp.MustCompile(`(\d{4})\s*fiscal`),
	regexp.MustCompile(`budget\s+(\d{4})`),
	regexp.MustCompile(`in\s+(\d{4})`),
	regexp.MustCompile(`for\s+(\d{4})`),
}

// allYearsPattern matches every year mention, used by the trend analyzer.
var allYearsPattern = regexp.MustCompile(`(?:fy|fiscal year|year)\s*(\d{2,4})`)

var wordPattern = regexp.MustCompile(`\w+`)

var (
	synonymPatterns  []*regexp.Regexp
	deptPatterns     []*regexp.Regexp
	lineItemPatterns []*regexp.Regexp
)

func init() {
	wholeWord := func(phrase string) *regexp.Regexp {
		return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(phrase)) + `\b`)
	}
	for _, s := range vocab.DepartmentSynonyms {
		synonymPatterns = append(synonymPatterns, wholeWord(s.Phrase))
	}
	for _, d := range vocab.DepartmentPatterns {
		deptPatterns = append(deptPatterns, wholeWord(d))
	}
	for _, li := range vocab.LineItemPatterns {
		lineItemPatterns = append(lineItemPatterns, wholeWord(li))
	}
}

// Filters extracts the fiscal year, department, and line item mentioned in
// the question, if any.
func Filters(question string) model.FilterSet {
	q := strings.ToLower(question)
	var f model.FilterSet

	for _, p := range yearPatterns {
		if m := p.FindStringSubmatch(q); m != nil {
			if y, ok := model.ParseFiscalYear(m[1]); ok {
				f.FiscalYear = &y
				break
			}
		}
	}

	f.Department = Department(q)

	for i, p := range lineItemPatterns {
		if p.MatchString(q) {
			f.LineItem = vocab.LineItemPatterns[i]
			break
		}
	}

	return f
}

// Department resolves the canonical category mentioned in the (lowercase)
// question: synonyms first, then the canonical names as whole words.
func Department(q string) string {
	q = strings.ToLower(q)
	for i, p := range synonymPatterns {
		if p.MatchString(q) {
			return vocab.DepartmentSynonyms[i].Canonical
		}
	}
	for i, p := range deptPatterns {
		if p.MatchString(q) {
			return vocab.DepartmentPatterns[i]
		}
	}
	return ""
}

// Years returns every distinct fiscal year mentioned in the question,
// sorted ascending.
func Years(question string) []model.FiscalYear {
	q := strings.ToLower(question)
	seen := map[model.FiscalYear]bool{}
	var years []model.FiscalYear
	for _, m := range allYearsPattern.FindAllStringSubmatch(q, -1) {
		y, ok := model.ParseFiscalYear(m[1])
		if !ok || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	for i := 1; i < len(years); i++ {
		for j := i; j > 0 && years[j] < years[j-1]; j-- {
			years[j], years[j-1] = years[j-1], years[j]
		}
	}
	return years
}

// IsAmountQuestion reports whether the question asks for a numeric total,
// gating the generic aggregation fallback.
func IsAmountQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, p := range vocab.AmountPatterns {
		if strings.Contains(q, p) {
			return true
		}
	}
	return strings.Contains(q, "$") || strings.Contains(q, "amount") || strings.Contains(q, "total")
}

// Tokens returns up to max lowercase words longer than three characters,
// used as keyword-search terms when no structured filter matched.
func Tokens(question string, max int) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(question), -1) {
		if len(w) > 3 {
			out = append(out, w)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}
