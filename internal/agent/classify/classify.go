// Package classify assigns a question type label that drives the composer
// tone. Purely keyword based; rule order decides ties.
package classify

import (
	"strings"

	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/vocab"
)

// Question returns the first matching question type, or QGeneral when no
// rule keyword occurs in the question.
func Question(question string) model.QuestionType {
	q := strings.ToLower(question)
	for _, rule := range vocab.ClassifierRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, kw) {
				return rule.Type
			}
		}
	}
	return model.QGeneral
}
