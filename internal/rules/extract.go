// internal/rules/extract.go
package rules

import (
	"github.com/calyx-health/formgate/internal/types"
)

/*
 * Rule extraction.
 *
 * Produces the ordered subset of questions that carry a visibility rule,
 * paired with that rule. Binding order follows question order; the evaluator
 * client and the visibility store rely on this ordering to map results back
 * positionally.
 */

// Binding pairs a rule-bearing question with its rule.
type Binding struct {
	Question types.Question
	Rule     types.Rule
}

// Extract returns the rule-bearing questions in form order.
// Pure function; questions without a rule are skipped.
func Extract(questions []types.Question) []Binding {
	bindings := make([]Binding, 0, len(questions))
	for _, q := range questions {
		if q.Rule == nil {
			continue
		}
		bindings = append(bindings, Binding{Question: q, Rule: *q.Rule})
	}
	return bindings
}

// Rules returns just the rules of the given bindings, in the same order.
// Convenience for building evaluator requests.
func Rules(bindings []Binding) []types.Rule {
	out := make([]types.Rule, len(bindings))
	for i, b := range bindings {
		out[i] = b.Rule
	}
	return out
}
