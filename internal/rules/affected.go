// internal/rules/affected.go
package rules

import (
	"github.com/calyx-health/formgate/internal/types"
)

/*
 * Affected-question resolution.
 *
 * Given a question whose answer just changed, computes the set of questions
 * that could need re-evaluation. Exploits the forward-only reference
 * invariant (conditions may only reference earlier questions): only the
 * suffix after the changed question can be affected, so the scan starts at
 * index+1 instead of walking a dependency graph.
 *
 * Callers currently trigger a full re-evaluation regardless; this resolver
 * is the hook point for incremental evaluation (see DESIGN.md).
 */

// Affected returns the questions at a strictly greater sequence index whose
// rule contains at least one condition referencing the changed question.
// Returns an empty slice when the changed id is not in the form.
func Affected(changed types.QuestionID, questions []types.Question) []types.Question {
	at := -1
	for i, q := range questions {
		if q.ID == changed {
			at = i
			break
		}
	}
	if at < 0 {
		return nil
	}

	var affected []types.Question
	for _, q := range questions[at+1:] {
		if q.Rule == nil {
			continue
		}
		if references(*q.Rule, changed) {
			affected = append(affected, q)
		}
	}
	return affected
}

// references reports whether any condition of the rule inspects the given
// question.
func references(rule types.Rule, id types.QuestionID) bool {
	for _, c := range rule.Conditions {
		if c.Reference == id {
			return true
		}
	}
	return false
}
