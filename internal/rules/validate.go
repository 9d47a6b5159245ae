// internal/rules/validate.go
package rules

import (
	"fmt"

	"github.com/calyx-health/formgate/internal/types"
)

/*
 * Form-definition validation.
 *
 * Enforces at definition time what evaluation assumes at runtime: condition
 * references must name existing questions at a strictly lower sequence index
 * (forward-only invariant), rules must be non-empty, and resource limits
 * hold. Rejecting bad definitions here keeps the resolver's suffix-only scan
 * sound without any runtime re-checking.
 *
 * Errors wrap the sentinel errors in internal/types with the offending
 * question and condition ids for operator diagnostics.
 */

// ValidateForm checks a form definition for structural soundness.
// Returns nil for valid forms; the first violation found otherwise.
func ValidateForm(form types.Form) error {
	if len(form.Questions) > types.MaxQuestionsPerForm {
		return fmt.Errorf("form %s: %w (%d > %d)", form.ID, types.ErrTooManyQuestions, len(form.Questions), types.MaxQuestionsPerForm)
	}

	index := make(map[types.QuestionID]int, len(form.Questions))
	for i, q := range form.Questions {
		if _, dup := index[q.ID]; dup {
			return fmt.Errorf("question %s: %w", q.ID, types.ErrDuplicateQuestionID)
		}
		index[q.ID] = i
	}

	for i, q := range form.Questions {
		if q.Rule == nil {
			continue
		}
		if err := validateRule(*q.Rule, q.ID, i, index); err != nil {
			return err
		}
	}
	return nil
}

// validateRule checks a single rule's conditions against the question index.
func validateRule(rule types.Rule, owner types.QuestionID, ownerIdx int, index map[types.QuestionID]int) error {
	if len(rule.Conditions) == 0 {
		return fmt.Errorf("question %s rule %s: %w", owner, rule.ID, types.ErrEmptyRule)
	}
	if len(rule.Conditions) > types.MaxConditionsPerRule {
		return fmt.Errorf("question %s rule %s: %w (%d > %d)", owner, rule.ID, types.ErrTooManyConditions, len(rule.Conditions), types.MaxConditionsPerRule)
	}

	for _, c := range rule.Conditions {
		if c.Reference == owner {
			return fmt.Errorf("question %s condition %s: %w", owner, c.ID, types.ErrSelfReference)
		}
		refIdx, ok := index[c.Reference]
		if !ok {
			return fmt.Errorf("question %s condition %s -> %s: %w", owner, c.ID, c.Reference, types.ErrUnknownReference)
		}
		if refIdx >= ownerIdx {
			return fmt.Errorf("question %s condition %s -> %s: %w", owner, c.ID, c.Reference, types.ErrForwardReference)
		}
	}
	return nil
}
