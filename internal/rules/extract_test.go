// internal/rules/extract_test.go
package rules

import (
	"testing"

	"github.com/calyx-health/formgate/internal/types"
)

// eqRule builds a single-condition rule: referenced question's answer == value.
func eqRule(id string, ref types.QuestionID, value string) *types.Rule {
	return &types.Rule{
		ID:              types.RuleID(id),
		BooleanOperator: "and",
		Conditions: []types.Condition{
			{
				ID:        types.ConditionID(id + "-c1"),
				Reference: ref,
				Operator:  "equals",
				Operand:   types.Operand{Value: value, Type: "string"},
			},
		},
	}
}

func TestExtract_FiltersRuleBearing(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", ValueType: types.ValueTypeString},
		{ID: "q2", ValueType: types.ValueTypeString, Rule: eqRule("r1", "q1", "yes")},
		{ID: "q3", ValueType: types.ValueTypeNumber},
		{ID: "q4", ValueType: types.ValueTypeString, Rule: eqRule("r2", "q1", "no")},
	}

	bindings := Extract(questions)
	if len(bindings) != 2 {
		t.Fatalf("Extract() returned %d bindings, want 2", len(bindings))
	}
	if bindings[0].Question.ID != "q2" || bindings[1].Question.ID != "q4" {
		t.Errorf("Extract() order = [%s, %s], want [q2, q4]", bindings[0].Question.ID, bindings[1].Question.ID)
	}
	if bindings[0].Rule.ID != "r1" {
		t.Errorf("binding rule = %s, want r1", bindings[0].Rule.ID)
	}
}

func TestExtract_NoRules(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", ValueType: types.ValueTypeString},
		{ID: "q2", ValueType: types.ValueTypeString},
	}

	bindings := Extract(questions)
	if len(bindings) != 0 {
		t.Errorf("Extract() returned %d bindings, want 0", len(bindings))
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract(nil); len(got) != 0 {
		t.Errorf("Extract(nil) returned %d bindings, want 0", len(got))
	}
}

func TestRules_PreservesOrder(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", ValueType: types.ValueTypeString},
		{ID: "q2", ValueType: types.ValueTypeString, Rule: eqRule("r1", "q1", "a")},
		{ID: "q3", ValueType: types.ValueTypeString, Rule: eqRule("r2", "q1", "b")},
	}

	ruleList := Rules(Extract(questions))
	if len(ruleList) != 2 {
		t.Fatalf("Rules() returned %d rules, want 2", len(ruleList))
	}
	if ruleList[0].ID != "r1" || ruleList[1].ID != "r2" {
		t.Errorf("Rules() order = [%s, %s], want [r1, r2]", ruleList[0].ID, ruleList[1].ID)
	}
}
