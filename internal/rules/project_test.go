// internal/rules/project_test.go
package rules

import (
	"strings"
	"testing"

	"github.com/calyx-health/formgate/internal/types"
)

func TestProject_FiltersMalformed(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", ValueType: types.ValueTypeString},
		{ID: "q2", ValueType: types.ValueTypeString},
		{ID: "q3", ValueType: types.ValueTypePhone},
	}
	answerMap := map[types.QuestionID]any{
		"q1": "Valid answer",
		"q2": "",
		"q3": "123",
	}

	responses := Project(answerMap, questions)
	if len(responses) != 1 {
		t.Fatalf("Project() returned %d responses, want 1", len(responses))
	}
	if responses[0].QuestionID != "q1" {
		t.Errorf("response question = %s, want q1", responses[0].QuestionID)
	}
	if responses[0].Value != "Valid answer" {
		t.Errorf("response value = %q, want %q", responses[0].Value, "Valid answer")
	}
	if responses[0].ValueType != "string" {
		t.Errorf("response value_type = %q, want string", responses[0].ValueType)
	}
}

func TestProject_PerTypeChecks(t *testing.T) {
	tests := []struct {
		name      string
		valueType types.ValueType
		answer    any
		want      bool
	}{
		{"string present", types.ValueTypeString, "hello", true},
		{"string whitespace only", types.ValueTypeString, "   ", false},
		{"text present", types.ValueTypeText, "long form answer", true},
		{"phone complete", types.ValueTypePhone, "(555) 123-4567", true},
		{"phone partial", types.ValueTypePhone, "555-123", false},
		{"phone bare digits", types.ValueTypePhone, "5551234567", true},
		{"email valid", types.ValueTypeEmail, "pat@example.org", true},
		{"email missing domain", types.ValueTypeEmail, "pat@", false},
		{"email missing tld", types.ValueTypeEmail, "pat@example", false},
		{"email with spaces", types.ValueTypeEmail, "pat smith@example.org", false},
		{"number integer", types.ValueTypeNumber, "42", true},
		{"number decimal", types.ValueTypeNumber, "3.14", true},
		{"number negative", types.ValueTypeNumber, "-7", true},
		{"number garbage", types.ValueTypeNumber, "abc", false},
		{"number trailing text", types.ValueTypeNumber, "42kg", false},
		{"integer numeric answer", types.ValueTypeInteger, float64(42), true},
		{"boolean true", types.ValueTypeBoolean, true, true},
		{"boolean false", types.ValueTypeBoolean, false, true},
		{"select chosen", types.ValueTypeSelect, "option-a", true},
		{"multi select values", types.ValueTypeMultiSelect, []string{"a", "b"}, true},
		{"unknown type falls back to string check", types.ValueType("custom"), "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := []types.Question{{ID: "q1", ValueType: tt.valueType}}
			responses := Project(map[types.QuestionID]any{"q1": tt.answer}, questions)
			got := len(responses) == 1
			if got != tt.want {
				t.Errorf("Project() included = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_SkipsAbsentAndNil(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", ValueType: types.ValueTypeString},
		{ID: "q2", ValueType: types.ValueTypeString},
	}
	answerMap := map[types.QuestionID]any{
		"q2": nil,
	}

	if got := Project(answerMap, questions); len(got) != 0 {
		t.Errorf("Project() returned %d responses, want 0", len(got))
	}
}

func TestProject_IgnoresUnknownIDs(t *testing.T) {
	questions := []types.Question{{ID: "q1", ValueType: types.ValueTypeString}}
	answerMap := map[types.QuestionID]any{
		"q1":    "ok",
		"ghost": "should not appear",
	}

	responses := Project(answerMap, questions)
	if len(responses) != 1 || responses[0].QuestionID != "q1" {
		t.Errorf("Project() = %v, want only q1", responses)
	}
}

func TestProject_CoercesValues(t *testing.T) {
	tests := []struct {
		name      string
		valueType types.ValueType
		answer    any
		want      string
	}{
		{"bool", types.ValueTypeBoolean, true, "true"},
		{"float drops trailing zeros", types.ValueTypeNumber, float64(5), "5"},
		{"decimal kept", types.ValueTypeNumber, 2.5, "2.5"},
		{"multi select joined", types.ValueTypeMultiSelect, []string{"a", "b", "c"}, "a,b,c"},
		{"any slice joined", types.ValueTypeMultiSelect, []any{"x", "y"}, "x,y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := []types.Question{{ID: "q1", ValueType: tt.valueType}}
			responses := Project(map[types.QuestionID]any{"q1": tt.answer}, questions)
			if len(responses) != 1 {
				t.Fatalf("Project() returned %d responses, want 1", len(responses))
			}
			if responses[0].Value != tt.want {
				t.Errorf("value = %q, want %q", responses[0].Value, tt.want)
			}
		})
	}
}

func TestProject_RejectsOversizedAnswer(t *testing.T) {
	questions := []types.Question{{ID: "q1", ValueType: types.ValueTypeText}}
	huge := strings.Repeat("a", types.MaxAnswerLength+1)

	if got := Project(map[types.QuestionID]any{"q1": huge}, questions); len(got) != 0 {
		t.Errorf("Project() returned %d responses for oversized answer, want 0", len(got))
	}
}

func TestProject_PreservesQuestionOrder(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", ValueType: types.ValueTypeString},
		{ID: "q2", ValueType: types.ValueTypeString},
		{ID: "q3", ValueType: types.ValueTypeString},
	}
	answerMap := map[types.QuestionID]any{
		"q3": "c",
		"q1": "a",
		"q2": "b",
	}

	responses := Project(answerMap, questions)
	if len(responses) != 3 {
		t.Fatalf("Project() returned %d responses, want 3", len(responses))
	}
	for i, want := range []types.QuestionID{"q1", "q2", "q3"} {
		if responses[i].QuestionID != want {
			t.Errorf("responses[%d] = %s, want %s", i, responses[i].QuestionID, want)
		}
	}
}
