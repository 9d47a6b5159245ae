// Package types provides domain models shared across formgate components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so the engine can be embedded without pulling in storage or
// transport dependencies. ID utilities in ids.go import uuid but are
// isolated for selective inclusion.
//
// Wire-format note: QuestionResponse, Rule, Condition and Operand carry the
// JSON tags of the remote evaluation protocol. The same structures serve as
// the in-memory domain model; there is exactly one wire shape and it is
// owned here rather than duplicated at the client boundary.
package types

// FormID identifies a form definition.
// String alias enables type safety while maintaining JSON string serialization.
type FormID string

// QuestionID identifies a question, stable within a form.
type QuestionID string

// RuleID identifies a visibility rule.
type RuleID string

// ConditionID identifies a single condition within a rule.
type ConditionID string

// ValueType is the semantic type of a question's answer. It selects the
// well-formedness check applied before an answer is projected for
// evaluation, and is forwarded verbatim to the remote evaluator.
type ValueType string

// Value type constants. Unknown types fall back to the generic string check.
const (
	ValueTypeString      ValueType = "string"
	ValueTypeText        ValueType = "text"
	ValueTypePhone       ValueType = "phone"
	ValueTypeEmail       ValueType = "email"
	ValueTypeNumber      ValueType = "number"
	ValueTypeInteger     ValueType = "integer"
	ValueTypeBoolean     ValueType = "boolean"
	ValueTypeDate        ValueType = "date"
	ValueTypeSelect      ValueType = "select"
	ValueTypeMultiSelect ValueType = "multi_select"
)

// Operand is a typed literal a condition compares against.
type Operand struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Condition is an atomic comparison between a referenced prior question's
// answer and a literal operand. Operator semantics are owned by the remote
// evaluator; this side treats the operator as an opaque string.
type Condition struct {
	ID        ConditionID `json:"id"`
	Reference QuestionID  `json:"reference"`
	Operator  string      `json:"operator"`
	Operand   Operand     `json:"operand"`
}

// Rule is a boolean expression guarding a question's visibility.
// BooleanOperator combines the conditions (e.g. "and", "or").
type Rule struct {
	ID              RuleID      `json:"id"`
	BooleanOperator string      `json:"boolean_operator"`
	Conditions      []Condition `json:"conditions"`
}

// Question is one form field definition. A nil Rule means the question is
// unconditionally visible. Position in the form's question slice is the
// question's sequence index; rule conditions may only reference questions
// at strictly lower indexes.
type Question struct {
	ID        QuestionID `json:"id"`
	Label     string     `json:"label,omitempty"`
	ValueType ValueType  `json:"value_type"`
	Rule      *Rule      `json:"rule,omitempty"`
}

// Form is an ordered question list with identity. Question order is
// load-bearing: the affected-question resolver and reference validation
// both depend on it.
type Form struct {
	ID        FormID     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// QuestionResponse is a normalized answer ready for remote evaluation.
// Only produced for answers that are present and pass the per-type
// well-formedness check; never persisted.
type QuestionResponse struct {
	QuestionID QuestionID `json:"question_id"`
	Value      string     `json:"value"`
	ValueType  string     `json:"value_type"`
}

// Resource limits enforced at form-definition time to keep evaluation
// requests bounded.
const (
	// MaxQuestionsPerForm bounds request size and resolver scans.
	// 256 questions covers the largest observed clinical intake forms.
	MaxQuestionsPerForm = 256

	// MaxConditionsPerRule bounds a single rule expression.
	// 32 conditions allows rich branching without unbounded payloads.
	MaxConditionsPerRule = 32

	// MaxAnswerLength bounds a single projected answer value.
	// 64KB allows long free-text answers; larger input is never well-formed.
	MaxAnswerLength = 64 * 1024
)
