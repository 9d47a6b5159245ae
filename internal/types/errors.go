package types

import "errors"

// Sentinel errors for formgate operations.
var (
	// ErrUnknownReference indicates a condition references a question id
	// that does not exist in the form.
	ErrUnknownReference = errors.New("condition references unknown question")

	// ErrForwardReference indicates a condition references a question at
	// the same or a later sequence index than the rule's owner.
	ErrForwardReference = errors.New("condition references a question that is not earlier in the form")

	// ErrSelfReference indicates a rule condition references the question
	// that owns the rule.
	ErrSelfReference = errors.New("condition references its own question")

	// ErrDuplicateQuestionID indicates two questions share an id.
	ErrDuplicateQuestionID = errors.New("duplicate question id")

	// ErrEmptyRule indicates a rule has no conditions.
	ErrEmptyRule = errors.New("rule has no conditions")

	// ErrTooManyQuestions indicates a form exceeds MaxQuestionsPerForm.
	ErrTooManyQuestions = errors.New("form exceeds maximum question count")

	// ErrTooManyConditions indicates a rule exceeds MaxConditionsPerRule.
	ErrTooManyConditions = errors.New("rule exceeds maximum condition count")

	// ErrFormNotFound indicates no stored form matches the requested id.
	ErrFormNotFound = errors.New("form not found")
)
