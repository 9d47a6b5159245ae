// internal/rules/project.go
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/calyx-health/formgate/internal/types"
)

/*
 * Answer projection.
 *
 * Converts the live answer map into the normalized question_responses list
 * the remote evaluator consumes. Answers that are absent, empty, or not yet
 * well-formed for their declared type are silently excluded: the user is
 * still mid-entry, and the evaluator should never be asked to reason about
 * partial input.
 *
 * Per-type well-formedness:
 *   - string kinds: trimmed length > 0
 *   - phone: at least MinPhoneDigits digits after stripping formatting
 *   - email: permissive local@domain.tld pattern
 *   - number/integer: parseable to a finite float64
 *   - everything else: trimmed length > 0
 *
 * Exclusion is not an error. A malformed answer simply means the referencing
 * conditions see no response for that question.
 */

// MinPhoneDigits is the minimum digit count for a phone answer to be
// considered complete enough to evaluate.
const MinPhoneDigits = 10

// Permissive on purpose: the projector gates evaluation readiness, it does
// not validate deliverability. Per-question validation owns strictness.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Project builds the QuestionResponse list for the current answer map.
// Only questions present in the form are considered; answer map entries for
// unknown ids are ignored.
func Project(answers map[types.QuestionID]any, questions []types.Question) []types.QuestionResponse {
	responses := make([]types.QuestionResponse, 0, len(answers))
	for _, q := range questions {
		raw, ok := answers[q.ID]
		if !ok || raw == nil {
			continue
		}
		value := answerString(raw)
		if !wellFormed(value, q.ValueType) {
			continue
		}
		responses = append(responses, types.QuestionResponse{
			QuestionID: q.ID,
			Value:      value,
			ValueType:  string(q.ValueType),
		})
	}
	return responses
}

// wellFormed applies the per-type readiness check to a stringified answer.
func wellFormed(value string, vt types.ValueType) bool {
	if value == "" || len(value) > types.MaxAnswerLength {
		return false
	}

	switch vt {
	case types.ValueTypePhone:
		return digitCount(value) >= MinPhoneDigits
	case types.ValueTypeEmail:
		return emailPattern.MatchString(strings.TrimSpace(value))
	case types.ValueTypeNumber, types.ValueTypeInteger:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false
		}
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	default:
		return strings.TrimSpace(value) != ""
	}
}

// digitCount counts decimal digits, ignoring formatting characters.
func digitCount(s string) int {
	n := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			n++
		}
	}
	return n
}

// answerString coerces a raw answer value to the wire string form.
// Multi-select answers join their elements with ","; numeric formatting
// matches JSON conventions (no trailing zeros).
func answerString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = answerString(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
