// Package visibility owns the authoritative per-question visibility state
// for a form session.
package visibility

import (
	"context"
	"log/slog"
	"sync"

	"github.com/calyx-health/formgate/internal/evaluator"
	"github.com/calyx-health/formgate/internal/rules"
	"github.com/calyx-health/formgate/internal/types"
)

/*
 * Visibility state store.
 *
 * Classifies every question into exactly one of three sets at all times:
 * visible, hidden, or evaluating. All questions start visible; only an
 * evaluation pass moves them. A pass marks rule-bearing questions as
 * evaluating, projects the current answers, calls the evaluator, seeds the
 * new visible set with every no-rule question, then applies verdicts in
 * binding order: Show and Unknown keep a question visible (fail-open), Hide
 * moves it to hidden. Classification flips emit Change events.
 *
 * Concurrency: the evaluator call runs outside the lock. Each pass takes a
 * monotonically increasing sequence number; results of a pass that is no
 * longer the newest are discarded, so an out-of-order response can never
 * overwrite state derived from a fresher answer map.
 *
 * Failure: the evaluator client never errors (it reports Unknown verdicts).
 * If extraction or projection panics anyway, the pass fails open - every
 * question visible, evaluating cleared, error logged, nothing propagated.
 * Hiding a required intake question incorrectly is worse than showing an
 * unnecessary one.
 */

// ReasonRuleEvaluation tags changes produced by an evaluation pass.
const ReasonRuleEvaluation = "rule_evaluation"

// State classifies a question at a point in time.
type State int

const (
	// StateVisible means the question should be shown.
	StateVisible State = iota

	// StateHidden means the question should be hidden and excluded from
	// submission payloads.
	StateHidden

	// StateEvaluating means a pass is in flight for this question.
	// Readers treat it as visible to avoid layout flicker.
	StateEvaluating
)

// Change is a discrete visibility flip for one question.
type Change struct {
	QuestionID types.QuestionID
	Visible    bool
	Reason     string
}

// Evaluator is the remote evaluation dependency.
// *evaluator.Client satisfies it; tests substitute stubs.
type Evaluator interface {
	EvaluateRules(ctx context.Context, responses []types.QuestionResponse, ruleList []types.Rule) []evaluator.Verdict
}

// AnswerSource provides the current answer map.
// *answers.Map satisfies it.
type AnswerSource interface {
	Snapshot() map[types.QuestionID]any
}

// Store holds and transitions visibility state for one form session.
// Construct at session start, discard at session end; state is never
// persisted.
type Store struct {
	questions []types.Question
	answers   AnswerSource
	eval      Evaluator
	logger    *slog.Logger

	mu      sync.Mutex
	state   map[types.QuestionID]State
	passSeq uint64
	subs    []func(Change)
}

// NewStore creates a store with every question visible.
func NewStore(questions []types.Question, src AnswerSource, eval Evaluator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	state := make(map[types.QuestionID]State, len(questions))
	for _, q := range questions {
		state[q.ID] = StateVisible
	}
	return &Store{
		questions: questions,
		answers:   src,
		eval:      eval,
		logger:    logger,
		state:     state,
	}
}

// OnChange registers a callback invoked for every visibility flip.
// Callbacks run synchronously at the end of a pass, after state has been
// replaced, and must not call back into the store.
func (s *Store) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// IsQuestionVisible reports whether a question should currently be shown.
// Evaluating counts as visible; unknown ids are visible (fail-open).
func (s *Store) IsQuestionVisible(id types.QuestionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[id] != StateHidden
}

// VisibleQuestions returns the currently shown questions in form order.
func (s *Store) VisibleQuestions() []types.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if s.state[q.ID] != StateHidden {
			out = append(out, q)
		}
	}
	return out
}

// VisibilityMap returns the per-question show/hide decision.
func (s *Store) VisibilityMap() map[types.QuestionID]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[types.QuestionID]bool, len(s.questions))
	for _, q := range s.questions {
		out[q.ID] = s.state[q.ID] != StateHidden
	}
	return out
}

// StateOf returns the exact classification of a question.
func (s *Store) StateOf(id types.QuestionID) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[id]
}

// Refresh runs one full evaluation pass against the current answer map.
// Never returns an error; all failure modes degrade to visible questions.
func (s *Store) Refresh(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("evaluation pass panicked, failing open", "panic", r)
			s.failOpen()
		}
	}()
	s.refresh(ctx)
}

func (s *Store) refresh(ctx context.Context) {
	bindings := rules.Extract(s.questions)
	if len(bindings) == 0 {
		return
	}

	// Snapshot prior classification for the diff and mark rule-bearing
	// questions as evaluating. Pass sequence decides result freshness.
	s.mu.Lock()
	s.passSeq++
	pass := s.passSeq
	prevVisible := make(map[types.QuestionID]bool, len(s.questions))
	for _, q := range s.questions {
		prevVisible[q.ID] = s.state[q.ID] != StateHidden
	}
	for _, b := range bindings {
		s.state[b.Question.ID] = StateEvaluating
	}
	s.mu.Unlock()

	// Projection and the network call run unlocked; the suspension point
	// is the evaluator request.
	responses := rules.Project(s.answers.Snapshot(), s.questions)
	verdicts := s.eval.EvaluateRules(ctx, responses, rules.Rules(bindings))

	s.mu.Lock()
	if pass != s.passSeq {
		// A newer pass started while this one was in flight. Its results
		// reflect a stale answer map; drop them.
		s.mu.Unlock()
		s.logger.Debug("discarding stale evaluation pass", "pass", pass)
		return
	}

	next := make(map[types.QuestionID]State, len(s.questions))
	for _, q := range s.questions {
		if q.Rule == nil {
			next[q.ID] = StateVisible
		}
	}
	for i, b := range bindings {
		if i < len(verdicts) && verdicts[i] == evaluator.VerdictHide {
			next[b.Question.ID] = StateHidden
		} else {
			next[b.Question.ID] = StateVisible
		}
	}
	s.state = next

	var changes []Change
	for _, q := range s.questions {
		visible := next[q.ID] != StateHidden
		if visible != prevVisible[q.ID] {
			changes = append(changes, Change{QuestionID: q.ID, Visible: visible, Reason: ReasonRuleEvaluation})
		}
	}
	subs := make([]func(Change), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
}

// failOpen marks every question visible and clears evaluating.
func (s *Store) failOpen() {
	s.mu.Lock()
	prevVisible := make(map[types.QuestionID]bool, len(s.questions))
	for _, q := range s.questions {
		prevVisible[q.ID] = s.state[q.ID] != StateHidden
		s.state[q.ID] = StateVisible
	}
	subs := make([]func(Change), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, q := range s.questions {
		if !prevVisible[q.ID] {
			for _, fn := range subs {
				fn(Change{QuestionID: q.ID, Visible: true, Reason: ReasonRuleEvaluation})
			}
		}
	}
}
