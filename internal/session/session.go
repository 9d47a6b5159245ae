// Package session wires a form session together: the answer map, the
// visibility store, and the debounced evaluation scheduler.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/calyx-health/formgate/internal/answers"
	"github.com/calyx-health/formgate/internal/types"
	"github.com/calyx-health/formgate/internal/visibility"
)

/*
 * Evaluation scheduling.
 *
 * One unconditional pass runs on Start. After that, every answer change
 * (re)arms a debounce timer; the pass runs when the timer expires without
 * being reset. A burst of keystrokes therefore costs one evaluation request
 * after the user pauses, not one per keystroke. RefreshVisibility bypasses
 * the debounce for callers that need an immediate pass, e.g. after
 * programmatically resetting the form.
 *
 * The timer pattern follows the same shape as batched change watchers
 * elsewhere in the ecosystem: collect into a pending flag, arm or reset the
 * timer on arrival, fire once on expiry.
 */

// DefaultDebounce is the answer-change coalescing window.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Session.
type Options struct {
	// Debounce is how long to wait for more answer changes before
	// triggering a pass. Default: DefaultDebounce.
	Debounce time.Duration

	// ChangeBuffer is the subscription channel buffer size. Default: 64.
	ChangeBuffer int
}

// Session owns the evaluation lifecycle for one mounted form.
type Session struct {
	store    *visibility.Store
	answers  *answers.Map
	debounce time.Duration
	buffer   int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New creates a session over the given store and answer map.
func New(store *visibility.Store, m *answers.Map, opts *Options) *Session {
	debounce := DefaultDebounce
	buffer := 64
	if opts != nil {
		if opts.Debounce > 0 {
			debounce = opts.Debounce
		}
		if opts.ChangeBuffer > 0 {
			buffer = opts.ChangeBuffer
		}
	}
	return &Session{
		store:    store,
		answers:  m,
		debounce: debounce,
		buffer:   buffer,
		done:     make(chan struct{}),
	}
}

// Start runs the initial evaluation pass and begins watching answer
// changes. Idempotent; the second and later calls are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	// Mount pass runs before any change can arrive.
	s.store.Refresh(ctx)

	changes := s.answers.Subscribe(s.buffer)
	s.wg.Add(1)
	go s.debounceLoop(ctx, changes)
}

// Stop ends scheduling. In-flight passes finish; their results may still be
// discarded by the store's pass sequencing.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// RefreshVisibility forces an immediate full evaluation pass, outside the
// debounce path.
func (s *Session) RefreshVisibility(ctx context.Context) {
	s.store.Refresh(ctx)
}

// Store exposes the visibility store for readers.
func (s *Session) Store() *visibility.Store {
	return s.store
}

// debounceLoop coalesces answer changes and triggers passes.
func (s *Session) debounceLoop(ctx context.Context, changes <-chan types.QuestionID) {
	defer s.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return
		case <-s.done:
			stopTimer()
			return
		case <-changes:
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
			} else {
				timer.Reset(s.debounce)
			}
		case <-timerC:
			stopTimer()
			s.store.Refresh(ctx)
		}
	}
}
