package typing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/hotkeytyper/internal/inject"
)

// Result describes how a session ended.
type Result struct {
	// ID is the session's ID; a later session always has a larger one.
	ID        uint64
	Name      string
	Slot      int
	State     State
	Sent      int
	Total     int
	Truncated bool
	Err       error
	Duration  time.Duration
}

// Session is one run of typing a snippet's content.
type Session struct {
	id        uint64
	name      string
	slot      int
	text      []rune
	truncated bool
	speed     int
	hasCode   bool
	total     int
	target    inject.Window

	cancel context.CancelFunc
	done   chan struct{}
	sent   atomic.Int64

	mu     sync.Mutex
	state  State
	result Result
}

func newSession(id uint64, req Request, cancel context.CancelFunc) *Session {
	text := []rune(req.Text)
	return &Session{
		id:        id,
		name:      req.Name,
		slot:      req.Slot,
		text:      text,
		truncated: req.Truncated,
		speed:     EffectiveSpeed(req.Speed, req.HasCode),
		hasCode:   req.HasCode,
		total:     len(text),
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     Idle,
	}
}

// ID identifies the session within its engine.
func (s *Session) ID() uint64 { return s.id }

// Name returns the snippet name being typed.
func (s *Session) Name() string { return s.name }

// Speed returns the effective speed.
func (s *Session) Speed() int { return s.speed }

// Target returns the window captured when the session started.
func (s *Session) Target() inject.Window { return s.target }

// Progress returns characters sent so far and the total.
func (s *Session) Progress() (sent, total int) {
	return int(s.sent.Load()), s.total
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session has exited and released the gate.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result returns the outcome. It is only meaningful after Done is closed.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !isAllowedTransition(s.state, to) {
		return fmt.Errorf("invalid session transition %s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

func (s *Session) finish(state State, err error, d time.Duration) Result {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !isAllowedTransition(s.state, state) {
		state, err = Failed, fmt.Errorf("invalid session transition %s -> %s", s.state, state)
	}
	s.state = state
	s.result = Result{
		ID:        s.id,
		Name:      s.name,
		Slot:      s.slot,
		State:     state,
		Sent:      int(s.sent.Load()),
		Total:     s.total,
		Truncated: s.truncated,
		Err:       err,
		Duration:  d,
	}
	return s.result
}

// execute runs the session body and maps its outcome to a terminal state.
// Panics from the injectors end the session as Failed.
func (e *Engine) execute(ctx context.Context, s *Session) (state State, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = Failed, fmt.Errorf("typing aborted: %v", r)
		}
	}()

	err = e.typeAll(ctx, s)
	switch {
	case err == nil:
		return Completed, nil
	case errors.Is(err, context.Canceled):
		return Cancelled, nil
	default:
		return Failed, err
	}
}

func (e *Engine) typeAll(ctx context.Context, s *Session) error {
	e.cfg.Queue.Flush()

	if err := e.cfg.Sleeper.Sleep(ctx, SettleDelay); err != nil {
		return err
	}
	if s.target != 0 && !e.cfg.Focus.Activate(s.target) {
		e.cfg.Logger.Debug("could not restore focus to window %#x", uintptr(s.target))
	}

	var prev rune
	for _, r := range s.text {
		if err := ctx.Err(); err != nil {
			return err
		}

		if needsPause(prev, r, s.speed) {
			if err := e.cfg.Sleeper.Sleep(ctx, ContextualPause); err != nil {
				return err
			}
		}

		if err := e.deliver(r); err != nil {
			return err
		}
		s.sent.Add(1)

		if err := e.cfg.Sleeper.Sleep(ctx, NextDelay(e.cfg.Rand, s.speed)); err != nil {
			return err
		}
		prev = r
	}
	return nil
}

// deliver sends r through the primary path and falls back to the command
// encoder when that fails.
func (e *Engine) deliver(r rune) error {
	if e.cfg.Primary.SendChar(r) {
		return nil
	}
	cmd := inject.EncodeFallback(r)
	if cmd == "" {
		return nil
	}
	if e.cfg.Fallback == nil {
		return fmt.Errorf("%w for %q", ErrNoFallback, r)
	}
	if err := e.cfg.Fallback.SendCommands(cmd); err != nil {
		return fmt.Errorf("fallback for %q: %w", r, err)
	}
	return nil
}
