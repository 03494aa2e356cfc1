package typing

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dshills/hotkeytyper/internal/inject"
)

// Logger is the logging surface the engine uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Config wires an Engine to its collaborators. Only Primary is required.
type Config struct {
	Primary  inject.Sender
	Fallback inject.CommandSender
	Focus    inject.Focus
	Queue    inject.InputQueue
	Sleeper  Sleeper
	Rand     Rand
	Logger   Logger

	// OnFinish receives every session's result after the busy gate has
	// been released. It runs on the session goroutine.
	OnFinish func(Result)
}

// Engine runs typing sessions one at a time.
type Engine struct {
	cfg Config

	mu     sync.Mutex
	active *Session
	lastID uint64
}

// NewEngine creates an engine, filling unset collaborators with defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.Focus == nil {
		cfg.Focus = inject.NoFocus{}
	}
	if cfg.Queue == nil {
		cfg.Queue = inject.NoQueue{}
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = TimerSleeper{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Engine{cfg: cfg}
}

// Start launches a session for req and returns immediately. It returns
// ErrBusy, and leaves the running session untouched, if one is active.
func (e *Engine) Start(req Request) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.lastID++
	s := newSession(e.lastID, req, cancel)
	// Capture the target before any wait; the hotkey's own key release
	// can move focus.
	s.target = e.cfg.Focus.Foreground()
	if err := s.transition(Running); err != nil {
		cancel()
		return nil, err
	}
	e.active = s

	e.cfg.Logger.Info("typing %q: %d characters at speed %d", req.Name, s.total, s.speed)
	go e.run(ctx, s)
	return s, nil
}

// Cancel stops the running session and waits for it to exit, so a new
// session can start as soon as Cancel returns. It reports whether a
// session was running.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	s := e.active
	e.mu.Unlock()

	if s == nil {
		return false
	}
	s.cancel()
	<-s.done
	return true
}

// Running reports whether a session is in progress.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}

// Active returns the running session, or nil.
func (e *Engine) Active() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) run(ctx context.Context, s *Session) {
	start := time.Now()
	state, err := e.execute(ctx, s)

	res := s.finish(state, err, time.Since(start))

	e.mu.Lock()
	if e.active == s {
		e.active = nil
	}
	e.mu.Unlock()
	close(s.done)

	switch res.State {
	case Failed:
		e.cfg.Logger.Error("typing %q failed after %d/%d characters: %v", res.Name, res.Sent, res.Total, res.Err)
	case Cancelled:
		e.cfg.Logger.Info("typing %q cancelled after %d/%d characters", res.Name, res.Sent, res.Total)
	default:
		e.cfg.Logger.Info("typing %q completed in %s", res.Name, res.Duration.Round(time.Millisecond))
	}

	if e.cfg.OnFinish != nil {
		e.cfg.OnFinish(res)
	}
}
