package app

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dshills/hotkeytyper/internal/typing"
)

// Metrics counts hotkey and typing activity. All methods are safe for
// concurrent use.
type Metrics struct {
	hotkeys       atomic.Uint64
	rejectedBusy  atomic.Uint64
	misses        atomic.Uint64
	started       atomic.Uint64
	completed     atomic.Uint64
	cancelled     atomic.Uint64
	failed        atomic.Uint64
	charsTyped    atomic.Uint64
	typingTotalNs atomic.Int64
	registrations atomic.Uint64
	reloads       atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordHotkey counts a fired hotkey.
func (m *Metrics) RecordHotkey() {
	m.hotkeys.Add(1)
}

// RecordRejected counts a hotkey ignored because a session was running.
func (m *Metrics) RecordRejected() {
	m.rejectedBusy.Add(1)
}

// RecordMiss counts a hotkey that resolved to no snippet.
func (m *Metrics) RecordMiss() {
	m.misses.Add(1)
}

// RecordStart counts a started session.
func (m *Metrics) RecordStart() {
	m.started.Add(1)
}

// RecordResult records a finished session.
func (m *Metrics) RecordResult(res typing.Result) {
	switch res.State {
	case typing.Completed:
		m.completed.Add(1)
	case typing.Cancelled:
		m.cancelled.Add(1)
	case typing.Failed:
		m.failed.Add(1)
	}
	if res.Sent > 0 {
		m.charsTyped.Add(uint64(res.Sent))
	}
	m.typingTotalNs.Add(res.Duration.Nanoseconds())
}

// RecordRegistration counts a registration pass.
func (m *Metrics) RecordRegistration() {
	m.registrations.Add(1)
}

// RecordReload counts a settings reload.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:        time.Since(m.startTime),
		Hotkeys:       m.hotkeys.Load(),
		RejectedBusy:  m.rejectedBusy.Load(),
		Misses:        m.misses.Load(),
		Started:       m.started.Load(),
		Completed:     m.completed.Load(),
		Cancelled:     m.cancelled.Load(),
		Failed:        m.failed.Load(),
		CharsTyped:    m.charsTyped.Load(),
		TypingTime:    time.Duration(m.typingTotalNs.Load()),
		Registrations: m.registrations.Load(),
		Reloads:       m.reloads.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.hotkeys.Store(0)
	m.rejectedBusy.Store(0)
	m.misses.Store(0)
	m.started.Store(0)
	m.completed.Store(0)
	m.cancelled.Store(0)
	m.failed.Store(0)
	m.charsTyped.Store(0)
	m.typingTotalNs.Store(0)
	m.registrations.Store(0)
	m.reloads.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	Hotkeys       uint64
	RejectedBusy  uint64
	Misses        uint64
	Started       uint64
	Completed     uint64
	Cancelled     uint64
	Failed        uint64
	CharsTyped    uint64
	TypingTime    time.Duration
	Registrations uint64
	Reloads       uint64
}

// Finished returns the number of sessions that reached a terminal state.
func (s MetricsSnapshot) Finished() uint64 {
	return s.Completed + s.Cancelled + s.Failed
}

// CharsPerSecond returns the average typing rate across all sessions.
func (s MetricsSnapshot) CharsPerSecond() float64 {
	if s.TypingTime <= 0 {
		return 0
	}
	return float64(s.CharsTyped) / s.TypingTime.Seconds()
}

// SuccessRate returns the percentage of finished sessions that completed.
func (s MetricsSnapshot) SuccessRate() float64 {
	n := s.Finished()
	if n == 0 {
		return 0
	}
	return float64(s.Completed) / float64(n) * 100
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("%d hotkeys, %d sessions (%d completed, %d cancelled, %d failed), %d characters typed",
		s.Hotkeys, s.Started, s.Completed, s.Cancelled, s.Failed, s.CharsTyped)
}

// Metrics returns the application's metrics instance.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
