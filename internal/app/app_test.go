package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/hotkeytyper/internal/console"
	"github.com/dshills/hotkeytyper/internal/hotkey"
	"github.com/dshills/hotkeytyper/internal/inject"
	"github.com/dshills/hotkeytyper/internal/snippet"
	"github.com/dshills/hotkeytyper/internal/status"
	"github.com/dshills/hotkeytyper/internal/typing"
)

type fakeBinder struct {
	mu   sync.Mutex
	fail map[int]bool
	live map[hotkey.Handle]map[int]bool
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{fail: make(map[int]bool), live: make(map[hotkey.Handle]map[int]bool)}
}

func (b *fakeBinder) Register(h hotkey.Handle, id int, _ hotkey.Chord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail[id] {
		return hotkey.ErrRegister
	}
	if b.live[h] == nil {
		b.live[h] = make(map[int]bool)
	}
	b.live[h][id] = true
	return nil
}

func (b *fakeBinder) Unregister(h hotkey.Handle, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.live[h][id] {
		return hotkey.ErrNotRegistered
	}
	delete(b.live[h], id)
	return nil
}

func (b *fakeBinder) count(h hotkey.Handle) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live[h])
}

type fakeHost struct {
	mu     sync.Mutex
	events chan hotkey.Event
	binder *fakeBinder
	handle hotkey.Handle
	closed bool
}

// newFakeHost queues the first HandleCreated event, as the real hosts do.
func newFakeHost() *fakeHost {
	h := &fakeHost{events: make(chan hotkey.Event, 16), binder: newFakeBinder(), handle: 1}
	h.events <- hotkey.Event{Kind: hotkey.HandleCreated, Handle: 1}
	return h
}

func (h *fakeHost) Events() <-chan hotkey.Event { return h.events }

func (h *fakeHost) Binder() hotkey.Binder { return h.binder }

func (h *fakeHost) Recreate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return hotkey.ErrHostClosed
	}
	h.handle++
	h.events <- hotkey.Event{Kind: hotkey.HandleCreated, Handle: h.handle}
	return nil
}

func (h *fakeHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHost) press(slot int) {
	h.mu.Lock()
	handle := h.handle
	h.mu.Unlock()
	h.events <- hotkey.Event{Kind: hotkey.Hotkey, Handle: handle, ID: hotkey.SlotID(slot)}
}

func (h *fakeHost) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// flushingHost is a host that can also drain pending input.
type flushingHost struct {
	*fakeHost
	flushes atomic.Int32
}

func (h *flushingHost) Flush() { h.flushes.Add(1) }

type memStore struct {
	mu      sync.Mutex
	cfg     *snippet.Configuration
	loadErr error
	saves   int
	backup  *snippet.Configuration
}

func (s *memStore) Load() (*snippet.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return snippet.DefaultConfiguration(), s.loadErr
	}
	return s.cfg.Clone(), nil
}

func (s *memStore) Save(cfg *snippet.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	s.saves++
	return nil
}

func (s *memStore) RestoreBackup() (*snippet.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backup == nil {
		return nil, errors.New("no backup")
	}
	s.cfg = s.backup.Clone()
	return s.backup.Clone(), nil
}

func (s *memStore) Path() string { return "memory" }

func (s *memStore) set(fn func(*memStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type fakeWatcher struct {
	ch     chan struct{}
	mu     sync.Mutex
	closed bool
}

func (w *fakeWatcher) Changes() <-chan struct{} { return w.ch }

func (w *fakeWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

type fakeConsole struct {
	cmds   chan console.Command
	mu     sync.Mutex
	last   console.View
	closed bool
}

func (c *fakeConsole) Commands() <-chan console.Command { return c.cmds }

func (c *fakeConsole) Update(v console.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = v
}

func (c *fakeConsole) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConsole) view() console.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type fakeAlerter struct {
	mu       sync.Mutex
	reports  []hotkey.Report
	messages []string
}

func (a *fakeAlerter) Registration(rep hotkey.Report) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, rep)
}

func (a *fakeAlerter) Message(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, msg)
}

func (a *fakeAlerter) snapshot() ([]hotkey.Report, []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]hotkey.Report(nil), a.reports...), append([]string(nil), a.messages...)
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []rune
	reject bool
}

func (s *recordingSender) SendChar(r rune) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject {
		return false
	}
	s.sent = append(s.sent, r)
	return true
}

func (s *recordingSender) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.sent)
}

type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// blockingSleeper holds every session until it is cancelled.
type blockingSleeper struct{}

func (blockingSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return min(int(f), n-1) }

type harness struct {
	app      *Application
	host     *fakeHost
	store    *memStore
	watcher  *fakeWatcher
	console  *fakeConsole
	alerter  *fakeAlerter
	sender   *recordingSender
	statuses chan status.Status
	cancel   context.CancelFunc
	result   chan error
}

func testConfig(t *testing.T) *snippet.Configuration {
	t.Helper()
	cfg := snippet.NewConfiguration()
	set := snippet.NewSet("Work")
	sn := snippet.New("Greeting", 3)
	sn.Content = "hi"
	if err := set.AddSnippet(sn); err != nil {
		t.Fatalf("AddSnippet: %v", err)
	}
	if err := cfg.AddSet(set, true); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	return cfg
}

func newHarness(t *testing.T, cfg *snippet.Configuration, configure func(*Options)) *harness {
	t.Helper()
	h := &harness{
		host:     newFakeHost(),
		store:    &memStore{cfg: cfg},
		watcher:  &fakeWatcher{ch: make(chan struct{}, 1)},
		console:  &fakeConsole{cmds: make(chan console.Command, 4)},
		alerter:  &fakeAlerter{},
		sender:   &recordingSender{},
		statuses: make(chan status.Status, 256),
		result:   make(chan error, 1),
	}
	opts := Options{
		Host:     h.host,
		Platform: inject.Platform{Primary: h.sender},
		Store:    h.store,
		Watcher:  h.watcher,
		Console:  h.console,
		Alerter:  h.alerter,
		Sleeper:  instantSleeper{},
		Rand:     fixedRand(0),
	}
	if configure != nil {
		configure(&opts)
	}

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.app = app
	app.Status().Subscribe(func(s status.Status) { h.statuses <- s })

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.result <- app.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.result:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return")
		}
	})
	return h
}

// expect reads status lines until one contains text.
func (h *harness) expect(t *testing.T, text string) status.Status {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.statuses:
			if strings.Contains(s.Text, text) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", text)
			return status.Status{}
		}
	}
}

func (h *harness) stop(t *testing.T) error {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.result:
		h.result <- err
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewRequiresComponents(t *testing.T) {
	host := newFakeHost()
	tests := []struct {
		name string
		opts Options
	}{
		{"no host", Options{Platform: inject.Platform{Primary: &recordingSender{}}, Store: &memStore{}}},
		{"no injector", Options{Host: host, Store: &memStore{}}},
		{"no store", Options{Host: host, Platform: inject.Platform{Primary: &recordingSender{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if !errors.Is(err, ErrMissingComponent) {
				t.Errorf("err = %v, expected ErrMissingComponent", err)
			}
		})
	}
}

func TestRunRegistersOnHandleCreated(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)

	st := h.expect(t, "All hotkeys (CTRL+SHIFT+1-9) registered")
	if st.Level != status.LevelSuccess {
		t.Errorf("level = %v, expected success", st.Level)
	}
	if n := h.host.binder.count(1); n != hotkey.SlotCount {
		t.Errorf("bound %d ids, expected %d", n, hotkey.SlotCount)
	}
	reports, _ := h.alerter.snapshot()
	if len(reports) != 1 || reports[0].Outcome() != hotkey.AllRegistered {
		t.Errorf("alerter reports = %+v", reports)
	}
}

func TestRunPartialRegistration(t *testing.T) {
	host := newFakeHost()
	host.binder.fail[hotkey.SlotID(2)] = true
	host.binder.fail[hotkey.SlotID(5)] = true
	h := newHarness(t, testConfig(t), func(o *Options) { o.Host = host })

	st := h.expect(t, "7/9 hotkeys registered. Failed: 2, 5")
	if st.Level != status.LevelWarning {
		t.Errorf("level = %v, expected warning", st.Level)
	}
	reports, _ := h.alerter.snapshot()
	if len(reports) != 1 || reports[0].Outcome() != hotkey.PartiallyRegistered {
		t.Errorf("alerter reports = %+v", reports)
	}
}

func TestHotkeyTypesSnippet(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.host.press(3)
	h.expect(t, "Typing 'Greeting' at speed 5...")
	h.expect(t, "Finished typing 'Greeting'")

	if got := h.sender.text(); got != "hi" {
		t.Errorf("typed %q, expected %q", got, "hi")
	}
	snap := h.app.Metrics().Snapshot()
	if snap.Started != 1 || snap.Completed != 1 || snap.CharsTyped != 2 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestHotkeyNoSnippet(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.host.press(5)
	st := h.expect(t, "No snippet assigned to CTRL+SHIFT+5")
	if st.Level != status.LevelWarning {
		t.Errorf("level = %v", st.Level)
	}
	if got := h.sender.text(); got != "" {
		t.Errorf("typed %q, expected nothing", got)
	}
}

func TestHotkeyNoActiveSet(t *testing.T) {
	h := newHarness(t, snippet.NewConfiguration(), nil)
	h.expect(t, "registered")

	h.host.press(1)
	h.expect(t, "No active snippet set")
	if snap := h.app.Metrics().Snapshot(); snap.Misses != 1 {
		t.Errorf("misses = %d, expected 1", snap.Misses)
	}
}

func TestHotkeyFileNotFound(t *testing.T) {
	cfg := testConfig(t)
	missing := filepath.Join(t.TempDir(), "missing.txt")
	set, _ := cfg.ActiveSet()
	set.Snippets[0].UseFile = true
	set.Snippets[0].FilePath = missing

	h := newHarness(t, cfg, nil)
	h.expect(t, "registered")

	h.host.press(3)
	h.expect(t, "File not found: "+missing)
	if h.app.Engine().Running() {
		t.Error("no session should start for a missing file")
	}
}

func TestHotkeyIgnoredWhileTyping(t *testing.T) {
	h := newHarness(t, testConfig(t), func(o *Options) { o.Sleeper = blockingSleeper{} })
	h.expect(t, "registered")

	h.host.press(3)
	h.expect(t, "Typing 'Greeting'")

	h.host.press(3)
	waitFor(t, "second hotkey", func() bool { return h.app.Metrics().Snapshot().Hotkeys == 2 })

	h.console.cmds <- console.CmdStop
	st := h.expect(t, "Typing cancelled")
	if st.Level != status.LevelError {
		t.Errorf("level = %v", st.Level)
	}

	snap := h.app.Metrics().Snapshot()
	if snap.RejectedBusy != 1 || snap.Started != 1 || snap.Cancelled != 1 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestSessionFailureAlerts(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.sender.reject = true
	h.expect(t, "registered")

	h.host.press(3)
	st := h.expect(t, "Error typing text")
	if st.Level != status.LevelError {
		t.Errorf("level = %v", st.Level)
	}
	waitFor(t, "alert", func() bool {
		_, msgs := h.alerter.snapshot()
		return len(msgs) == 1 && strings.HasPrefix(msgs[0], "Error typing text")
	})
}

func TestNextSetCommand(t *testing.T) {
	cfg := testConfig(t)
	second := snippet.NewSet("Personal")
	if err := cfg.AddSet(second, false); err != nil {
		t.Fatalf("AddSet: %v", err)
	}

	h := newHarness(t, cfg, nil)
	h.expect(t, "registered")

	h.console.cmds <- console.CmdNextSet
	h.expect(t, "Active set: Personal")

	h.store.mu.Lock()
	saves, active := h.store.saves, h.store.cfg.ActiveSetID
	h.store.mu.Unlock()
	if saves != 1 || active != second.ID {
		t.Errorf("saves = %d, active = %q, expected 1, %q", saves, active, second.ID)
	}

	h.host.press(3)
	h.expect(t, "No snippet assigned to CTRL+SHIFT+3")
}

func TestReloadSwapsSnapshot(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.store.set(func(s *memStore) {
		set, _ := s.cfg.ActiveSet()
		set.Snippets[0].Content = "new"
	})
	h.watcher.ch <- struct{}{}
	h.expect(t, "Settings reloaded (1 sets)")

	h.host.press(3)
	h.expect(t, "Finished typing")
	if got := h.sender.text(); got != "new" {
		t.Errorf("typed %q, expected %q", got, "new")
	}
}

func TestReloadErrorKeepsSnapshot(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.store.set(func(s *memStore) { s.loadErr = errors.New("bad json") })
	h.watcher.ch <- struct{}{}
	h.expect(t, "Error loading settings: bad json")

	h.host.press(3)
	h.expect(t, "Finished typing 'Greeting'")
}

func TestRecreateReregisters(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.console.cmds <- console.CmdRecreate
	h.expect(t, "All hotkeys (CTRL+SHIFT+1-9) registered")

	waitFor(t, "new handle", func() bool { return h.app.Registry().Handle() == 2 })
	if n := h.host.binder.count(1); n != 0 {
		t.Errorf("old handle still has %d ids", n)
	}
	if n := h.host.binder.count(2); n != hotkey.SlotCount {
		t.Errorf("new handle has %d ids", n)
	}
}

func TestQuitCommandShutsDown(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.console.cmds <- console.CmdQuit
	select {
	case err := <-h.result:
		h.result <- err
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}

	if !h.host.isClosed() {
		t.Error("host not closed")
	}
	if n := h.host.binder.count(1); n != 0 {
		t.Errorf("%d ids still registered", n)
	}
	h.watcher.mu.Lock()
	closed := h.watcher.closed
	h.watcher.mu.Unlock()
	if !closed {
		t.Error("watcher not closed")
	}
	if h.app.IsRunning() {
		t.Error("IsRunning after shutdown")
	}
}

func TestShutdownCancelsSession(t *testing.T) {
	h := newHarness(t, testConfig(t), func(o *Options) { o.Sleeper = blockingSleeper{} })
	h.expect(t, "registered")

	h.host.press(3)
	h.expect(t, "Typing 'Greeting'")

	if err := h.stop(t); err != nil {
		t.Errorf("Run = %v", err)
	}
	if h.app.Engine().Running() {
		t.Error("session still running after shutdown")
	}
}

func TestRunTwice(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	if err := h.app.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, expected ErrAlreadyRunning", err)
	}
}

func TestQuitFromOtherGoroutine(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.app.Quit()
	h.app.Quit()
	select {
	case err := <-h.result:
		h.result <- err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestConsoleView(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	waitFor(t, "view", func() bool { return h.console.view().Registration != "" })
	v := h.console.view()
	if v.SetName != "Work" {
		t.Errorf("SetName = %q", v.SetName)
	}
	if len(v.Slots) != hotkey.SlotCount {
		t.Fatalf("%d slots, expected %d", len(v.Slots), hotkey.SlotCount)
	}
	slot := v.Slots[2]
	if !slot.Bound || slot.Name != "Greeting" || slot.Preview != "hi" || !slot.Registered {
		t.Errorf("slot 3 = %+v", slot)
	}
	if slot.Chord != "Ctrl+Shift+3" {
		t.Errorf("chord = %q", slot.Chord)
	}
	if v.Slots[0].Bound {
		t.Error("slot 1 should be unbound")
	}
}

func TestHostFlushesBeforeTyping(t *testing.T) {
	var fh *flushingHost
	h := newHarness(t, testConfig(t), func(o *Options) {
		fh = &flushingHost{fakeHost: o.Host.(*fakeHost)}
		o.Host = fh
	})
	h.expect(t, "registered")

	h.host.press(3)
	h.expect(t, "Finished typing 'Greeting'")
	if n := fh.flushes.Load(); n != 1 {
		t.Errorf("flushed %d times, expected 1", n)
	}
}

func TestStaleResultKeepsStatus(t *testing.T) {
	h := newHarness(t, testConfig(t), func(o *Options) { o.Sleeper = blockingSleeper{} })
	h.expect(t, "registered")

	h.host.press(3)
	h.expect(t, "Typing 'Greeting'")
	active := h.app.Engine().Active()
	if active == nil {
		t.Fatal("no active session")
	}

	h.app.finished <- typing.Result{ID: active.ID() - 1, Name: "Earlier", State: typing.Cancelled}
	waitFor(t, "stale result", func() bool { return h.app.Metrics().Snapshot().Cancelled == 1 })

	h.console.cmds <- console.CmdNextSet
	for {
		st := h.expect(t, "")
		if strings.Contains(st.Text, "cancelled") {
			t.Fatalf("stale result published %q", st.Text)
		}
		if strings.HasPrefix(st.Text, "Active set:") {
			break
		}
	}
	waitFor(t, "view status", func() bool {
		return strings.HasPrefix(h.console.view().Status.Text, "Active set:")
	})
	if !h.app.Engine().Running() {
		t.Error("session stopped by a stale result")
	}

	h.console.cmds <- console.CmdStop
	h.expect(t, "Typing cancelled")
}

func TestRestoreCommand(t *testing.T) {
	h := newHarness(t, testConfig(t), nil)
	h.expect(t, "registered")

	h.console.cmds <- console.CmdRestore
	h.expect(t, "Error loading settings: no backup")
	if v := h.console.view(); v.SetName != "Work" {
		t.Fatalf("SetName = %q after failed restore", v.SetName)
	}

	backup := testConfig(t)
	if err := backup.AddSet(snippet.NewSet("Home"), true); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	h.store.set(func(s *memStore) { s.backup = backup })

	h.console.cmds <- console.CmdRestore
	h.expect(t, "Settings restored from backup (2 sets)")
	waitFor(t, "restored set", func() bool { return h.console.view().SetName == "Home" })
}
