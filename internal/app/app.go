// Package app provides the main application structure for Hotkey Typer.
// It wires the hotkey host, the snippet configuration and the typing
// engine together and owns the event loop that connects them.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/hotkeytyper/internal/console"
	"github.com/dshills/hotkeytyper/internal/hotkey"
	"github.com/dshills/hotkeytyper/internal/inject"
	"github.com/dshills/hotkeytyper/internal/snippet"
	"github.com/dshills/hotkeytyper/internal/status"
	"github.com/dshills/hotkeytyper/internal/typing"
)

// DefaultProgressInterval is how often the console is refreshed while a
// session is typing.
const DefaultProgressInterval = 100 * time.Millisecond

// Store loads and saves the snippet configuration.
type Store interface {
	// Load always returns a usable configuration; a non-nil error says
	// why defaults were substituted.
	Load() (*snippet.Configuration, error)
	Save(cfg *snippet.Configuration) error
	// RestoreBackup puts the previous settings file back and returns it.
	RestoreBackup() (*snippet.Configuration, error)
	Path() string
}

// Watcher reports changes to the settings file.
type Watcher interface {
	Changes() <-chan struct{}
	Close() error
}

// Console presents state and delivers user commands.
type Console interface {
	Commands() <-chan console.Command
	Update(v console.View)
	Close()
}

// Alerter raises desktop notifications.
type Alerter interface {
	Registration(rep hotkey.Report)
	Message(msg string)
}

// Options configures the application. Host, Platform.Primary and Store
// are required; everything else is optional.
type Options struct {
	Host     hotkey.Host
	Platform inject.Platform
	Store    Store
	Watcher  Watcher
	Console  Console
	Alerter  Alerter
	Logger   *Logger

	// Sleeper and Rand override the engine's timing sources.
	Sleeper typing.Sleeper
	Rand    typing.Rand

	// ProgressInterval defaults to DefaultProgressInterval.
	ProgressInterval time.Duration
}

// Application is the central coordinator. Configuration, registration and
// status state are only touched from the goroutine running Run.
type Application struct {
	opts Options
	log  *Logger

	registry *hotkey.Registry
	engine   *typing.Engine
	notifier *status.Notifier
	metrics  *Metrics

	cfg      *snippet.Configuration
	finished chan typing.Result
	session  uint64 // ID of the last session started

	started  atomic.Bool
	running  atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Host == nil {
		return nil, NewComponentError("host", "", ErrMissingComponent)
	}
	if opts.Platform.Primary == nil {
		return nil, NewComponentError("injector", "", ErrMissingComponent)
	}
	if opts.Store == nil {
		return nil, NewComponentError("store", "", ErrMissingComponent)
	}
	if opts.Logger == nil {
		opts.Logger = NullLogger
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}

	app := &Application{
		opts:     opts,
		log:      opts.Logger,
		notifier: status.NewNotifier(),
		metrics:  NewMetrics(),
		finished: make(chan typing.Result, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Pending input belongs to the host's thread, so a host that can
	// drain it serves as the queue unless the platform supplies one.
	queue := opts.Platform.Queue
	if q, ok := opts.Host.(inject.InputQueue); ok && queue == nil {
		queue = q
	}

	app.registry = hotkey.NewRegistry(opts.Host.Binder(), app.log.WithComponent("hotkey"))
	app.engine = typing.NewEngine(typing.Config{
		Primary:  opts.Platform.Primary,
		Fallback: opts.Platform.Fallback,
		Focus:    opts.Platform.Focus,
		Queue:    queue,
		Sleeper:  opts.Sleeper,
		Rand:     opts.Rand,
		Logger:   app.log.WithComponent("typing"),
		OnFinish: app.onFinish,
	})
	app.notifier.Subscribe(app.logStatus)

	return app, nil
}

// Run loads the configuration and processes events until ctx is done,
// Quit is called, or the console asks to quit. It cleans up every
// component before returning, so an Application runs at most once.
func (app *Application) Run(ctx context.Context) error {
	if !app.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	app.running.Store(true)
	defer app.running.Store(false)
	defer app.shutdown()

	app.loadInitial()
	return app.loop(ctx)
}

// Quit asks a running Run to return. It is safe to call more than once
// and from any goroutine.
func (app *Application) Quit() {
	app.quitOnce.Do(func() { close(app.quit) })
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Status returns the status notifier so callers can observe status lines.
func (app *Application) Status() *status.Notifier {
	return app.notifier
}

// Engine returns the typing engine.
func (app *Application) Engine() *typing.Engine {
	return app.engine
}

// Registry returns the hotkey registry.
func (app *Application) Registry() *hotkey.Registry {
	return app.registry
}

func (app *Application) loadInitial() {
	cfg, err := app.opts.Store.Load()
	if cfg == nil {
		cfg = snippet.DefaultConfiguration()
	}
	app.cfg = cfg
	if err != nil {
		app.log.Warn("loading settings from %s: %v", app.opts.Store.Path(), err)
		app.publish(status.SettingsError(err))
		return
	}
	if set, ok := cfg.ActiveSet(); ok {
		app.log.Info("active set %q with %d snippets", set.Name, len(set.Snippets))
	}
}

// onFinish runs on the session goroutine.
func (app *Application) onFinish(res typing.Result) {
	select {
	case app.finished <- res:
	case <-app.done:
	}
}

// shutdown releases components in reverse order of use.
func (app *Application) shutdown() {
	if app.engine.Cancel() {
		app.log.Info("typing cancelled by shutdown")
	}
	close(app.done)

	app.registry.UnregisterAll()

	var errs ErrorList
	if app.opts.Watcher != nil {
		if err := app.opts.Watcher.Close(); err != nil {
			errs.Add(NewComponentError("watcher", "close", err))
		}
	}
	if app.opts.Console != nil {
		app.opts.Console.Close()
	}
	if err := app.opts.Host.Close(); err != nil {
		errs.Add(NewComponentError("host", "close", err))
	}
	if err := errs.AsError(); err != nil {
		app.log.Warn("shutdown: %v", err)
	}
	app.log.Info("stopped: %s", app.metrics.Snapshot())
}

// logStatus mirrors status lines into the log.
func (app *Application) logStatus(s status.Status) {
	switch s.Level {
	case status.LevelError:
		app.log.Error("%s", s.Text)
	case status.LevelWarning:
		app.log.Warn("%s", s.Text)
	default:
		app.log.Info("%s", s.Text)
	}
}
