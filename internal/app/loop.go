package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/hotkeytyper/internal/console"
	"github.com/dshills/hotkeytyper/internal/hotkey"
	"github.com/dshills/hotkeytyper/internal/snippet"
	"github.com/dshills/hotkeytyper/internal/status"
	"github.com/dshills/hotkeytyper/internal/typing"
)

// loop is the owning event loop. Every handler runs on this goroutine.
func (app *Application) loop(ctx context.Context) error {
	events := app.opts.Host.Events()

	var changes <-chan struct{}
	if app.opts.Watcher != nil {
		changes = app.opts.Watcher.Changes()
	}
	var commands <-chan console.Command
	if app.opts.Console != nil {
		commands = app.opts.Console.Commands()
	}

	ticker := time.NewTicker(app.opts.ProgressInterval)
	defer ticker.Stop()

	app.refresh()

	for {
		select {
		case <-ctx.Done():
			app.log.Info("context done: %v", ctx.Err())
			return nil

		case <-app.quit:
			return nil

		case ev, ok := <-events:
			if !ok {
				return ErrHostClosed
			}
			app.handleEvent(ev)

		case res := <-app.finished:
			app.handleResult(res)

		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			app.reload()

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if app.handleCommand(cmd) {
				return nil
			}

		case <-ticker.C:
			if app.engine.Running() {
				app.refresh()
			}
		}
	}
}

func (app *Application) handleEvent(ev hotkey.Event) {
	switch ev.Kind {
	case hotkey.HandleCreated:
		app.register(ev.Handle)
	case hotkey.Hotkey:
		slot, ok := app.registry.Slot(ev)
		if !ok {
			app.log.Debug("ignoring hotkey id %d", ev.ID)
			return
		}
		app.trigger(slot)
	}
}

// register binds all nine slots to a new handle and reports the outcome.
func (app *Application) register(h hotkey.Handle) {
	rep := app.registry.RegisterAll(h)
	app.metrics.RecordRegistration()
	app.publish(status.Registration(len(rep.Registered), hotkey.SlotCount, rep.String()))
	if app.opts.Alerter != nil {
		app.opts.Alerter.Registration(rep)
	}
}

// trigger resolves slot against the active set and starts typing it.
// A hotkey that fires while a session is running is ignored.
func (app *Application) trigger(slot int) {
	app.metrics.RecordHotkey()

	if app.engine.Running() {
		app.metrics.RecordRejected()
		app.log.Debug("hotkey %d ignored: typing in progress", slot)
		return
	}

	set, ok := app.cfg.ActiveSet()
	if !ok {
		app.metrics.RecordMiss()
		app.publish(status.NoActiveSet())
		return
	}
	sn, ok := snippet.Resolve(set, slot)
	if !ok {
		app.metrics.RecordMiss()
		app.publish(status.NoSnippet(slot))
		return
	}

	req, err := typing.NewRequest(sn)
	if err != nil {
		app.log.Warn("%v", NewOperationError("load", sn.FilePath, err))
		if errors.Is(err, typing.ErrFileNotFound) {
			app.publish(status.FileNotFound(sn.FilePath))
			return
		}
		st := status.ReadError(err)
		app.publish(st)
		app.alert(st.Text)
		return
	}
	if req.Truncated {
		app.publish(status.Truncated())
	}

	sess, err := app.engine.Start(req)
	if err != nil {
		if errors.Is(err, typing.ErrBusy) {
			app.metrics.RecordRejected()
			return
		}
		app.publish(status.Failed(err))
		return
	}
	app.session = sess.ID()
	app.metrics.RecordStart()
	app.publish(status.Typing(sn.Name, sn.TypingSpeed))
}

// handleResult reports how a session ended. A result from a session that
// has since been replaced only counts toward metrics, so it cannot
// overwrite the newer session's status.
func (app *Application) handleResult(res typing.Result) {
	app.metrics.RecordResult(res)
	if res.ID != app.session {
		app.log.Debug("session %d ended as %s after session %d started", res.ID, res.State, app.session)
		return
	}
	switch res.State {
	case typing.Completed:
		app.publish(status.Finished(res.Name))
	case typing.Cancelled:
		app.publish(status.Cancelled())
	default:
		st := status.Failed(res.Err)
		app.publish(st)
		app.alert(st.Text)
	}
}

// handleCommand runs a console command and reports whether to quit.
func (app *Application) handleCommand(cmd console.Command) bool {
	app.log.Debug("command %s", cmd)
	switch cmd {
	case console.CmdStop:
		if !app.engine.Cancel() {
			app.log.Debug("stop: nothing is typing")
		}
	case console.CmdNextSet:
		app.nextSet()
	case console.CmdRecreate:
		if err := app.opts.Host.Recreate(); err != nil {
			app.log.Error("%v", NewComponentError("host", "recreate", err))
			app.publish(status.HostError(err))
		}
	case console.CmdRestore:
		app.restore()
	case console.CmdQuit:
		return true
	}
	return false
}

// nextSet activates the following set and persists the choice. A running
// session keeps typing the snippet it started with.
func (app *Application) nextSet() {
	set, ok := app.cfg.NextSet()
	if !ok {
		app.publish(status.NoActiveSet())
		return
	}
	if err := app.opts.Store.Save(app.cfg); err != nil {
		app.log.Warn("%v", NewOperationError("save", app.opts.Store.Path(), err))
	}
	app.publish(status.SetChanged(set.Name))
}

// reload replaces the configuration snapshot from the store. A failed load
// keeps the current snapshot.
func (app *Application) reload() {
	cfg, err := app.opts.Store.Load()
	if err == nil && cfg == nil {
		err = snippet.ErrInvalid
	}
	if err != nil {
		app.log.Warn("%v", NewOperationError("reload", app.opts.Store.Path(), err))
		app.publish(status.SettingsError(err))
		return
	}
	app.cfg = cfg
	app.metrics.RecordReload()
	app.publish(status.Reloaded(len(cfg.Sets)))
}

// restore swaps in the backup settings. The current snapshot stays when
// there is no usable backup.
func (app *Application) restore() {
	cfg, err := app.opts.Store.RestoreBackup()
	if err == nil && cfg == nil {
		err = snippet.ErrInvalid
	}
	if err != nil {
		app.log.Warn("%v", NewOperationError("restore", app.opts.Store.Path(), err))
		app.publish(status.SettingsError(err))
		return
	}
	app.cfg = cfg
	app.metrics.RecordReload()
	app.publish(status.Restored(len(cfg.Sets)))
}

func (app *Application) publish(s status.Status) {
	app.notifier.Publish(s)
	app.refresh()
}

func (app *Application) alert(msg string) {
	if app.opts.Alerter != nil {
		app.opts.Alerter.Message(msg)
	}
}
