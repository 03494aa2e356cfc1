package app

import (
	"github.com/dshills/hotkeytyper/internal/console"
	"github.com/dshills/hotkeytyper/internal/hotkey"
	"github.com/dshills/hotkeytyper/internal/snippet"
	"github.com/dshills/hotkeytyper/internal/status"
)

// previewLength is the number of graphemes shown per slot.
const previewLength = 40

// View builds the console view of the current state. It must be called
// from the goroutine running Run.
func (app *Application) View() console.View {
	rep := app.registry.Last()

	v := console.View{
		Slots: make([]console.SlotView, 0, hotkey.SlotCount),
	}
	if rep.Handle != 0 {
		v.Registration = rep.String()
	}

	set, ok := app.cfg.ActiveSet()
	if ok {
		v.SetName = set.Name
		v.SetColor = set.Color()
	} else {
		v.SetName = "(none)"
	}

	for slot := 1; slot <= hotkey.SlotCount; slot++ {
		sv := console.SlotView{
			Chord:      hotkey.SlotChord(slot).String(),
			Registered: rep.IsRegistered(slot),
		}
		if sn, ok := snippet.Resolve(set, slot); ok {
			sv.Name = sn.Name
			sv.Preview = sn.Preview(previewLength)
			sv.Bound = true
		}
		v.Slots = append(v.Slots, sv)
	}

	if s := app.engine.Active(); s != nil {
		v.Session = s.Name()
		v.Sent, v.Total = s.Progress()
	}

	if st, ok := app.notifier.Last(); ok {
		v.Status = st
	} else {
		v.Status = status.Ready()
	}
	return v
}

func (app *Application) refresh() {
	if app.opts.Console != nil {
		app.opts.Console.Update(app.View())
	}
}
