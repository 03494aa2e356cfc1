// Package console draws a small terminal status screen and turns key
// presses into commands for the application loop.
package console

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/hotkeytyper/internal/status"
)

// Command is a user request from the console.
type Command int

const (
	CmdStop Command = iota
	CmdNextSet
	CmdRecreate
	CmdRestore
	CmdQuit
)

func (c Command) String() string {
	switch c {
	case CmdStop:
		return "stop"
	case CmdNextSet:
		return "next-set"
	case CmdRecreate:
		return "recreate"
	case CmdRestore:
		return "restore"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// SlotView describes one hotkey row.
type SlotView struct {
	Chord      string
	Name       string
	Preview    string
	Bound      bool
	Registered bool
}

// View is everything the console renders.
type View struct {
	SetName      string
	SetColor     colorful.Color
	Registration string
	Slots        []SlotView
	Session      string
	Sent, Total  int
	Status       status.Status
}

const helpLine = "Esc/s stop  Tab next set  r re-register  b restore backup  q quit"

// Console owns a tcell screen.
type Console struct {
	screen   tcell.Screen
	commands chan Command

	mu      sync.Mutex
	view    View
	started bool
	done    chan struct{}
}

// New wraps screen. The screen is initialised by Start.
func New(screen tcell.Screen) *Console {
	return &Console{
		screen:   screen,
		commands: make(chan Command, 8),
		done:     make(chan struct{}),
	}
}

// NewTerminal creates a console on the controlling terminal.
func NewTerminal() (*Console, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen), nil
}

// Start initialises the screen and begins reading keys.
func (c *Console) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if err := c.screen.Init(); err != nil {
		return err
	}
	c.screen.HideCursor()
	c.started = true
	c.drawLocked()
	go c.pollLoop()
	return nil
}

// Commands delivers key commands.
func (c *Console) Commands() <-chan Command {
	return c.commands
}

// Update replaces the view and redraws.
func (c *Console) Update(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
	if c.started {
		c.drawLocked()
	}
}

// SetStatus replaces only the status line.
func (c *Console) SetStatus(s status.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Status = s
	if c.started {
		c.drawLocked()
	}
}

// Close restores the terminal.
func (c *Console) Close() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.screen.Fini()
	<-c.done
}

func (c *Console) pollLoop() {
	defer close(c.done)
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if cmd, ok := commandFor(e); ok {
				select {
				case c.commands <- cmd:
				default:
				}
			}
		case *tcell.EventResize:
			c.mu.Lock()
			c.screen.Sync()
			if c.started {
				c.drawLocked()
			}
			c.mu.Unlock()
		}
	}
}

func commandFor(e *tcell.EventKey) (Command, bool) {
	switch e.Key() {
	case tcell.KeyEscape:
		return CmdStop, true
	case tcell.KeyTab:
		return CmdNextSet, true
	case tcell.KeyCtrlC:
		return CmdQuit, true
	case tcell.KeyRune:
		switch e.Rune() {
		case 's', 'S':
			return CmdStop, true
		case 'r', 'R':
			return CmdRecreate, true
		case 'b', 'B':
			return CmdRestore, true
		case 'q', 'Q':
			return CmdQuit, true
		}
	}
	return 0, false
}

func levelStyle(l status.Level) tcell.Style {
	switch l {
	case status.LevelSuccess:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case status.LevelWarning:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	case status.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault
	}
}

func colorStyle(col colorful.Color) tcell.Style {
	r, g, b := col.Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b))).Bold(true)
}

func (c *Console) drawLocked() {
	s := c.screen
	v := c.view
	s.Clear()
	w, h := s.Size()

	y := 0
	c.text(0, y, w, "Hotkey Typer", tcell.StyleDefault.Bold(true))
	y++
	x := c.text(0, y, w, "Set: ", tcell.StyleDefault)
	c.text(x, y, w, v.SetName, colorStyle(v.SetColor))
	y++
	c.text(0, y, w, v.Registration, tcell.StyleDefault.Dim(true))
	y += 2

	for _, slot := range v.Slots {
		mark := " "
		if slot.Registered {
			mark = "*"
		}
		style := tcell.StyleDefault
		line := fmt.Sprintf("%s %-13s ", mark, slot.Chord)
		if slot.Bound {
			line += slot.Name + "  " + slot.Preview
		} else {
			line += "-"
			style = style.Dim(true)
		}
		c.text(0, y, w, line, style)
		y++
	}
	y++

	session := "Session: " + v.Session
	if v.Total > 0 {
		session += fmt.Sprintf(" (%d/%d)", v.Sent, v.Total)
	}
	c.text(0, y, w, session, tcell.StyleDefault)
	y++
	if v.Status.Text != "" {
		c.text(0, y, w, v.Status.String(), levelStyle(v.Status.Level))
	}

	if h > y+1 {
		c.text(0, h-1, w, helpLine, tcell.StyleDefault.Dim(true))
	}
	s.Show()
}

// text draws str from x clipped to width and returns the next column.
func (c *Console) text(x, y, width int, str string, style tcell.Style) int {
	g := uniseg.NewGraphemes(str)
	for g.Next() {
		runes := g.Runes()
		cw := g.Width()
		if x+cw > width {
			break
		}
		c.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += cw
	}
	return x
}
