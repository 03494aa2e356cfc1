//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procRegisterClassExW   = user32.NewProc("RegisterClassExW")
	procCreateWindowExW    = user32.NewProc("CreateWindowExW")
	procDestroyWindow      = user32.NewProc("DestroyWindow")
	procDefWindowProcW     = user32.NewProc("DefWindowProcW")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procGetModuleHandleW   = kernel32.NewProc("GetModuleHandleW")
)

const (
	wmQuit   = 0x0012
	wmHotkey = 0x0312
	wmRun    = 0x8000 + 1 // WM_APP+1

	wmKeyFirst = 0x0100
	wmKeyLast  = 0x0109
	pmRemove   = 0x0001

	errClassAlreadyExists = 1410

	className = "HotkeyTyperMessageWindow"
)

// HWND_MESSAGE, (HWND)-3.
var hwndMessage = ^uintptr(2)

type point struct{ x, y int32 }

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
	private uint32
}

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   uintptr
	icon       uintptr
	cursor     uintptr
	background uintptr
	menuName   *uint16
	className  *uint16
	iconSm     uintptr
}

// windowHost owns a message-only window on a dedicated, locked OS thread.
// Hotkey registration must happen on the thread that created the window,
// so binder calls are marshalled onto it.
type windowHost struct {
	log    Logger
	events chan Event

	threadID uint32
	hwnd     uintptr
	instance uintptr

	mu     sync.Mutex
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewHost starts the window thread and creates the first handle.
func NewHost(log Logger) (Host, error) {
	if log == nil {
		log = nopLogger{}
	}
	h := &windowHost{
		log:    log,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	ready := make(chan error, 1)
	go h.loop(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return h, nil
}

func (h *windowHost) Events() <-chan Event { return h.events }

func (h *windowHost) Binder() Binder { return windowBinder{h} }

func (h *windowHost) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)
	defer close(h.events)

	h.threadID = windows.GetCurrentThreadId()
	inst, _, _ := procGetModuleHandleW.Call(0)
	h.instance = inst
	if err := h.registerClass(); err != nil {
		ready <- err
		return
	}
	if err := h.createWindow(); err != nil {
		ready <- err
		return
	}
	ready <- nil

	var m msg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
		switch {
		case m.message == wmHotkey:
			h.emit(Event{Kind: Hotkey, Handle: Handle(m.hwnd), ID: int(m.wParam)})
		case m.message == wmRun && m.hwnd == 0:
			h.runQueued()
		default:
			procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
		}
	}

	h.mu.Lock()
	h.closed = true
	pending := h.queue
	h.queue = nil
	h.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	h.destroyWindow()
}

func (h *windowHost) registerClass() error {
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}
	wc := wndClassEx{
		wndProc:   procDefWindowProcW.Addr(),
		instance:  h.instance,
		className: name,
	}
	wc.size = uint32(unsafe.Sizeof(wc))
	r, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if r == 0 {
		if errno, ok := callErr.(windows.Errno); ok && errno == errClassAlreadyExists {
			return nil
		}
		return fmt.Errorf("register window class: %w", callErr)
	}
	return nil
}

func (h *windowHost) createWindow() error {
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}
	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(name)),
		0, 0, 0, 0, 0,
		hwndMessage, 0, h.instance, 0,
	)
	if hwnd == 0 {
		return fmt.Errorf("create message window: %w", callErr)
	}
	h.hwnd = hwnd
	h.log.Debug("message window %#x created", hwnd)
	h.emit(Event{Kind: HandleCreated, Handle: Handle(hwnd)})
	return nil
}

func (h *windowHost) destroyWindow() {
	if h.hwnd == 0 {
		return
	}
	procDestroyWindow.Call(h.hwnd)
	h.log.Debug("message window %#x destroyed", h.hwnd)
	h.hwnd = 0
}

func (h *windowHost) emit(ev Event) {
	select {
	case h.events <- ev:
	default:
		h.log.Warn("dropped %s event (id %d)", ev.Kind, ev.ID)
	}
}

func (h *windowHost) runQueued() {
	h.mu.Lock()
	fns := h.queue
	h.queue = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// invoke runs fn on the window thread and waits for it.
func (h *windowHost) invoke(fn func() error) error {
	result := make(chan error, 1)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHostClosed
	}
	h.queue = append(h.queue, func() { result <- fn() })
	h.mu.Unlock()

	r, _, err := procPostThreadMessageW.Call(uintptr(h.threadID), wmRun, 0, 0)
	if r == 0 {
		return fmt.Errorf("post to window thread: %w", err)
	}
	select {
	case err := <-result:
		return err
	case <-h.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrHostClosed
		}
	}
}

func (h *windowHost) Recreate() error {
	return h.invoke(func() error {
		h.destroyWindow()
		return h.createWindow()
	})
}

// Flush drops keyboard messages queued for the window thread, such as the
// key-up of the chord that fired. It satisfies inject.InputQueue.
func (h *windowHost) Flush() {
	err := h.invoke(func() error {
		var m msg
		for {
			r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, wmKeyFirst, wmKeyLast, pmRemove)
			if r == 0 {
				return nil
			}
		}
	})
	if err != nil {
		h.log.Debug("flush input: %v", err)
	}
}

func (h *windowHost) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()
	procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
	<-h.done
	return nil
}

type windowBinder struct{ host *windowHost }

func (b windowBinder) Register(h Handle, id int, c Chord) error {
	return b.host.invoke(func() error {
		r, _, err := procRegisterHotKey.Call(uintptr(h), uintptr(id), uintptr(c.Mods), uintptr(c.VirtualKey()))
		if r == 0 {
			return fmt.Errorf("%w: %s: %v", ErrRegister, c, err)
		}
		return nil
	})
}

func (b windowBinder) Unregister(h Handle, id int) error {
	return b.host.invoke(func() error {
		r, _, _ := procUnregisterHotKey.Call(uintptr(h), uintptr(id))
		if r == 0 {
			return ErrNotRegistered
		}
		return nil
	})
}
