//go:build windows

package inject

import (
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendInput           = user32.NewProc("SendInput")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

const (
	inputKeyboard = 1

	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004
)

type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// input mirrors INPUT for the keyboard case. The trailing pad makes the
// union as large as MOUSEINPUT on both 32 and 64 bit.
type input struct {
	typ uint32
	ki  keybdInput
	_   [8]byte
}

// unicodeSender injects characters with SendInput and KEYEVENTF_UNICODE.
type unicodeSender struct{}

// SendChar sends a key-down/key-up pair for each UTF-16 unit of r.
func (unicodeSender) SendChar(r rune) bool {
	units := utf16.Encode([]rune{r})
	inputs := make([]input, 0, 2*len(units))
	for _, u := range units {
		inputs = append(inputs,
			input{typ: inputKeyboard, ki: keybdInput{scan: u, flags: keyeventfUnicode}},
			input{typ: inputKeyboard, ki: keybdInput{scan: u, flags: keyeventfUnicode | keyeventfKeyUp}},
		)
	}

	n, _, _ := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	return int(n) == len(inputs)
}

// windowFocus wraps GetForegroundWindow/SetForegroundWindow.
type windowFocus struct{}

func (windowFocus) Foreground() Window {
	h, _, _ := procGetForegroundWindow.Call()
	return Window(h)
}

func (windowFocus) Activate(w Window) bool {
	if w == 0 {
		return false
	}
	ok, _, _ := procSetForegroundWindow.Call(uintptr(w))
	return ok != 0
}

// NewPlatform returns the Windows injection facilities. The fallback is nil
// when the key injector cannot be opened; the error says why. Queue is left
// to the hotkey host, whose window thread owns the pending input.
func NewPlatform() (Platform, error) {
	p := Platform{
		Primary: unicodeSender{},
		Focus:   windowFocus{},
	}
	fb, err := NewKeyBondSender()
	if err != nil {
		return p, err
	}
	p.Fallback = fb
	return p, nil
}
