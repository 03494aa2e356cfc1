package inject

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/micmonay/keybd_event"
)

// keyStroke is a key code plus whether Shift must be held.
type keyStroke struct {
	code  int
	shift bool
}

var letterCodes = [26]int{
	keybd_event.VK_A, keybd_event.VK_B, keybd_event.VK_C, keybd_event.VK_D,
	keybd_event.VK_E, keybd_event.VK_F, keybd_event.VK_G, keybd_event.VK_H,
	keybd_event.VK_I, keybd_event.VK_J, keybd_event.VK_K, keybd_event.VK_L,
	keybd_event.VK_M, keybd_event.VK_N, keybd_event.VK_O, keybd_event.VK_P,
	keybd_event.VK_Q, keybd_event.VK_R, keybd_event.VK_S, keybd_event.VK_T,
	keybd_event.VK_U, keybd_event.VK_V, keybd_event.VK_W, keybd_event.VK_X,
	keybd_event.VK_Y, keybd_event.VK_Z,
}

var digitCodes = [10]int{
	keybd_event.VK_0, keybd_event.VK_1, keybd_event.VK_2, keybd_event.VK_3,
	keybd_event.VK_4, keybd_event.VK_5, keybd_event.VK_6, keybd_event.VK_7,
	keybd_event.VK_8, keybd_event.VK_9,
}

// shiftedDigits maps US-layout Shift+digit symbols to their digit.
var shiftedDigits = map[rune]int{
	')': 0, '!': 1, '@': 2, '#': 3, '$': 4,
	'%': 5, '^': 6, '&': 7, '*': 8, '(': 9,
}

// punctuation maps the US-layout symbol keys. The VK_SP codes are the
// names keybd_event defines on every platform.
var punctuation = map[rune]keyStroke{
	'`': {code: keybd_event.VK_SP1}, '~': {code: keybd_event.VK_SP1, shift: true},
	'-': {code: keybd_event.VK_SP2}, '_': {code: keybd_event.VK_SP2, shift: true},
	'=': {code: keybd_event.VK_SP3}, '+': {code: keybd_event.VK_SP3, shift: true},
	'[': {code: keybd_event.VK_SP4}, '{': {code: keybd_event.VK_SP4, shift: true},
	']': {code: keybd_event.VK_SP5}, '}': {code: keybd_event.VK_SP5, shift: true},
	';': {code: keybd_event.VK_SP6}, ':': {code: keybd_event.VK_SP6, shift: true},
	'\'': {code: keybd_event.VK_SP7}, '"': {code: keybd_event.VK_SP7, shift: true},
	'\\': {code: keybd_event.VK_SP8}, '|': {code: keybd_event.VK_SP8, shift: true},
	',': {code: keybd_event.VK_SP9}, '<': {code: keybd_event.VK_SP9, shift: true},
	'.': {code: keybd_event.VK_SP10}, '>': {code: keybd_event.VK_SP10, shift: true},
	'/': {code: keybd_event.VK_SP11}, '?': {code: keybd_event.VK_SP11, shift: true},
}

// strokeFor maps a command onto the fallback key map.
func strokeFor(c Command) (keyStroke, bool) {
	switch c.Key {
	case KeyEnter:
		return keyStroke{code: keybd_event.VK_ENTER}, true
	case KeyTab:
		return keyStroke{code: keybd_event.VK_TAB}, true
	}

	r := c.Rune
	switch {
	case r == ' ':
		return keyStroke{code: keybd_event.VK_SPACE}, true
	case r >= 'a' && r <= 'z':
		return keyStroke{code: letterCodes[r-'a']}, true
	case r >= 'A' && r <= 'Z':
		return keyStroke{code: letterCodes[unicode.ToLower(r)-'a'], shift: true}, true
	case r >= '0' && r <= '9':
		return keyStroke{code: digitCodes[r-'0']}, true
	}
	if d, ok := shiftedDigits[r]; ok {
		return keyStroke{code: digitCodes[d], shift: true}, true
	}
	if s, ok := punctuation[r]; ok {
		return s, true
	}
	return keyStroke{}, false
}

// strokesFor parses cmd and maps every command, failing on the first one
// the key map cannot type.
func strokesFor(cmd string) ([]keyStroke, error) {
	cmds, err := ParseCommands(cmd)
	if err != nil {
		return nil, err
	}
	strokes := make([]keyStroke, 0, len(cmds))
	for _, c := range cmds {
		s, ok := strokeFor(c)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedRune, c.Rune)
		}
		strokes = append(strokes, s)
	}
	return strokes, nil
}

// KeyBondSender types command strings with virtual key presses. It covers
// printable ASCII, Enter and Tab on a US layout.
type KeyBondSender struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewKeyBondSender opens the platform key injector.
func NewKeyBondSender() (*KeyBondSender, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("opening key injector: %w", err)
	}
	return &KeyBondSender{kb: kb}, nil
}

// SendCommands parses cmd and presses each key in order. Nothing is typed
// when any command cannot be mapped.
func (k *KeyBondSender) SendCommands(cmd string) error {
	strokes, err := strokesFor(cmd)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	for _, s := range strokes {
		k.kb.Clear()
		k.kb.SetKeys(s.code)
		k.kb.HasSHIFT(s.shift)
		if err := k.kb.Launching(); err != nil {
			return fmt.Errorf("pressing key %d: %w", s.code, err)
		}
	}
	k.kb.Clear()
	return nil
}
