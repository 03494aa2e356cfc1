//go:build !windows

package inject

// noUnicode has no native Unicode injection; every character goes through
// the fallback.
type noUnicode struct{}

func (noUnicode) SendChar(rune) bool { return false }

// NewPlatform returns the injection facilities for this platform. The
// fallback is nil when the key injector cannot be opened; the error says why.
func NewPlatform() (Platform, error) {
	p := Platform{
		Primary: noUnicode{},
		Focus:   NoFocus{},
	}
	fb, err := NewKeyBondSender()
	if err != nil {
		return p, err
	}
	p.Fallback = fb
	return p, nil
}
