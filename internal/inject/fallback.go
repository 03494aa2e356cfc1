package inject

import (
	"fmt"
	"strings"
)

// NamedKey identifies a non-character key in a command string.
type NamedKey int

const (
	// KeyNone marks a literal character command.
	KeyNone NamedKey = iota
	KeyEnter
	KeyTab
)

// String returns the command name.
func (k NamedKey) String() string {
	switch k {
	case KeyEnter:
		return "ENTER"
	case KeyTab:
		return "TAB"
	default:
		return ""
	}
}

// Command is one step of a parsed command string: either a named key or a
// literal character.
type Command struct {
	Key  NamedKey
	Rune rune
}

// EncodeFallback converts r into a command string that types it literally.
// A bare carriage return encodes to the empty string.
func EncodeFallback(r rune) string {
	switch r {
	case '+', '^', '%', '~', '(', ')':
		return "{" + string(r) + "}"
	case '{':
		return "{{}"
	case '}':
		return "{}}"
	case '\n':
		return "{ENTER}"
	case '\r':
		return ""
	case '\t':
		return "{TAB}"
	default:
		return string(r)
	}
}

var namedKeys = map[string]NamedKey{
	"ENTER": KeyEnter,
	"TAB":   KeyTab,
}

// ParseCommands splits a command string into commands. It accepts the
// subset EncodeFallback produces plus "~" as Enter. Modifier prefixes and
// grouping are rejected.
func ParseCommands(s string) ([]Command, error) {
	rs := []rune(s)
	cmds := make([]Command, 0, len(rs))

	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; r {
		case '{':
			// The first rune after '{' is always content, so "{}}" and "{{}"
			// resolve to a literal brace.
			end := -1
			for j := i + 2; j < len(rs); j++ {
				if rs[j] == '}' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated brace at %d", ErrSyntax, i)
			}
			body := string(rs[i+1 : end])
			if k, ok := namedKeys[strings.ToUpper(body)]; ok {
				cmds = append(cmds, Command{Key: k})
			} else if len(rs[i+1:end]) == 1 {
				cmds = append(cmds, Command{Rune: rs[i+1]})
			} else {
				return nil, fmt.Errorf("%w: unknown key {%s}", ErrSyntax, body)
			}
			i = end
		case '~':
			cmds = append(cmds, Command{Key: KeyEnter})
		case '}', '+', '^', '%', '(', ')':
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, i)
		default:
			cmds = append(cmds, Command{Rune: r})
		}
	}
	return cmds, nil
}
