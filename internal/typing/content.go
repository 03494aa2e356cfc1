package typing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dshills/hotkeytyper/internal/snippet"
)

// MaxContentLength is the most characters a session will type.
const MaxContentLength = 50000

// Content is the text a session will type.
type Content struct {
	Text      string
	Truncated bool
}

// LoadContent returns the text sn should type. File-backed snippets read
// their file; a missing file yields ErrFileNotFound and any other failure
// ErrReadFailed.
func LoadContent(sn snippet.Snippet) (Content, error) {
	if sn.UseFile && sn.FilePath != "" {
		return ReadFile(sn.FilePath)
	}
	return truncate(sn.Content), nil
}

// ReadFile reads a text file, honouring a UTF-8 or UTF-16 byte order mark
// and defaulting to UTF-8.
func ReadFile(path string) (Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Content{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Content{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, path, err)
	}

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(dec, data)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, path, err)
	}
	return truncate(string(text)), nil
}

func truncate(s string) Content {
	if len(s) <= MaxContentLength {
		return Content{Text: s}
	}
	n := 0
	for i := range s {
		if n == MaxContentLength {
			return Content{Text: s[:i], Truncated: true}
		}
		n++
	}
	return Content{Text: s}
}
