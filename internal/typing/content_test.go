package typing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/dshills/hotkeytyper/internal/snippet"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadFileTruncation(t *testing.T) {
	long := writeFile(t, "long.txt", []byte(strings.Repeat("a", 60000)))
	c, err := ReadFile(long)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len([]rune(c.Text)) != MaxContentLength || !c.Truncated {
		t.Errorf("60000-char file: len=%d truncated=%v, want %d true", len([]rune(c.Text)), c.Truncated, MaxContentLength)
	}

	short := writeFile(t, "short.txt", []byte(strings.Repeat("b", 40000)))
	c, err = ReadFile(short)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(c.Text) != 40000 || c.Truncated {
		t.Errorf("40000-char file: len=%d truncated=%v, want 40000 false", len(c.Text), c.Truncated)
	}
}

func TestReadFileCountsCharacters(t *testing.T) {
	path := writeFile(t, "wide.txt", []byte(strings.Repeat("é", MaxContentLength)))
	c, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if c.Truncated {
		t.Error("content of exactly MaxContentLength characters should not be truncated")
	}
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file: %v, want ErrFileNotFound", err)
	}

	_, err = ReadFile(t.TempDir())
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("directory: %v, want ErrReadFailed", err)
	}
}

func TestReadFileByteOrderMarks(t *testing.T) {
	utf8BOM := writeFile(t, "bom8.txt", append([]byte{0xEF, 0xBB, 0xBF}, "héllo"...))
	c, err := ReadFile(utf8BOM)
	if err != nil || c.Text != "héllo" {
		t.Errorf("UTF-8 BOM: %q, %v", c.Text, err)
	}

	data := []byte{0xFF, 0xFE}
	for _, u := range utf16.Encode([]rune("héllo")) {
		data = append(data, byte(u), byte(u>>8))
	}
	utf16LE := writeFile(t, "bom16.txt", data)
	c, err = ReadFile(utf16LE)
	if err != nil || c.Text != "héllo" {
		t.Errorf("UTF-16LE BOM: %q, %v", c.Text, err)
	}
}

func TestLoadContent(t *testing.T) {
	sn := snippet.New("inline", 1)
	sn.Content = "inline text"
	c, err := LoadContent(sn)
	if err != nil || c.Text != "inline text" {
		t.Errorf("inline content: %q, %v", c.Text, err)
	}

	path := writeFile(t, "f.txt", []byte("from file"))
	sn.UseFile = true
	sn.FilePath = path
	c, err = LoadContent(sn)
	if err != nil || c.Text != "from file" {
		t.Errorf("file content: %q, %v", c.Text, err)
	}

	sn.FilePath = filepath.Join(t.TempDir(), "gone.txt")
	if _, err := NewRequest(sn); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("NewRequest(missing file) = %v, want ErrFileNotFound", err)
	}
}

func TestNewRequestCopiesFields(t *testing.T) {
	sn := snippet.New("code", 4)
	sn.Content = "x := 1"
	sn.TypingSpeed = 10
	sn.HasCode = true

	req, err := NewRequest(sn)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	sn.TypingSpeed = 1
	sn.Content = "changed"

	if req.Speed != 10 || !req.HasCode || req.Text != "x := 1" || req.Slot != 4 {
		t.Errorf("request = %+v", req)
	}
}
