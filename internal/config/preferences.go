package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HOTKEYTYPER_"

// Preferences are process-level settings read from hotkeytyper.toml.
type Preferences struct {
	Log      LogPreferences      `toml:"log"`
	Settings SettingsPreferences `toml:"settings"`
	UI       UIPreferences       `toml:"ui"`
}

// LogPreferences configures logging.
type LogPreferences struct {
	Level string `toml:"level"`
	// File receives log output; empty means stderr, or nothing while the
	// console owns the terminal.
	File string `toml:"file"`
}

// SettingsPreferences locates the snippet settings.
type SettingsPreferences struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// UIPreferences toggles presentation features.
type UIPreferences struct {
	Console        bool `toml:"console"`
	Notifications  bool `toml:"notifications"`
	MinimizeToTray bool `toml:"minimize_to_tray"`
}

// DefaultPreferences returns the built-in defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		Log:      LogPreferences{Level: "info"},
		Settings: SettingsPreferences{Path: DefaultSettingsPath(), Watch: true},
		UI:       UIPreferences{Console: true, Notifications: true},
	}
}

// FileSystem abstracts file reads so tests can use in-memory files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// PreferencesLoader reads preferences from TOML and the environment.
type PreferencesLoader struct {
	fs     FileSystem
	lookup LookupEnv
}

// NewPreferencesLoader reads from the OS file system and environment.
func NewPreferencesLoader() *PreferencesLoader {
	return &PreferencesLoader{fs: OSFS{}, lookup: os.LookupEnv}
}

// NewPreferencesLoaderWith uses the given file system and environment.
func NewPreferencesLoaderWith(fsys FileSystem, lookup LookupEnv) *PreferencesLoader {
	if fsys == nil {
		fsys = OSFS{}
	}
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &PreferencesLoader{fs: fsys, lookup: lookup}
}

// Load returns defaults overlaid with the file at path (if it exists) and
// then with environment overrides.
func (l *PreferencesLoader) Load(path string) (Preferences, error) {
	prefs := DefaultPreferences()

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case err == nil:
			if err := decodePreferences(path, data, &prefs); err != nil {
				return DefaultPreferences(), err
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return DefaultPreferences(), fmt.Errorf("reading preferences %s: %w", path, err)
		}
	}

	if err := l.applyEnv(&prefs); err != nil {
		return prefs, err
	}
	return prefs, nil
}

func decodePreferences(path string, data []byte, prefs *Preferences) error {
	if err := toml.Unmarshal(data, prefs); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

func (l *PreferencesLoader) applyEnv(p *Preferences) error {
	strs := map[string]*string{
		"LOG_LEVEL":     &p.Log.Level,
		"LOG_FILE":      &p.Log.File,
		"SETTINGS_PATH": &p.Settings.Path,
	}
	for name, dst := range strs {
		if v, ok := l.lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"WATCH":         &p.Settings.Watch,
		"CONSOLE":       &p.UI.Console,
		"NOTIFICATIONS": &p.UI.Notifications,
	}
	for name, dst := range bools {
		v, ok := l.lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, name, v)
		}
		*dst = b
	}
	return nil
}

// Encode renders preferences as TOML.
func (p Preferences) Encode() ([]byte, error) {
	return toml.Marshal(p)
}
