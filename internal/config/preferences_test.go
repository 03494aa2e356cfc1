package config

import (
	"errors"
	"testing"
	"testing/fstest"
)

func env(vars map[string]string) LookupEnv {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestPreferencesDefaultsWhenMissing(t *testing.T) {
	l := NewPreferencesLoaderWith(fstest.MapFS{}, env(nil))
	prefs, err := l.Load("hotkeytyper.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultPreferences()
	if prefs != want {
		t.Errorf("prefs = %+v, want %+v", prefs, want)
	}
}

func TestPreferencesFromFile(t *testing.T) {
	fsys := fstest.MapFS{
		"hotkeytyper.toml": {Data: []byte(`
[log]
level = "debug"
file = "out.log"

[ui]
console = false
`)},
	}
	prefs, err := NewPreferencesLoaderWith(fsys, env(nil)).Load("hotkeytyper.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prefs.Log.Level != "debug" || prefs.Log.File != "out.log" {
		t.Errorf("log = %+v", prefs.Log)
	}
	if prefs.UI.Console {
		t.Error("console should be off")
	}
	// Keys absent from the file keep their defaults.
	if !prefs.UI.Notifications || !prefs.Settings.Watch {
		t.Errorf("defaults lost: %+v", prefs)
	}
	if prefs.Settings.Path != DefaultSettingsPath() {
		t.Errorf("settings path = %q", prefs.Settings.Path)
	}
}

func TestPreferencesParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml": {Data: []byte("[log]\nlevel = \n")},
	}
	_, err := NewPreferencesLoaderWith(fsys, env(nil)).Load("bad.toml")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Path != "bad.toml" || pe.Line == 0 {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestPreferencesEnvOverrides(t *testing.T) {
	fsys := fstest.MapFS{
		"p.toml": {Data: []byte("[log]\nlevel = \"warn\"\n")},
	}
	vars := map[string]string{
		"HOTKEYTYPER_LOG_LEVEL":     "error",
		"HOTKEYTYPER_SETTINGS_PATH": "/tmp/s.json",
		"HOTKEYTYPER_WATCH":         "false",
		"HOTKEYTYPER_NOTIFICATIONS": "0",
	}
	prefs, err := NewPreferencesLoaderWith(fsys, env(vars)).Load("p.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prefs.Log.Level != "error" {
		t.Errorf("level = %q", prefs.Log.Level)
	}
	if prefs.Settings.Path != "/tmp/s.json" || prefs.Settings.Watch {
		t.Errorf("settings = %+v", prefs.Settings)
	}
	if prefs.UI.Notifications {
		t.Error("notifications should be off")
	}
}

func TestPreferencesInvalidEnv(t *testing.T) {
	l := NewPreferencesLoaderWith(fstest.MapFS{}, env(map[string]string{
		"HOTKEYTYPER_CONSOLE": "maybe",
	}))
	if _, err := l.Load(""); !errors.Is(err, ErrInvalidEnv) {
		t.Errorf("err = %v, want ErrInvalidEnv", err)
	}
}

func TestPreferencesEncodeRoundTrip(t *testing.T) {
	in := DefaultPreferences()
	in.Log.Level = "debug"
	in.UI.MinimizeToTray = true
	data, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	fsys := fstest.MapFS{"p.toml": {Data: data}}
	out, err := NewPreferencesLoaderWith(fsys, env(nil)).Load("p.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}
