package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppDirName is the per-user directory holding settings.
	AppDirName = "HotkeyTyper"

	// PreferencesFileName is the TOML preferences file.
	PreferencesFileName = "hotkeytyper.toml"

	SettingsFileName = "settings.json"
	BackupFileName   = "settings.backup.json"

	// MigratedSuffix is appended to a legacy settings file once imported.
	MigratedSuffix = ".migrated"
)

// DefaultDir returns the per-user settings directory. On Windows this is
// %LOCALAPPDATA%\HotkeyTyper.
func DefaultDir() string {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, AppDirName)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppDirName)
	}
	return AppDirName
}

// DefaultSettingsPath returns the settings.json location.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultDir(), SettingsFileName)
}

// DefaultPreferencesPath returns the hotkeytyper.toml location.
func DefaultPreferencesPath() string {
	return filepath.Join(DefaultDir(), PreferencesFileName)
}

// LegacySettingsPath returns settings.json next to the executable, where
// version 1 kept it.
func LegacySettingsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), SettingsFileName)
}
