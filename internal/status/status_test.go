package status

import (
	"errors"
	"testing"
)

func TestStatusTexts(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		got   Status
		text  string
		level Level
	}{
		{"ready", Ready(), "Hotkeys CTRL+SHIFT+1-9 are active", LevelSuccess},
		{"all registered", Registration(9, 9, "All hotkeys (CTRL+SHIFT+1-9) registered"), "All hotkeys (CTRL+SHIFT+1-9) registered", LevelSuccess},
		{"partial", Registration(7, 9, "7/9 hotkeys registered. Failed: 2, 5"), "7/9 hotkeys registered. Failed: 2, 5", LevelWarning},
		{"none", Registration(0, 9, "Failed to register any hotkeys"), "Failed to register any hotkeys", LevelError},
		{"no set", NoActiveSet(), "No active snippet set", LevelError},
		{"no snippet", NoSnippet(7), "No snippet assigned to CTRL+SHIFT+7", LevelWarning},
		{"file missing", FileNotFound("a.txt"), "File not found: a.txt", LevelError},
		{"read error", ReadError(boom), "Error reading file: boom", LevelError},
		{"truncated", Truncated(), "File truncated for typing", LevelWarning},
		{"typing", Typing("Sig", 6), "Typing 'Sig' at speed 6...", LevelWarning},
		{"cancelled", Cancelled(), "Typing cancelled", LevelError},
		{"finished", Finished("Sig"), "Finished typing 'Sig'", LevelSuccess},
		{"failed", Failed(boom), "Error typing text: boom", LevelError},
		{"set", SetChanged("Work"), "Active set: Work", LevelInfo},
		{"reloaded", Reloaded(2), "Settings reloaded (2 sets)", LevelInfo},
		{"restored", Restored(3), "Settings restored from backup (3 sets)", LevelInfo},
		{"settings", SettingsError(boom), "Error loading settings: boom", LevelError},
		{"host", HostError(boom), "Error re-creating hotkey window: boom", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Text != tt.text {
				t.Errorf("Text = %q, expected %q", tt.got.Text, tt.text)
			}
			if tt.got.Level != tt.level {
				t.Errorf("Level = %v, expected %v", tt.got.Level, tt.level)
			}
			if tt.got.Time.IsZero() {
				t.Error("Time not set")
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if got := Cancelled().String(); got != "Status: Typing cancelled" {
		t.Errorf("String() = %q", got)
	}
	if got := Level(42).String(); got != "unknown" {
		t.Errorf("Level(42) = %q", got)
	}
}
