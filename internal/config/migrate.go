package config

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/hotkeytyper/internal/snippet"
)

// get looks a key up under each of its accepted spellings. Older builds
// wrote PascalCase property names.
func get(data []byte, names ...string) gjson.Result {
	for _, n := range names {
		if r := gjson.GetBytes(data, n); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// documentVersion returns settingsVersion, or 1 when absent.
func documentVersion(data []byte) int {
	v := get(data, "settingsVersion", "SettingsVersion")
	if !v.Exists() {
		return 1
	}
	return int(v.Int())
}

func hasSets(data []byte) bool {
	sets := get(data, "sets", "Sets")
	return sets.IsArray() && len(sets.Array()) > 0
}

// isLegacy reports whether data is a version 1 document that needs
// migrating. A document that already carries sets is left alone.
func isLegacy(data []byte) bool {
	return documentVersion(data) < snippet.SettingsVersion && !hasSets(data)
}

// migrateV1 turns a version 1 document into a version 2 document holding
// a "Default" set with the old text on slot 1. It returns nil when the old
// document had no text, in which case the caller uses the stock defaults.
func migrateV1(data []byte, now time.Time) ([]byte, error) {
	text := get(data, "predefinedText", "PredefinedText").String()
	if text == "" {
		return nil, nil
	}

	speed := snippet.DefaultSpeed
	if v := get(data, "typingSpeed", "TypingSpeed"); v.Exists() {
		speed = int(v.Int())
	}
	speed = min(max(speed, snippet.MinSpeed), snippet.MaxSpeed)

	setID := uuid.NewString()
	stamp := now.Format(time.RFC3339Nano)

	values := []struct {
		path  string
		value any
	}{
		{"settingsVersion", snippet.SettingsVersion},
		{"activeSetId", setID},
		{"minimizeToTray", false},
		{"uiSettings", snippet.DefaultUISettings()},
		{"sets.0.id", setID},
		{"sets.0.name", "Default"},
		{"sets.0.description", "Migrated from previous version"},
		{"sets.0.createdDate", stamp},
		{"sets.0.modifiedDate", stamp},
		{"sets.0.colorHex", snippet.DefaultColor},
		{"sets.0.iconName", "folder"},
		{"sets.0.snippets.0.id", uuid.NewString()},
		{"sets.0.snippets.0.name", "Default Text"},
		{"sets.0.snippets.0.content", text},
		{"sets.0.snippets.0.hotkeyNumber", 1},
		{"sets.0.snippets.0.typingSpeed", speed},
		{"sets.0.snippets.0.hasCode", get(data, "hasCode", "HasCode").Bool()},
		{"sets.0.snippets.0.useFile", get(data, "useFileSource", "UseFileSource").Bool()},
		{"sets.0.snippets.0.filePath", get(data, "fileSourcePath", "FileSourcePath").String()},
		{"sets.0.snippets.0.createdDate", stamp},
		{"sets.0.snippets.0.modifiedDate", stamp},
	}

	doc := []byte(`{}`)
	for _, v := range values {
		var err error
		doc, err = sjson.SetBytes(doc, v.path, v.value)
		if err != nil {
			return nil, err
		}
	}
	return pretty.Pretty(doc), nil
}
