// Package config loads and persists everything hotkeytyper reads from disk.
//
// Two files are involved:
//
//   - hotkeytyper.toml holds process preferences (log level, log file,
//     settings location, console and notification switches). Missing keys
//     keep their defaults and HOTKEYTYPER_* environment variables override
//     the file.
//   - settings.json holds the snippet sets. The Store reads it, migrates
//     version 1 documents (a single predefined text) into a "Default" set,
//     keeps settings.backup.json as the previous copy, and writes
//     atomically.
//
// The Watcher reports debounced changes to the settings file so a running
// process can pick up edits made elsewhere.
package config
