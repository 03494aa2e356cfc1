// Package snippet defines the snippet data model used by hotkeytyper.
//
// A Snippet is a short piece of text bound to one of nine global hotkey
// slots (Ctrl+Shift+1 through Ctrl+Shift+9). Snippets are grouped into
// named Sets, and a Configuration holds every set along with the id of the
// single active set.
//
// # Resolution
//
// When a hotkey fires, Resolve looks up the snippet bound to that slot in
// the active set. The returned Snippet is a value copy, so later edits to
// the configuration never reach a typing session that is already running.
//
// # Thread Safety
//
// The types in this package are plain data and are not safe for concurrent
// mutation. Callers that share a Configuration across goroutines hand out
// snapshots produced by Configuration.Clone.
package snippet
