// Package inject delivers characters to the window that has input focus.
//
// The primary path synthesizes a native keyboard event carrying the
// character's Unicode value (SendInput with KEYEVENTF_UNICODE on Windows).
// It handles the full character repertoire, so it is always tried first.
//
// When the primary path reports failure the caller switches to the fallback
// path for that one character: EncodeFallback turns the character into a
// SendKeys-style command string, and a CommandSender types that string.
// Characters that the command syntax treats as operators (+ ^ % ~ ( )) are
// wrapped in braces, braces are doubled, newline becomes {ENTER}, tab becomes
// {TAB}, and a bare carriage return is dropped.
//
// The fallback can only type what a fixed key map can express and is never
// used as the primary path.
package inject
