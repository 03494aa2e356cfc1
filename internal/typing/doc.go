// Package typing streams snippet content into the focused window one
// character at a time.
//
// # Sessions
//
// An Engine runs at most one Session at a time. Start copies everything it
// needs out of the Request, captures the foreground window, and launches the
// session in its own goroutine; Start returns ErrBusy while another session
// is running. A session moves through
//
//	Idle -> Running -> Completed | Cancelled | Failed
//
// and releases the engine's busy gate on every exit path.
//
// # Timing
//
// The delay after each character is drawn uniformly from
// [max(10, base-variation), base+variation] milliseconds where
// base = 310 - 30*speed and variation = max(10, base/3). At speed 8 and above
// the delay never drops below 35ms. Snippets that contain code are capped at
// speed 8. At speed 7 and above a space that follows one of > ) } ] gets an
// extra 140ms pause first.
//
// # Cancellation
//
// Cancel interrupts the session at its next check: before each character,
// or during any wait. No characters are sent after cancellation is seen.
package typing
