package typing

import "time"

// Fixed waits used by a session.
const (
	SettleDelay     = 250 * time.Millisecond
	ContextualPause = 140 * time.Millisecond
	MinFastDelay    = 35 * time.Millisecond
)

const (
	minSpeed = 1
	maxSpeed = 10

	// codeSpeedCap is the highest speed a snippet containing code may use.
	codeSpeedCap = 8

	// fastSpeed is the speed from which MinFastDelay applies.
	fastSpeed = 8

	// pauseSpeed is the speed from which contextual pauses apply.
	pauseSpeed = 7

	minDelayMs = 10
)

// Rand is the random source for delay draws.
type Rand interface {
	IntN(n int) int
}

func clampSpeed(speed int) int {
	return min(max(speed, minSpeed), maxSpeed)
}

// EffectiveSpeed returns the speed a session uses: speed clamped to [1,10]
// and, when hasCode is set, capped at 8.
func EffectiveSpeed(speed int, hasCode bool) int {
	s := clampSpeed(speed)
	if hasCode && s > codeSpeedCap {
		s = codeSpeedCap
	}
	return s
}

// BaseDelay returns the centre of the delay range in milliseconds.
func BaseDelay(speed int) int {
	return 310 - 30*clampSpeed(speed)
}

// Variation returns the half-width of the delay range in milliseconds.
func Variation(speed int) int {
	return max(minDelayMs, BaseDelay(speed)/3)
}

// DelayBounds returns the inclusive range delays are drawn from, in
// milliseconds, before the fast-speed floor is applied.
func DelayBounds(speed int) (lo, hi int) {
	base, v := BaseDelay(speed), Variation(speed)
	return max(minDelayMs, base-v), base + v
}

// NextDelay draws the wait after a character typed at speed.
func NextDelay(rng Rand, speed int) time.Duration {
	lo, hi := DelayBounds(speed)
	d := time.Duration(lo+rng.IntN(hi-lo+1)) * time.Millisecond
	if clampSpeed(speed) >= fastSpeed && d < MinFastDelay {
		d = MinFastDelay
	}
	return d
}

// needsPause reports whether cur, typed after prev, gets a contextual pause.
func needsPause(prev, cur rune, speed int) bool {
	if cur != ' ' || speed < pauseSpeed {
		return false
	}
	switch prev {
	case '>', ')', '}', ']':
		return true
	}
	return false
}
