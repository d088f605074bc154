package stickerloop

import "time"

// Policy is a sticker platform's limit on total play time.
type Policy struct {
	// MaxPlay is the longest allowed loop count x cycle.
	MaxPlay time.Duration

	// Granularity is the unit the total play time must be a multiple of.
	// 0 disables the check.
	Granularity time.Duration
}

// LINEPolicy is the LINE animated sticker rule: at most 4 seconds of play in
// whole seconds.
var LINEPolicy = Policy{MaxPlay: 4 * time.Second, Granularity: time.Second}

// PlayDuration returns loop x cycle, the total time a finite animation plays.
// It is 0 for infinite looping (loop == 0).
func PlayDuration(loop int, cycle time.Duration) time.Duration {
	if loop <= 0 {
		return 0
	}
	return time.Duration(loop) * cycle
}

// Compliant reports whether loop plays of cycle satisfy p. Infinite looping
// is always compliant.
func (p Policy) Compliant(loop int, cycle time.Duration) bool {
	if loop == 0 {
		return true
	}
	if loop < 0 || cycle <= 0 {
		return false
	}
	total := PlayDuration(loop, cycle)
	if total > p.MaxPlay {
		return false
	}
	return p.Granularity <= 0 || total%p.Granularity == 0
}
