// File: tunnel/broadcast.go
// Author: momentics <momentics@gmail.com>

package tunnel

// BroadcastTimer decides when the periodic health broadcast (spec.md §4.3,
// §8 scenario 5) should fire. Preserved quirk (spec.md §9, Open Questions):
// the comparison is abs(now - latest) >= 5, which also fires on a backward
// wall-clock jump, not only a forward one. Do not "fix" this without a
// regression test proving it's safe.
type BroadcastTimer struct {
	lastFired int64
	started   bool
}

// ShouldFire reports whether the broadcast should go out at nowUnix
// (seconds), and if so records it as the new reference point.
func (b *BroadcastTimer) ShouldFire(nowUnix int64) bool {
	if !b.started {
		b.started = true
		b.lastFired = nowUnix
		return false
	}
	delta := nowUnix - b.lastFired
	if delta < 0 {
		delta = -delta
	}
	if delta >= 5 {
		b.lastFired = nowUnix
		return true
	}
	return false
}
