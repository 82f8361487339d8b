// Package clocksync tracks the offset between the local clock and the
// authority's clock.
package clocksync

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Sync holds offset = authority time - local time at receipt. The offset is
// only changed by Synchronize or Restore; local drift between the two is not
// corrected.
type Sync struct {
	clock  clockwork.Clock
	offset time.Duration
}

func New(clock clockwork.Clock) *Sync {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sync{clock: clock}
}

// Synchronize records the authority timestamp against the local clock.
func (s *Sync) Synchronize(authority time.Time) time.Duration {
	s.offset = authority.Sub(s.clock.Now())
	return s.offset
}

// Now is the local time corrected by the last known offset.
func (s *Sync) Now() time.Time {
	return s.clock.Now().Add(s.offset)
}

func (s *Sync) Offset() time.Duration {
	return s.offset
}

func (s *Sync) Restore(offset time.Duration) {
	s.offset = offset
}

// Remaining is the time left until deadline on the authority's clock, never
// negative.
func (s *Sync) Remaining(deadline time.Time) time.Duration {
	d := deadline.Sub(s.Now())
	if d < 0 {
		return 0
	}
	return d
}
