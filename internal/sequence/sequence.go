// Package sequence provides the deterministic date and timestamp cursors the
// bank consumes when issuing cards and recording transactions. Cursors are
// plain structs created per bank instance; two banks built from the same epoch
// yield identical streams. Callers must serialize access themselves.
package sequence

import "time"

// IssueDates yields one calendar day per call, starting at the epoch and never
// repeating.
type IssueDates struct {
	next time.Time
}

func NewIssueDates(epoch time.Time) *IssueDates {
	return &IssueDates{next: epoch}
}

// Next returns the current cursor date and advances by one day.
func (s *IssueDates) Next() time.Time {
	d := s.next
	s.next = s.next.AddDate(0, 0, 1)
	return d
}

// Timestamps yields one pseudo-timestamp per call. Call i produces the epoch
// date advanced by i days with hour (9+i*3%10) mod 24, minute i*7 mod 60 and
// second i*11 mod 60. The clock-of-day is deliberately non-monotonic within a
// day; the date component is strictly increasing.
type Timestamps struct {
	epoch time.Time
	i     int
}

func NewTimestamps(epoch time.Time) *Timestamps {
	return &Timestamps{epoch: epoch}
}

func (s *Timestamps) Next() time.Time {
	i := s.i
	s.i++
	base := s.epoch.AddDate(0, 0, i)
	hour := (9 + (i*3)%10) % 24
	minute := (i * 7) % 60
	second := (i * 11) % 60
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, second, 0, base.Location())
}

// NextAfter advances the cursor until it yields a timestamp whose date is
// strictly later than the given date and returns it. The cursor is never
// rewound: unrelated callers interleave and consume the same stream, which is
// what makes transaction ordering reproducible bank-wide.
func (s *Timestamps) NextAfter(date time.Time) time.Time {
	for {
		ts := s.Next()
		if laterDate(ts, date) {
			return ts
		}
	}
}

func laterDate(ts, date time.Time) bool {
	ty, tm, td := ts.Date()
	dy, dm, dd := date.Date()
	if ty != dy {
		return ty > dy
	}
	if tm != dm {
		return tm > dm
	}
	return td > dd
}
