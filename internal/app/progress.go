package app

import "time"

// Progress is an immutable snapshot of a run, copied to the observer after
// every state change.
type Progress struct {
	Percentage float64
	Action     string
	File       string
	Current    int
	Total      int
	Bytes      int64
	TotalBytes int64

	// Remaining is only meaningful when RemainingKnown is set.
	Remaining      time.Duration
	RemainingKnown bool

	Finished bool
}

// ProgressFunc receives snapshots from the engine. It must not block.
type ProgressFunc func(Progress)

// ScanProgressFunc is called while metadata is prefetched.
type ScanProgressFunc func(current, total int)

// NonBlocking returns a ProgressFunc feeding ch without ever blocking the
// engine: when the observer lags, the stale snapshot is dropped so the most
// recent one is always waiting. Unbuffered channels only get snapshots an
// observer is already waiting for.
func NonBlocking(ch chan Progress) ProgressFunc {
	return func(p Progress) {
		if cap(ch) == 0 {
			select {
			case ch <- p:
			default:
			}
			return
		}
		for {
			select {
			case ch <- p:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Stats tracks bytes accounted for against the collection total.
type Stats struct {
	Started    time.Time
	TotalBytes int64
	Bytes      int64
	now        Clock
}

func NewStats(started time.Time, totalBytes int64, now Clock) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{Started: started, TotalBytes: totalBytes, now: now}
}

func (s *Stats) Add(n int64) {
	s.Bytes += n
}

func (s *Stats) Elapsed() time.Duration {
	return s.now().Sub(s.Started)
}

// Speed is bytes per second. It is unknown until time has passed and bytes
// have been accounted for.
func (s *Stats) Speed() (float64, bool) {
	elapsed := s.Elapsed().Seconds()
	if elapsed <= 0 || s.Bytes <= 0 {
		return 0, false
	}
	return float64(s.Bytes) / elapsed, true
}

func (s *Stats) Remaining() (time.Duration, bool) {
	speed, ok := s.Speed()
	if !ok {
		return 0, false
	}
	left := s.TotalBytes - s.Bytes
	if left <= 0 {
		return 0, true
	}
	return time.Duration(float64(left) / speed * float64(time.Second)), true
}

func (s *Stats) Percentage() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	pct := float64(s.Bytes) / float64(s.TotalBytes) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
