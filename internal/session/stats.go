package session

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at time.Time
	us int64
}

// StatsSnapshot aggregates the latency samples of one operation that fall
// inside the rolling window. Durations are in microseconds.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinUs int64   `json:"min_us"`
	MaxUs int64   `json:"max_us"`
	AvgUs float64 `json:"avg_us"`
	P50Us float64 `json:"p50_us"`
	P95Us float64 `json:"p95_us"`
	P99Us float64 `json:"p99_us"`
}

// LatencyStats keeps the latencies of one operation recorded within the
// last window.
type LatencyStats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
}

// NewLatencyStats returns an empty series. A non-positive window means
// one hour.
func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window}
}

// Record adds one sample. Negative durations count as zero.
func (s *LatencyStats) Record(d time.Duration) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(now)
	s.samples = append(s.samples, sample{at: now, us: max(d.Microseconds(), 0)})
}

// Snapshot aggregates the samples still inside the window.
func (s *LatencyStats) Snapshot() StatsSnapshot {
	now := time.Now()
	s.mu.Lock()
	s.expire(now)
	us := make([]int64, len(s.samples))
	for i, sm := range s.samples {
		us[i] = sm.us
	}
	s.mu.Unlock()

	if len(us) == 0 {
		return StatsSnapshot{}
	}
	slices.Sort(us)
	var total int64
	for _, v := range us {
		total += v
	}
	return StatsSnapshot{
		Count: len(us),
		MinUs: us[0],
		MaxUs: us[len(us)-1],
		AvgUs: float64(total) / float64(len(us)),
		P50Us: percentile(us, 50),
		P95Us: percentile(us, 95),
		P99Us: percentile(us, 99),
	}
}

// expire drops samples older than the window. Samples are appended in
// time order, so the expired ones form a prefix.
func (s *LatencyStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	n := 0
	for n < len(s.samples) && s.samples[n].at.Before(cutoff) {
		n++
	}
	if n > 0 {
		s.samples = slices.Delete(s.samples, 0, n)
	}
}

// percentile interpolates linearly between the two closest ranks of a
// sorted, non-empty slice.
func percentile(sorted []int64, pct float64) float64 {
	pos := float64(len(sorted)-1) * min(max(pct, 0), 100) / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}

// OpStats keeps one latency series per operation name.
type OpStats struct {
	mu     sync.Mutex
	series map[string]*LatencyStats
	window time.Duration
}

// NewOpStats returns an empty set of series sharing one rolling window.
func NewOpStats(window time.Duration) *OpStats {
	return &OpStats{series: make(map[string]*LatencyStats), window: window}
}

// Record adds a sample to the series of op, creating it on first use.
func (o *OpStats) Record(op string, d time.Duration) {
	o.mu.Lock()
	s, ok := o.series[op]
	if !ok {
		s = NewLatencyStats(o.window)
		o.series[op] = s
	}
	o.mu.Unlock()
	s.Record(d)
}

// Snapshot aggregates every series by operation name.
func (o *OpStats) Snapshot() map[string]StatsSnapshot {
	o.mu.Lock()
	series := make(map[string]*LatencyStats, len(o.series))
	for op, s := range o.series {
		series[op] = s
	}
	o.mu.Unlock()

	out := make(map[string]StatsSnapshot, len(series))
	for op, s := range series {
		out[op] = s.Snapshot()
	}
	return out
}
