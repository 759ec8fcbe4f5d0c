// Package perf keeps a bounded in-memory history of request and query
// timings for the admin performance page.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, "VERB table" for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries.
// When full, the oldest entries are overwritten. Aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector holding up to size entries.
// POST: size <= 0 uses DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// PathStat aggregates timings for one request path or query label.
type PathStat struct {
	Path         string
	Count        int
	ServerErrors int // responses with status >= 500
	AvgMs        float64
	MaxMs        float64
	TotalMs      float64
}

// Snapshot holds aggregated timings computed on read.
type Snapshot struct {
	Since          time.Time
	TotalRequests  int64
	Requests       int // requests in the window
	ServerErrors   int
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestPaths   []PathStat
	SlowestQueries []PathStat
}

// Snapshot aggregates entries recorded at or after since, returning the
// topN slowest paths and queries by average duration.
// POST: SlowestPaths and SlowestQueries have at most topN elements
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := slices.Clone(c.entries)
	c.mu.Unlock()

	var durations []float64
	requests := make(map[string]*PathStat)
	queries := make(map[string]*PathStat)
	snap := Snapshot{Since: since, TotalRequests: c.TotalRecorded()}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			durations = append(durations, e.DurationMs)
			s := accumulate(requests, e)
			if e.StatusCode >= 500 {
				s.ServerErrors++
				snap.ServerErrors++
			}
		case KindQuery:
			accumulate(queries, e)
		}
	}

	snap.Requests = len(durations)
	snap.SlowestPaths = topByAvg(requests, topN)
	snap.SlowestQueries = topByAvg(queries, topN)
	if len(durations) > 0 {
		slices.Sort(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

func accumulate(stats map[string]*PathStat, e Entry) *PathStat {
	s, ok := stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = max(s.MaxMs, e.DurationMs)
	return s
}

// percentile interpolates the p-th percentile of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower, upper := int(math.Floor(idx)), int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	slices.SortFunc(list, func(a, b PathStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
