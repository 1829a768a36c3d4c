// Package profiling accumulates wall time per named operation.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stat is the accumulated cost of one operation.
type Stat struct {
	Total time.Duration
	Calls int
}

// Mean returns the average duration per call.
func (s Stat) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

var (
	mu     sync.Mutex
	totals = make(map[string]Stat)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("world.generate")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s := totals[name]
		s.Total += d
		s.Calls++
		totals[name] = s
		mu.Unlock()
	}
}

// Reset clears all totals.
func Reset() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]Stat {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]Stat, len(totals))
	for k, v := range totals {
		out[k] = v
	}
	return out
}

// SumWithPrefix adds up the totals of every operation starting with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, v := range totals {
		if strings.HasPrefix(k, prefix) {
			sum += v.Total
		}
	}
	return sum
}

// TopN formats the n most expensive operations.
// Example: "world.generate:42.1ms/16, world.commit:0.3ms/16"
func TopN(n int) string {
	ss := Snapshot()
	names := make([]string, 0, len(ss))
	for k := range ss {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if ss[names[i]].Total != ss[names[j]].Total {
			return ss[names[i]].Total > ss[names[j]].Total
		}
		return names[i] < names[j]
	})
	names = names[:min(n, len(names))]

	parts := make([]string, 0, len(names))
	for _, name := range names {
		s := ss[name]
		ms := float64(s.Total.Microseconds()) / 1000
		parts = append(parts, fmt.Sprintf("%s:%.1fms/%d", name, ms, s.Calls))
	}
	return strings.Join(parts, ", ")
}
