package metrics

import (
	"fmt"
	"io"
	"slices"
	"sync/atomic"
)

// Snapshot returns a deep copy of all metrics.
// Safe for concurrent use and immune to external mutation.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(r.counters))
	for key, ptr := range r.counters {
		out[string(key)] = atomic.LoadInt64(ptr)
	}
	return out
}

// Get returns the current value of key, zero if it was never touched.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ptr, ok := r.counters[key]; ok {
		return atomic.LoadInt64(ptr)
	}
	return 0
}

// WriteText writes one "name value" line per metric, sorted by name, in
// the plain text exposition format scrapers understand.
func (r *Registry) WriteText(w io.Writer) error {
	snap := r.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "heartrisk_%s %d\n", name, snap[name]); err != nil {
			return err
		}
	}
	return nil
}
