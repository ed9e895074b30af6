// package monitor records operation timings and flags slow operations
package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Monitor accumulates per-operation counters and durations. Safe for
// concurrent use; the scheduler's workers and the UI goroutine both report
// through it.
type Monitor struct {
	mu            sync.Mutex
	slowThreshold time.Duration
	logger        *log.Logger
	ops           map[string]*opStats
}

type opStats struct {
	count int64
	total time.Duration
	max   time.Duration
	slow  int64
}

// OpSnapshot is one operation's accumulated stats at snapshot time.
type OpSnapshot struct {
	Name  string
	Count int64
	Total time.Duration
	Avg   time.Duration
	Max   time.Duration
	Slow  int64
}

// New creates a Monitor that warns through logger whenever an observed
// operation takes slowThreshold or longer. A zero threshold disables
// slow-operation warnings.
func New(slowThreshold time.Duration, logger *log.Logger) *Monitor {
	return &Monitor{
		slowThreshold: slowThreshold,
		logger:        logger,
		ops:           make(map[string]*opStats),
	}
}

// Observe records one run of the named operation.
func (m *Monitor) Observe(name string, d time.Duration) {
	m.mu.Lock()
	stats := m.ops[name]
	if stats == nil {
		stats = &opStats{}
		m.ops[name] = stats
	}
	stats.count++
	stats.total += d
	if d > stats.max {
		stats.max = d
	}
	slow := m.slowThreshold > 0 && d >= m.slowThreshold
	if slow {
		stats.slow++
	}
	m.mu.Unlock()

	if slow && m.logger != nil {
		m.logger.Warn("slow operation", "op", name, "duration", d, "threshold", m.slowThreshold)
	}
}

// Timed starts a timer for the named operation and returns a function that
// records the elapsed time when called.
//
//	defer mon.Timed("debits.load")()
func (m *Monitor) Timed(name string) func() {
	start := time.Now()
	return func() {
		m.Observe(name, time.Since(start))
	}
}

// Snapshot returns the accumulated stats for every observed operation,
// sorted by name.
func (m *Monitor) Snapshot() []OpSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshots := make([]OpSnapshot, 0, len(m.ops))
	for name, stats := range m.ops {
		snap := OpSnapshot{
			Name:  name,
			Count: stats.count,
			Total: stats.total,
			Max:   stats.max,
			Slow:  stats.slow,
		}
		if stats.count > 0 {
			snap.Avg = stats.total / time.Duration(stats.count)
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	return snapshots
}
