package monitor

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestMonitorObserve(t *testing.T) {
	m := New(0, nil)

	m.Observe("debits.load", 10*time.Millisecond)
	m.Observe("debits.load", 30*time.Millisecond)
	m.Observe("products.load", 5*time.Millisecond)

	snaps := m.Snapshot()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(snaps))
	}

	// Sorted by name
	if snaps[0].Name != "debits.load" || snaps[1].Name != "products.load" {
		t.Errorf("unexpected snapshot order: %s, %s", snaps[0].Name, snaps[1].Name)
	}

	d := snaps[0]
	if d.Count != 2 {
		t.Errorf("expected count 2, got %d", d.Count)
	}
	if d.Total != 40*time.Millisecond {
		t.Errorf("expected total 40ms, got %v", d.Total)
	}
	if d.Avg != 20*time.Millisecond {
		t.Errorf("expected avg 20ms, got %v", d.Avg)
	}
	if d.Max != 30*time.Millisecond {
		t.Errorf("expected max 30ms, got %v", d.Max)
	}
	if d.Slow != 0 {
		t.Errorf("expected no slow ops with zero threshold, got %d", d.Slow)
	}
}

func TestMonitorSlowWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	m := New(50*time.Millisecond, logger)
	m.Observe("debits.load", 80*time.Millisecond)
	m.Observe("debits.load", 10*time.Millisecond)

	snaps := m.Snapshot()
	if snaps[0].Slow != 1 {
		t.Errorf("expected 1 slow observation, got %d", snaps[0].Slow)
	}

	if !strings.Contains(buf.String(), "slow operation") {
		t.Errorf("expected slow operation warning in log output, got %q", buf.String())
	}
}

func TestMonitorTimed(t *testing.T) {
	m := New(0, nil)

	done := m.Timed("stats.compute")
	time.Sleep(5 * time.Millisecond)
	done()

	snaps := m.Snapshot()
	if len(snaps) != 1 || snaps[0].Count != 1 {
		t.Fatalf("expected one recorded run, got %+v", snaps)
	}
	if snaps[0].Total <= 0 {
		t.Errorf("expected positive elapsed time, got %v", snaps[0].Total)
	}
}
