package paging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/desertthunder/tally/internal/tasks"
)

// pageStore is an in-memory loader: records 0..total-1, sliced into pages.
type pageStore struct {
	mu       sync.Mutex
	total    int
	err      error
	delay    time.Duration
	block    chan struct{}
	requests []string
}

func (p *pageStore) load(ctx context.Context, page, pageSize int, filter string) (models.PagedResult[int], error) {
	p.mu.Lock()
	p.requests = append(p.requests, fmt.Sprintf("%d:%s", page, filter))
	total := p.total
	err := p.err
	delay := p.delay
	gate := p.block
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return models.PagedResult[int]{}, err
	}

	start := (page - 1) * pageSize
	n := total - start
	if n < 0 {
		n = 0
	}
	if n > pageSize {
		n = pageSize
	}
	items := make([]int, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, start+i)
	}
	return models.PagedResult[int]{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (p *pageStore) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type recorder struct {
	states []State
	errs   []error
}

func newTestController(t *testing.T, store *pageStore, pageSize int) (*Controller[int], *tasks.Scheduler, *recorder) {
	t.Helper()
	quiet := log.New(io.Discard)
	sched := tasks.NewScheduler(tasks.SchedulerOpts{Workers: 1, Logger: quiet})
	t.Cleanup(func() { sched.Close() })

	rec := &recorder{}
	c := NewController(ControllerOpts[int]{
		Key:       "load_test",
		PageSize:  pageSize,
		Scheduler: sched,
		Load:      store.load,
		MapRow:    func(v int) Row { return Row{strconv.Itoa(v)} },
		OnState:   func(s State) { rec.states = append(rec.states, s) },
		OnError:   func(err error) { rec.errs = append(rec.errs, err) },
		Logger:    quiet,
	})
	return c, sched, rec
}

// settle pumps completions until the controller stops loading.
func settle(t *testing.T, c *Controller[int], sched *tasks.Scheduler) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sched.Pump(0)
		if st := c.State(); !st.Loading {
			return st
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("controller never settled")
	return State{}
}

func TestControllerLoadsAndClampsPages(t *testing.T) {
	store := &pageStore{total: 25, delay: 5 * time.Millisecond}
	c, sched, _ := newTestController(t, store, 10)

	c.Refresh()
	st := settle(t, c, sched)
	if st.Page != 1 || st.TotalPages != 3 || st.TotalCount != 25 {
		t.Fatalf("after refresh: page=%d totalPages=%d totalCount=%d, want 1, 3, 25", st.Page, st.TotalPages, st.TotalCount)
	}
	if len(st.Rows) != 10 || st.Rows[0][0] != "0" {
		t.Errorf("rows = %d starting %v, want 10 starting [0]", len(st.Rows), st.Rows[0])
	}
	if st.LoadTime < 5*time.Millisecond {
		t.Errorf("LoadTime = %v, want at least the loader delay", st.LoadTime)
	}

	// Past the end clamps to the last page.
	c.SetPage(5)
	st = settle(t, c, sched)
	if st.Page != 3 {
		t.Errorf("SetPage(5) landed on page %d, want 3", st.Page)
	}
	if len(st.Rows) != 5 || st.Rows[0][0] != "20" {
		t.Errorf("page 3 rows = %d starting %v, want 5 starting [20]", len(st.Rows), st.Rows)
	}

	// Below the start clamps to page 1.
	c.SetPage(0)
	st = settle(t, c, sched)
	if st.Page != 1 {
		t.Errorf("SetPage(0) landed on page %d, want 1", st.Page)
	}

	// Requesting the applied page again does nothing.
	before := store.requestCount()
	c.SetPage(1)
	if st := c.State(); st.Loading {
		t.Error("SetPage to the applied page started a load")
	}
	if store.requestCount() != before {
		t.Error("SetPage to the applied page hit the loader")
	}
}

func TestControllerFilterResetsToFirstPage(t *testing.T) {
	store := &pageStore{total: 25}
	c, sched, _ := newTestController(t, store, 10)

	c.Refresh()
	settle(t, c, sched)
	c.SetPage(3)
	if st := settle(t, c, sched); st.Page != 3 {
		t.Fatalf("page = %d, want 3", st.Page)
	}

	c.SetFilter("ab")
	st := settle(t, c, sched)
	if st.Page != 1 {
		t.Errorf("page after SetFilter = %d, want 1", st.Page)
	}
	if st.Filter != "ab" {
		t.Errorf("filter = %q, want %q", st.Filter, "ab")
	}

	// An unchanged term still reloads.
	before := store.requestCount()
	c.SetFilter("ab")
	settle(t, c, sched)
	if store.requestCount() != before+1 {
		t.Error("repeated SetFilter did not reload")
	}
}

func TestControllerDiscardsStaleResults(t *testing.T) {
	gate := make(chan struct{})
	store := &pageStore{total: 25, block: gate}
	c, sched, rec := newTestController(t, store, 10)

	// The unfiltered load starts and blocks; two filter keystrokes arrive
	// while it runs. The middle one is superseded before running, and the
	// unfiltered result that eventually lands must not be rendered.
	c.Refresh()
	time.Sleep(10 * time.Millisecond)
	c.SetFilter("x")
	c.SetFilter("xy")

	store.mu.Lock()
	store.block = nil
	store.total = 7
	store.mu.Unlock()
	close(gate)

	st := settle(t, c, sched)
	if st.Filter != "xy" || st.Page != 1 {
		t.Errorf("settled on filter=%q page=%d, want xy, 1", st.Filter, st.Page)
	}
	if st.TotalCount != 7 {
		t.Errorf("TotalCount = %d, want 7", st.TotalCount)
	}

	for _, s := range rec.states {
		if !s.Loading && s.TotalCount == 25 {
			t.Fatalf("stale unfiltered result was rendered: %+v", s)
		}
	}

	// The superseded middle keystroke never reached the loader.
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, r := range store.requests {
		if r == "1:x" {
			t.Error("superseded load ran")
		}
	}
}

func TestControllerErrorKeepsLastGoodState(t *testing.T) {
	store := &pageStore{total: 25}
	c, sched, rec := newTestController(t, store, 10)

	c.Refresh()
	settle(t, c, sched)

	store.mu.Lock()
	store.err = errors.New("database is locked")
	store.mu.Unlock()

	c.SetPage(2)
	st := settle(t, c, sched)

	if len(rec.errs) != 1 || rec.errs[0].Error() != "database is locked" {
		t.Fatalf("errs = %v, want the loader error", rec.errs)
	}
	if st.Page != 1 || st.TotalCount != 25 || len(st.Rows) != 10 {
		t.Errorf("state changed on error: page=%d totalCount=%d rows=%d", st.Page, st.TotalCount, len(st.Rows))
	}
	if st.Loading {
		t.Error("Loading still true after a failed load")
	}

	// The next attempt succeeds and moves on.
	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()

	c.SetPage(2)
	if st := settle(t, c, sched); st.Page != 2 {
		t.Errorf("page after recovery = %d, want 2", st.Page)
	}
}

func TestControllerReportsSubmitFailure(t *testing.T) {
	store := &pageStore{total: 5}
	c, sched, rec := newTestController(t, store, 10)

	sched.Close()
	c.Refresh()

	if len(rec.errs) != 1 || !errors.Is(rec.errs[0], shared.ErrSchedulerClosed) {
		t.Fatalf("errs = %v, want ErrSchedulerClosed", rec.errs)
	}
	if st := c.State(); st.Loading {
		t.Error("Loading still true after a rejected submission")
	}
}

func TestNewControllerValidation(t *testing.T) {
	quiet := log.New(io.Discard)
	sched := tasks.NewScheduler(tasks.SchedulerOpts{Workers: 1, Logger: quiet})
	defer sched.Close()

	valid := func() ControllerOpts[int] {
		return ControllerOpts[int]{
			Key:       "k",
			PageSize:  10,
			Scheduler: sched,
			Load: func(ctx context.Context, page, pageSize int, filter string) (models.PagedResult[int], error) {
				return models.PagedResult[int]{}, nil
			},
			MapRow: func(v int) Row { return Row{} },
			Logger: quiet,
		}
	}

	tests := []struct {
		name   string
		mutate func(*ControllerOpts[int])
	}{
		{"missing key", func(o *ControllerOpts[int]) { o.Key = "" }},
		{"non-positive page size", func(o *ControllerOpts[int]) { o.PageSize = 0 }},
		{"nil scheduler", func(o *ControllerOpts[int]) { o.Scheduler = nil }},
		{"nil loader", func(o *ControllerOpts[int]) { o.Load = nil }},
		{"nil row mapper", func(o *ControllerOpts[int]) { o.MapRow = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			opts := valid()
			tc.mutate(&opts)
			NewController(opts)
		})
	}
}
