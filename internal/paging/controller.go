// Package paging keeps one screen's paged list state consistent while loads
// run in the background. A Controller owns the applied page, filter, and rows
// for a single list; every load it submits carries a generation number, and
// results from older generations are discarded so a slow page 2 can never
// overwrite a fast page 3.
//
// Controllers are single-goroutine objects. Methods and callbacks all run on
// the goroutine that owns the UI state; the scheduler's completion queue is
// what gets results back onto that goroutine.
package paging

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/desertthunder/tally/internal/tasks"
)

// Row is one record rendered as ordered display cells.
type Row []string

// Loader fetches one page of raw records matching a filter.
type Loader[R any] func(ctx context.Context, page, pageSize int, filter string) (models.PagedResult[R], error)

// State is a snapshot of a controller for rendering. Rows holds the applied
// page's records; LoadTime is how long the load behind them took.
type State struct {
	Page       int
	TotalPages int
	PageSize   int
	TotalCount int
	Filter     string
	Rows       []Row
	Loading    bool
	LoadTime   time.Duration
}

// ControllerOpts configures a Controller. Key, PageSize, Scheduler, Load and
// MapRow are required; OnState and OnError may be nil.
type ControllerOpts[R any] struct {
	Key       string           // Scheduler task key, one per screen
	PageSize  int              // Records per page
	Scheduler *tasks.Scheduler // Runs the loads
	Load      Loader[R]        // Fetches a page
	MapRow    func(R) Row      // Maps a record to display cells
	OnState   func(State)      // Called after every state change
	OnError   func(error)      // Called when a load fails
	Logger    *log.Logger
}

// Controller drives paged loading for one list screen. It clamps page
// requests, funnels loads through the scheduler under a single task key, and
// applies results only when they are both successful and current.
type Controller[R any] struct {
	key       string
	pageSize  int
	scheduler *tasks.Scheduler
	load      Loader[R]
	mapRow    func(R) Row
	onState   func(State)
	onError   func(error)
	logger    *log.Logger

	// generation identifies the newest submission; completions carrying an
	// older value are stale and never rendered.
	generation uint64

	page       int
	totalPages int
	totalCount int
	filter     string
	rows       []Row
	loading    bool
	loadTime   time.Duration
}

// NewController builds a Controller. Missing required options are caller
// bugs and panic.
func NewController[R any](opts ControllerOpts[R]) *Controller[R] {
	if opts.Key == "" {
		panic("paging: Key is required")
	}
	if opts.PageSize <= 0 {
		panic("paging: PageSize must be positive")
	}
	if opts.Scheduler == nil {
		panic("paging: Scheduler is required")
	}
	if opts.Load == nil {
		panic("paging: Load is required")
	}
	if opts.MapRow == nil {
		panic("paging: MapRow is required")
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Controller[R]{
		key:        opts.Key,
		pageSize:   opts.PageSize,
		scheduler:  opts.Scheduler,
		load:       opts.Load,
		mapRow:     opts.MapRow,
		onState:    opts.OnState,
		onError:    opts.OnError,
		logger:     opts.Logger,
		page:       1,
		totalPages: 1,
	}
}

// State returns the current snapshot.
func (c *Controller[R]) State() State {
	return State{
		Page:       c.page,
		TotalPages: c.totalPages,
		PageSize:   c.pageSize,
		TotalCount: c.totalCount,
		Filter:     c.filter,
		Rows:       c.rows,
		Loading:    c.loading,
		LoadTime:   c.loadTime,
	}
}

// SetPage requests the given page, clamped to [1, totalPages]. Requesting
// the applied page again is a no-op.
func (c *Controller[R]) SetPage(n int) {
	target := n
	if target < 1 {
		target = 1
	}
	if target > c.totalPages {
		target = c.totalPages
	}
	if target == c.page {
		return
	}
	c.submit(target, c.filter)
}

// SetFilter requests page 1 under a new filter term. It always submits,
// even when the term is unchanged, so re-running a search reloads.
func (c *Controller[R]) SetFilter(term string) {
	c.submit(1, term)
}

// Refresh reloads the applied page and filter.
func (c *Controller[R]) Refresh() {
	c.submit(c.page, c.filter)
}

// submit starts a load for (page, filter) under a fresh generation.
func (c *Controller[R]) submit(page int, filter string) {
	c.generation++
	gen := c.generation
	pageSize := c.pageSize
	start := time.Now()

	c.loading = true
	c.notify()

	err := c.scheduler.Submit(tasks.Task{
		Key: c.key,
		Work: func(ctx context.Context) (any, error) {
			return c.load(ctx, page, pageSize, filter)
		},
		OnSuccess: func(value any) {
			c.reconcile(gen, filter, value.(models.PagedResult[R]), start)
		},
		OnError: func(err error) {
			c.fail(gen, err)
		},
	})
	if err != nil {
		// Saturation or shutdown surfaces like a failed load: keep the
		// applied state, report, stop the spinner.
		c.fail(gen, err)
	}
}

// reconcile applies a completed load, unless a newer submission has made it
// stale. The applied page is clamped to the result's page count, which can
// shrink when a filter narrows the data underneath a high page number.
func (c *Controller[R]) reconcile(gen uint64, filter string, result models.PagedResult[R], start time.Time) {
	if gen != c.generation {
		c.logger.Debug("discarding stale page", "key", c.key, "generation", gen, "current", c.generation)
		return
	}

	rows := make([]Row, 0, len(result.Items))
	for _, item := range result.Items {
		rows = append(rows, c.mapRow(item))
	}

	c.rows = rows
	c.totalCount = result.TotalCount
	c.totalPages = result.TotalPages()
	c.page = result.Page
	if c.page > c.totalPages {
		c.page = c.totalPages
	}
	if c.page < 1 {
		c.page = 1
	}
	c.filter = filter
	c.loadTime = time.Since(start)
	c.loading = false
	c.notify()
}

// fail reports a load failure. The applied rows and totals stay untouched
// so the screen keeps showing the last good page.
func (c *Controller[R]) fail(gen uint64, err error) {
	if gen != c.generation {
		c.logger.Debug("discarding stale error", "key", c.key, "generation", gen, "current", c.generation)
		return
	}

	c.loading = false
	if c.onError != nil {
		c.onError(err)
	}
	c.notify()
}

func (c *Controller[R]) notify() {
	if c.onState != nil {
		c.onState(c.State())
	}
}
