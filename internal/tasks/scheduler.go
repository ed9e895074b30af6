package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/monitor"
	"github.com/desertthunder/tally/internal/shared"
)

// SchedulerOpts contains configuration options for creating a Scheduler.
type SchedulerOpts struct {
	Workers      int              // Pool size (default: 4, max: 8)
	QueueSize    int              // Pending submission bound (default: 64)
	CloseTimeout time.Duration    // Drain grace period for Close (default: 5s)
	Logger       *log.Logger      // Defaults to a stderr logger
	Monitor      *monitor.Monitor // Optional timing collector
}

// Scheduler runs Tasks on a bounded worker pool with at most one task per
// key queued-or-running at a time, and hands every completion back through
// a FIFO queue drained by the UI-owning goroutine.
//
// A submission for a key that is already active replaces that key's
// queued-but-not-started successor, if any; the replaced task is dropped
// without callbacks. Only the newest request's result matters for
// list-loading work, so older waiting requests are superseded rather than
// queued behind each other.
type Scheduler struct {
	logger       *log.Logger
	mon          *monitor.Monitor
	closeTimeout time.Duration

	queue       chan submission
	completions chan Completion

	ctx    context.Context
	cancel context.CancelFunc
	quit   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	active  map[string]bool
	pending map[string]submission
}

// submission pairs a task with the uuid identifying this particular run in
// log lines.
type submission struct {
	task Task
	id   string
}

// NewScheduler creates a Scheduler and starts its worker pool.
func NewScheduler(opts SchedulerOpts) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 8 {
		opts.Workers = 8
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		logger:       opts.Logger,
		mon:          opts.Monitor,
		closeTimeout: opts.CloseTimeout,
		queue:        make(chan submission, opts.QueueSize),
		completions:  make(chan Completion, opts.QueueSize+opts.Workers),
		ctx:          ctx,
		cancel:       cancel,
		quit:         make(chan struct{}),
		active:       make(map[string]bool),
		pending:      make(map[string]submission),
	}

	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Submit accepts a task for background execution. It never blocks.
//
// Returns [shared.ErrSchedulerClosed] after Close, [shared.ErrQueueFull]
// when the submission queue is saturated, and [shared.ErrInvalidInput] for
// tasks missing a key or work function.
func (s *Scheduler) Submit(task Task) error {
	if task.Key == "" {
		return fmt.Errorf("%w: task key required", shared.ErrInvalidInput)
	}
	if task.Work == nil {
		return fmt.Errorf("%w: task work function required", shared.ErrInvalidInput)
	}

	sub := submission{task: task, id: shared.GenerateID()}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrSchedulerClosed
	}
	if s.active[task.Key] {
		if prev, ok := s.pending[task.Key]; ok {
			s.logger.Debug("superseding queued task", "key", task.Key, "dropped_task_id", prev.id)
		}
		s.pending[task.Key] = sub
		s.mu.Unlock()
		return nil
	}
	s.active[task.Key] = true
	s.mu.Unlock()

	if err := s.enqueue(sub); err != nil {
		s.mu.Lock()
		delete(s.active, task.Key)
		s.mu.Unlock()
		return err
	}

	s.logger.Debug("task submitted", "key", task.Key, "task_id", sub.id)
	return nil
}

// Completions exposes the FIFO completion queue. The UI loop receives from
// it and calls [Completion.Deliver]; everything else goes through Pump.
func (s *Scheduler) Completions() <-chan Completion {
	return s.completions
}

// Pump delivers up to max pending completions on the calling goroutine and
// returns how many were delivered. A max of 0 or less drains everything
// currently queued. Pump never blocks.
func (s *Scheduler) Pump(max int) int {
	n := 0
	for max <= 0 || n < max {
		select {
		case c, ok := <-s.completions:
			if !ok {
				return n
			}
			c.Deliver()
			n++
		default:
			return n
		}
	}
	return n
}

// Close stops accepting submissions, drops queued-but-not-started tasks
// without invoking their callbacks, and waits up to the configured timeout
// for in-flight work to finish. Work still running at the deadline has its
// context canceled and is abandoned. Close is idempotent.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	dropped := len(s.pending) + len(s.queue)
	s.pending = make(map[string]submission)
	s.mu.Unlock()

	close(s.quit)

	if dropped > 0 {
		s.logger.Debug("dropping queued tasks", "count", dropped)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		close(s.completions)
		return nil
	case <-time.After(s.closeTimeout):
		s.cancel()
		s.logger.Warn("abandoning in-flight tasks", "timeout", s.closeTimeout)
		return shared.ErrDrainTimeout
	}
}

// enqueue places a submission on the worker queue without blocking.
func (s *Scheduler) enqueue(sub submission) error {
	select {
	case s.queue <- sub:
		return nil
	default:
		return shared.ErrQueueFull
	}
}

// worker pulls submissions until the scheduler shuts down. Submissions
// still queued at shutdown are dropped unexecuted.
func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case sub := <-s.queue:
			select {
			case <-s.quit:
				return
			default:
			}
			s.run(sub)
		}
	}
}

// run executes one submission and posts its completion, then promotes any
// superseding task waiting on the same key.
func (s *Scheduler) run(sub submission) {
	start := time.Now()
	value, err := s.execute(sub)
	elapsed := time.Since(start)

	if s.mon != nil {
		s.mon.Observe("task."+sub.task.Key, elapsed)
	}
	if err != nil {
		s.logger.Error("task failed", "key", sub.task.Key, "task_id", sub.id, "duration", elapsed, "error", err)
	} else {
		s.logger.Debug("task completed", "key", sub.task.Key, "task_id", sub.id, "duration", elapsed)
	}

	s.post(Completion{
		key:       sub.task.Key,
		id:        sub.id,
		value:     value,
		err:       err,
		onSuccess: sub.task.OnSuccess,
		onError:   sub.task.OnError,
	})

	s.finish(sub.task.Key)
}

// execute invokes the task's work function, converting a panic into an
// ordinary error so one faulty task cannot take down the pool.
func (s *Scheduler) execute(sub submission) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", sub.task.Key, r)
		}
	}()
	return sub.task.Work(s.ctx)
}

// finish releases the key or hands it to the superseding submission.
func (s *Scheduler) finish(key string) {
	s.mu.Lock()
	next, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	} else {
		delete(s.active, key)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	if err := s.enqueue(next); err != nil {
		s.mu.Lock()
		delete(s.active, key)
		s.mu.Unlock()
		s.logger.Warn("dropping superseded task, queue full", "key", key, "task_id", next.id)
	}
}

// post places a completion on the queue. When the consumer has fallen
// behind and the buffer is full, the oldest undelivered completion is
// dropped to make room so workers never block on a stalled UI.
func (s *Scheduler) post(c Completion) {
	for {
		select {
		case s.completions <- c:
			return
		default:
			select {
			case old := <-s.completions:
				s.logger.Warn("completion queue full, dropping oldest", "key", old.key)
			default:
			}
		}
	}
}
