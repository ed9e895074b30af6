package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Scheduler errors
	ErrSchedulerClosed = fmt.Errorf("scheduler closed")
	ErrQueueFull       = fmt.Errorf("task queue full")
	ErrDrainTimeout    = fmt.Errorf("drain timed out")

	// Persistence errors
	ErrNotFound        = fmt.Errorf("record not found")
	ErrMigrationFailed = fmt.Errorf("migration failed")
	ErrStockExceeded   = fmt.Errorf("quantity exceeds stock")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrTermTooShort    = fmt.Errorf("search term too short")
)
