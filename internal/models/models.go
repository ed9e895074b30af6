package models

import "context"

// Model defines the base interface for all persistent records.
// Implementations include Product, Debit, Invoice, etc.
type Model interface {
	ID() int64       // ID returns the integer primary key, 0 before the record is stored
	Validate() error // Validate checks if the record's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific record types.
// Every operation takes a context so loads running on background workers
// stop when their scheduler shuts down.
type Repository[T Model] interface {
	Create(ctx context.Context, record T) error                     // Create inserts a new record and assigns its ID
	Get(ctx context.Context, id int64) (T, error)                   // Get retrieves a record by its ID
	Update(ctx context.Context, record T) error                     // Update modifies an existing record
	Delete(ctx context.Context, id int64) error                     // Delete removes a record by its ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all records matching the given criteria
}
