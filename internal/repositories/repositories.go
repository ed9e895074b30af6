package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tally/internal/monitor"
)

// Default page sizes and search bounds. Products pages are larger because the
// rows are narrow; debit and invoice rows carry more detail.
const (
	DefaultProductPageSize = 100
	DefaultDebitPageSize   = 50
	DefaultInvoicePageSize = 50
	DefaultSearchLimit     = 10
	MinSearchChars         = 2
)

// pageWindow converts a 1-based page into LIMIT/OFFSET values.
func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

// countRows runs a COUNT(*) query and returns the result.
func countRows(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// observe records a query duration when a monitor is attached.
//
//	defer observe(r.mon, "products.get_paged", time.Now())
func observe(mon *monitor.Monitor, name string, start time.Time) {
	if mon != nil {
		mon.Observe(name, time.Since(start))
	}
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}
