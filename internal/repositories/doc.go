// Package repositories implements SQLite persistence for all record types.
//
// Each repository satisfies models.Repository[T] for one entity and adds that
// entity's paged list queries and aggregates:
//   - [ProductRepository] : Catalog CRUD, paged listing, ranked name search
//     and guarded stock adjustment
//   - [DebitRepository] : Debit book CRUD, paged listing with a paid filter,
//     settlement via MarkPaid and whole-book stats
//   - [InvoiceRepository] : Sale recording with line items in one
//     transaction, paged listing, daily summaries and best-seller rankings
//
// Paged queries run a COUNT(*) and a LIMIT/OFFSET window under the same
// WHERE clause so the total shown in a footer always matches the rows on
// screen. Every query takes a context; loads running on scheduler workers
// stop when the scheduler shuts down.
package repositories
