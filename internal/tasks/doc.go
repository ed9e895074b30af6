// Package tasks keeps the UI responsive while records load from the database.
//
// # Scheduler
//
// The [Scheduler] owns a bounded worker pool and a FIFO completion queue:
//
//  1. [Scheduler.Submit] : Fire-and-forget submission of a keyed [Task]
//     - At most one task per key is queued-or-running at any time
//     - A submission for an active key supersedes that key's waiting task,
//       which is dropped without callbacks
//     - Work runs on a pool worker; a panic becomes an error result
//
//  2. [Scheduler.Completions] / [Scheduler.Pump] : Completion delivery
//     - Results are never delivered from a worker
//     - The UI-owning goroutine drains the queue and calls
//       [Completion.Deliver], so every callback runs on that goroutine in
//       posting order
//
//  3. [Scheduler.Close] : Shutdown
//     - New submissions are rejected, queued tasks are dropped silently,
//       in-flight work drains within a timeout or is abandoned
//
// # Progress Indication
//
// [ProgressScope] pairs a shown busy indicator with a close-exactly-once
// guarantee. Pages open a scope before submitting a load and close it in
// both the success and the error callback; double closes are no-ops, so a
// deferred close on an early-return path cannot leave a stuck dialog.
//
// # Debounced Input
//
// [Debouncer] turns a burst of keystrokes into one trailing delivery of the
// last value after a quiet period, and guarantees no delivery after Stop.
//
// # Bulk Export
//
// [ExportCSV] walks every page of a record set with a small worker pool
// under a rate limiter and writes one CSV file, streaming [ProgressUpdate]
// events over a non-blocking channel for display.
package tasks
