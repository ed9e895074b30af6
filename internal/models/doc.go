// Package models defines domain entities and persistence interfaces for the tally record-keeping tool.
//
// The package contains two categories of types:
//
// 1. Records: database-backed rows for the shop's books
//   - [Product] : Inventory items with prices, stock and barcode
//   - [Debit] : Customer debts with paid/unpaid lifecycle
//   - [Invoice] / [InvoiceItem] : Completed sales with line items
//
// 2. Aggregates and projections: read-only shapes produced by queries
//   - [PagedResult] : One page of a larger result set with paging metadata
//   - [DebitStats] : Paid/unpaid totals across all debits
//   - [SalesSummary] / [TopProduct] : Daily sales rollups
//
// All records implement the Model interface providing integer IDs and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
