// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a two-screen record browser for the shop ledger:
//  1. [DebitsView] : Browse customer debts page by page, search by name or phone, mark entries paid
//  2. [ProductsView] : Browse the product catalog page by page and search by name
//
// Each screen owns a [paging.Controller] that runs its database loads on the shared
// task scheduler. Nothing outside Update ever touches model state: finished tasks
// come back through a re-arming wait command on the scheduler's completion queue,
// and debounced search fires are bridged over an internal message channel.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l for pages, /, p, r, tab, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
