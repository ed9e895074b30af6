package ui

import (
	"github.com/desertthunder/tally/internal/tasks"
)

// Messages that re-enter the Elm loop from outside Update. Everything the
// scheduler or a timer goroutine produces is wrapped in one of these and
// handled on the loop goroutine; workers never touch the model.

// completionMsg carries one finished scheduler task. Update calls Deliver on
// it, which runs the task's callbacks right there in the loop.
type completionMsg struct {
	completion tasks.Completion
}

// completionsClosedMsg signals that the scheduler shut down and no further
// completions will arrive. The wait command stops re-arming.
type completionsClosedMsg struct{}

// searchFiredMsg carries a debounced search term from the debounce timer
// goroutine onto the loop.
type searchFiredMsg struct {
	term string
}
