package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CountRecords Phase = iota
	FetchPages
	WriteFile
)

func (p Phase) String() string {
	switch p {
	case CountRecords:
		return "count_records"
	case FetchPages:
		return "fetch_pages"
	case WriteFile:
		return "write_file"
	default:
		return ""
	}
}

func countingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CountRecords,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Counting %s records...", name),
	}
}

func countedUpdate(name string, totalRows, totalPages int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CountRecords,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d %s records across %d pages", totalRows, name, totalPages),
		Data:    totalRows,
	}
}

func pageFetchedUpdate(step, total, page int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetched page %d", step, total, page),
	}
}

func pageFailedUpdate(step, total, page int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ page %d: %v", step, total, page, err),
	}
}

func wroteFileUpdate(path string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d rows to %s", rows, path),
		Data:    path,
	}
}

// sendProgress delivers an update without blocking; when nobody is
// listening the update is dropped.
func sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
