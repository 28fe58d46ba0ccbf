package tui

import "time"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskConnect TaskID = iota // Checking credentials against the destination
	TaskSource                // Reading products or the last bug id from Bugzilla
	TaskLabels                // Deleting or creating labels
	TaskImport                // Creating placeholder issues
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., "12/30" for progress)
	Count    int     // Count of items (e.g., labels created)
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports the destination's remaining API budget.
type RateLimitEvent struct {
	Remaining int
	ResetAt   time.Time
	// Limited is set once requests are being refused.
	Limited bool
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
