package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// Task is one step of a migration command shown in the progress display.
type Task struct {
	ID       TaskID
	Name     string
	Status   TaskStatus
	Message  string
	Count    int
	Progress float64
	Error    error

	// Started and Finished bound the task's running time.
	Started  time.Time
	Finished time.Time
}

// NewTask creates a pending task with the given ID and name.
func NewTask(id TaskID, name string) Task {
	return Task{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	}
}

// apply records a status transition at now.
func (t *Task) apply(status TaskStatus, now time.Time) {
	if status == StatusRunning && t.Started.IsZero() {
		t.Started = now
	}
	if (status == StatusComplete || status == StatusError) && t.Finished.IsZero() {
		if t.Started.IsZero() {
			t.Started = now
		}
		t.Finished = now
	}
	t.Status = status
}

// Elapsed is the running time so far, or the total once finished.
func (t Task) Elapsed(now time.Time) time.Duration {
	switch {
	case t.Started.IsZero():
		return 0
	case !t.Finished.IsZero():
		return t.Finished.Sub(t.Started)
	default:
		return now.Sub(t.Started)
	}
}

// Remaining estimates the time left from the progress rate so far.
func (t Task) Remaining(now time.Time) (time.Duration, bool) {
	if t.Status != StatusRunning || t.Progress <= 0 || t.Progress >= 1 {
		return 0, false
	}
	elapsed := t.Elapsed(now)
	if elapsed < time.Second {
		return 0, false
	}
	left := time.Duration(float64(elapsed) * (1 - t.Progress) / t.Progress)
	return left.Round(time.Second), true
}

// View renders the task as a string.
func (t Task) View(spinnerFrame string, prog progress.Model, now time.Time) string {
	icon := StatusIcon(t.Status, spinnerFrame)

	var name string
	if t.Status == StatusPending {
		name = taskDimStyle.Render(t.Name)
	} else {
		name = taskNameStyle.Render(t.Name)
	}

	line := fmt.Sprintf("  %s %s", icon, name)

	if t.Status == StatusRunning && t.Progress > 0 {
		line += fmt.Sprintf(" %s %d%%", prog.ViewAs(t.Progress), int(t.Progress*100))
		if t.Message != "" {
			line += " " + messageStyle.Render(fmt.Sprintf("(%s)", t.Message))
		}
		if left, ok := t.Remaining(now); ok {
			line += " " + messageStyle.Render(fmt.Sprintf("~%s left", left))
		}
	} else if t.Message != "" {
		line += " " + messageStyle.Render(t.Message)
	}

	if t.Count > 0 && t.Message == "" {
		line += " " + messageStyle.Render(fmt.Sprintf("(%d)", t.Count))
	}

	if t.Status == StatusComplete {
		if d := t.Elapsed(now); d >= time.Second {
			line += " " + taskDimStyle.Render(fmt.Sprintf("in %s", d.Round(time.Second)))
		}
	}

	if t.Error != nil {
		line += " " + errorStyle.Render(t.Error.Error())
	}

	return line
}
