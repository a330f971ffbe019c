package view

import (
	"taskboard/internal/model"
	"taskboard/internal/tree"
)

func inRange(d, after, through model.Date) bool {
	return d.After(after) && !d.After(through)
}

// DueWithin selects the non-closed tasks whose own due date lies in
// (after, through].
func DueWithin(tasks []*model.Task, after, through model.Date) []*model.Task {
	out := []*model.Task{}
	for _, t := range tasks {
		if !t.IsClosed() && inRange(t.DueDate, after, through) {
			out = append(out, t)
		}
	}
	return out
}

// DueEntry is one row of a due-date column.
type DueEntry struct {
	Task *model.Task `json:"task"`
	// SelfDue is set when the task itself is due in the range.
	SelfDue bool `json:"selfDue"`
	// HasDueSubtask is set when a non-closed descendant is due in the range.
	HasDueSubtask bool `json:"hasDueSubtask"`
	// DueSubtasks lists those descendants, pre-order.
	DueSubtasks []*model.Task `json:"dueSubtasks,omitempty"`
}

// DueWithinMarked returns one entry per task that is itself due in
// (after, through] or has a non-closed descendant due there. A parent is
// listed once however many of its descendants match.
func DueWithinMarked(tasks []*model.Task, after, through model.Date) []DueEntry {
	out := []DueEntry{}
	for _, t := range tasks {
		if t.IsClosed() {
			continue
		}
		e := DueEntry{Task: t, SelfDue: inRange(t.DueDate, after, through)}
		e.DueSubtasks = tree.Descendants(t, func(st *model.Task) bool {
			return !st.IsClosed() && inRange(st.DueDate, after, through)
		})
		e.HasDueSubtask = len(e.DueSubtasks) > 0
		if e.SelfDue || e.HasDueSubtask {
			out = append(out, e)
		}
	}
	return out
}

// DueToday covers the single day today.
func DueToday(tasks []*model.Task, today model.Date) []DueEntry {
	return DueWithinMarked(tasks, today.AddDays(-1), today)
}

// DueThisWeek covers the seven days after today.
func DueThisWeek(tasks []*model.Task, today model.Date) []DueEntry {
	return DueWithinMarked(tasks, today, today.AddDays(7))
}

// Overdue selects non-closed tasks due before today.
func Overdue(tasks []*model.Task, today model.Date) []*model.Task {
	out := []*model.Task{}
	for _, t := range tasks {
		if !t.IsClosed() && t.DueDate.Before(today) {
			out = append(out, t)
		}
	}
	return out
}
