// Package rollup keeps a parent task's due date trailing the due dates of
// its unfinished subtasks.
package rollup

import (
	"time"

	"taskboard/internal/model"
	"taskboard/internal/tree"
)

// Policy holds the two offsets used by Apply.
type Policy struct {
	// OverdueWeekdays is how many business days after today a parent is
	// pushed when any unfinished subtask is overdue.
	OverdueWeekdays int
	// TrailingDays is how many calendar days the parent trails its latest
	// unfinished subtask.
	TrailingDays int
}

func DefaultPolicy() Policy {
	return Policy{OverdueWeekdays: 5, TrailingDays: 7}
}

// AddWeekdays advances one calendar day at a time and counts only
// Monday..Friday until n weekdays have been added.
func AddWeekdays(d model.Date, n int) model.Date {
	added := 0
	for added < n {
		d = d.AddDays(1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}

// Apply recomputes task.DueDate from its subtasks and reports whether it
// changed. Urgent tasks and tasks without unfinished subtasks are left
// alone; otherwise the date only ever moves forward, except for the
// overdue reset which is relative to today.
func Apply(task *model.Task, today model.Date, p Policy) bool {
	if task == nil || task.IsUrgent {
		return false
	}
	pending := tree.Descendants(task, func(t *model.Task) bool { return !t.IsClosed() })
	if len(pending) == 0 {
		return false
	}

	for _, st := range pending {
		if st.DueDate.Before(today) {
			next := AddWeekdays(today, p.OverdueWeekdays)
			if task.DueDate.Equal(next) {
				return false
			}
			task.DueDate = next
			return true
		}
	}

	latest := pending[0].DueDate
	for _, st := range pending[1:] {
		if st.DueDate.After(latest) {
			latest = st.DueDate
		}
	}
	candidate := latest.AddDays(p.TrailingDays)
	if !candidate.After(task.DueDate) {
		return false
	}
	task.DueDate = candidate
	return true
}

// ApplyChain runs Apply on every task of a root-to-node chain, nearest
// ancestor first, so each level sees its children's updated dates. It
// returns the tasks whose due date changed.
func ApplyChain(chain []*model.Task, today model.Date, p Policy) []*model.Task {
	var changed []*model.Task
	for i := len(chain) - 1; i >= 0; i-- {
		if Apply(chain[i], today, p) {
			changed = append(changed, chain[i])
		}
	}
	return changed
}
