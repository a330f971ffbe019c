package view

import (
	"sort"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/tree"
)

// BoardView is the full kanban board: the filtered status columns plus the
// unfiltered today and this-week columns.
type BoardView struct {
	Columns []Column   `json:"columns"`
	Today   []DueEntry `json:"today"`
	Week    []DueEntry `json:"week"`
}

// Board builds the board from the top-level task list. Archived tasks are
// skipped before anything else.
func Board(tasks []*model.Task, c Criteria, order Order, now time.Time, today model.Date) BoardView {
	active := Active(tasks)
	return BoardView{
		Columns: GroupByStatus(Sort(Filter(active, c, now), order)),
		Today:   DueToday(active, today),
		Week:    DueThisWeek(active, today),
	}
}

type Stats struct {
	Open        int `json:"open"`
	InProgress  int `json:"inProgress"`
	Overdue     int `json:"overdue"`
	DueToday    int `json:"dueToday"`
	DueThisWeek int `json:"dueThisWeek"`
	// Closed counts archived tasks too.
	Closed int `json:"closed"`
}

type DashboardView struct {
	Stats    Stats         `json:"stats"`
	Urgent   []*model.Task `json:"urgent"`
	Upcoming []*model.Task `json:"upcoming"`
}

const upcomingLimit = 5

// Dashboard summarizes the top-level tasks.
func Dashboard(tasks []*model.Task, today model.Date) DashboardView {
	active := Active(tasks)
	var v DashboardView
	for _, t := range tasks {
		if t.IsClosed() {
			v.Stats.Closed++
		}
	}
	for _, t := range active {
		switch t.Status {
		case model.StatusOpen:
			v.Stats.Open++
		case model.StatusInProgress:
			v.Stats.InProgress++
		}
	}
	v.Stats.Overdue = len(Overdue(active, today))
	v.Stats.DueToday = len(DueWithin(active, today.AddDays(-1), today))
	v.Stats.DueThisWeek = len(DueWithin(active, today, today.AddDays(7)))

	byDue := func(xs []*model.Task) []*model.Task {
		sort.SliceStable(xs, func(i, j int) bool { return xs[i].DueDate.Before(xs[j].DueDate) })
		return xs
	}
	v.Urgent = []*model.Task{}
	v.Upcoming = []*model.Task{}
	for _, t := range active {
		if t.IsClosed() {
			continue
		}
		if t.IsUrgent {
			v.Urgent = append(v.Urgent, t)
		}
		if !t.DueDate.Before(today) {
			v.Upcoming = append(v.Upcoming, t)
		}
	}
	v.Urgent = byDue(v.Urgent)
	v.Upcoming = byDue(v.Upcoming)
	if len(v.Upcoming) > upcomingLimit {
		v.Upcoming = v.Upcoming[:upcomingLimit]
	}
	return v
}

// LogLine is a log entry tagged with the task it belongs to.
type LogLine struct {
	TaskID   string `json:"taskId"`
	TaskName string `json:"taskName"`
	model.LogEntry
}

// LogSummary gathers the log of task and its whole subtree, newest first.
func LogSummary(task *model.Task) []LogLine {
	out := []LogLine{}
	if task == nil {
		return out
	}
	tree.Walk([]*model.Task{task}, func(t *model.Task, _ int) bool {
		for _, e := range t.Log {
			out = append(out, LogLine{TaskID: t.ID, TaskName: t.Name, LogEntry: e})
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
