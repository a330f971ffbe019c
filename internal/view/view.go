// Package view derives board-ready groupings from a snapshot of the task
// forest. Nothing here mutates a task; every function is safe to call
// concurrently on the same snapshot.
package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/tree"
)

// DefaultClosedWindowDays is how long a closed task stays on the board.
const DefaultClosedWindowDays = 7

// Active returns the non-archived top-level tasks, in order.
func Active(tasks []*model.Task) []*model.Task {
	out := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && !t.IsArchived {
			out = append(out, t)
		}
	}
	return out
}

// Archived returns the topmost archived tasks at any depth, pre-order. A
// task below an archived ancestor is not listed separately.
func Archived(tasks []*model.Task) []*model.Task {
	out := []*model.Task{}
	var under []bool
	tree.Walk(tasks, func(t *model.Task, depth int) bool {
		parentArchived := depth > 0 && under[depth-1]
		under = append(under[:depth], parentArchived || t.IsArchived)
		if t.IsArchived && !parentArchived {
			out = append(out, t)
		}
		return true
	})
	return out
}

// ClosedWindow limits how far back closed tasks are shown. All disables
// the limit; a zero Days means DefaultClosedWindowDays.
type ClosedWindow struct {
	Days int
	All  bool
}

// ParseClosedWindow accepts "all" or a positive number of days.
func ParseClosedWindow(s string) (ClosedWindow, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ClosedWindow{Days: DefaultClosedWindowDays}, nil
	}
	if s == "all" {
		return ClosedWindow{All: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return ClosedWindow{}, fmt.Errorf("invalid closed window %q (expected a number of days or \"all\")", s)
	}
	return ClosedWindow{Days: n}, nil
}

type Criteria struct {
	// Search, when non-empty, replaces every other filter and matches name
	// and description case-insensitively.
	Search string
	// Assignee matches anyone in the task's subtree; "" or "all" disables.
	Assignee string
	// Category matches the task's own category; "" or "all" disables.
	Category     string
	ClosedWindow ClosedWindow
}

func enabled(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "all")
}

// Filter applies c to tasks, keeping their order.
func Filter(tasks []*model.Task, c Criteria, now time.Time) []*model.Task {
	out := make([]*model.Task, 0, len(tasks))
	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
				out = append(out, t)
			}
		}
		return out
	}

	days := c.ClosedWindow.Days
	if days <= 0 {
		days = DefaultClosedWindowDays
	}
	cutoff := now.AddDate(0, 0, -days)
	for _, t := range tasks {
		if enabled(c.Assignee) {
			if _, ok := tree.CollectAssignees(t)[strings.TrimSpace(c.Assignee)]; !ok {
				continue
			}
		}
		if enabled(c.Category) && t.Category != strings.TrimSpace(c.Category) {
			continue
		}
		if t.IsClosed() && !c.ClosedWindow.All {
			if t.ClosedDate == nil || !t.ClosedDate.After(cutoff) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

type Order string

const (
	Oldest Order = "oldest"
	Newest Order = "newest"
)

func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", Oldest:
		return Oldest, nil
	case Newest:
		return Newest, nil
	default:
		return "", fmt.Errorf("invalid sort order %q (expected oldest|newest)", s)
	}
}

// Sort returns a stably sorted copy: urgent tasks first, then by due date
// in the given order.
func Sort(tasks []*model.Task, order Order) []*model.Task {
	out := append([]*model.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsUrgent != b.IsUrgent {
			return a.IsUrgent
		}
		if order == Newest {
			return a.DueDate.After(b.DueDate)
		}
		return a.DueDate.Before(b.DueDate)
	})
	return out
}

// Column is one status bucket of the board.
type Column struct {
	Status model.Status  `json:"status"`
	Tasks  []*model.Task `json:"tasks"`
}

// GroupByStatus partitions tasks into Open, In Progress and Closed columns,
// in that order, keeping the input order inside each column.
func GroupByStatus(tasks []*model.Task) []Column {
	cols := make([]Column, len(model.Statuses))
	idx := map[model.Status]int{}
	for i, st := range model.Statuses {
		cols[i] = Column{Status: st, Tasks: []*model.Task{}}
		idx[st] = i
	}
	for _, t := range tasks {
		if i, ok := idx[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}
