package view

import (
	"testing"
	"time"

	"taskboard/internal/model"
)

func TestBoard_SkipsArchived(t *testing.T) {
	a := task("a", "A", "X", "2025-03-10")
	b := task("b", "A", "X", "2025-03-12")
	b.IsArchived = true
	v := Board([]*model.Task{a, b}, Criteria{}, Oldest, now, today)
	if ids(v.Columns[0].Tasks) != "a" {
		t.Fatalf("unexpected open column: %q", ids(v.Columns[0].Tasks))
	}
	if len(v.Today) != 1 || v.Today[0].Task != a || len(v.Week) != 0 {
		t.Fatalf("unexpected due columns: %+v %+v", v.Today, v.Week)
	}
}

func TestArchived_TopmostOnly(t *testing.T) {
	root := task("root", "", "X", "2025-03-10")
	root.IsArchived = true
	root.Subtasks = []*model.Task{task("child", "", "X", "2025-03-10")}
	root.Subtasks[0].IsArchived = true
	other := task("other", "", "X", "2025-03-10")
	other.Subtasks = []*model.Task{task("inner", "", "X", "2025-03-10")}
	other.Subtasks[0].IsArchived = true
	if got := ids(Archived([]*model.Task{root, other})); got != "root,inner" {
		t.Fatalf("archived = %q", got)
	}
}

func TestDashboard(t *testing.T) {
	tasks := []*model.Task{
		task("over", "", "X", "2025-03-01"),
		task("today", "", "X", "2025-03-10"),
		task("soon", "", "X", "2025-03-12"),
		task("u1", "", "X", "2025-03-20"),
		task("u2", "", "X", "2025-03-05"),
		task("far", "", "X", "2025-04-30"),
		task("far2", "", "X", "2025-05-30"),
		closedAt(task("done", "", "X", "2025-03-01"), now),
		closedAt(task("gone", "", "X", "2025-03-01"), now),
	}
	tasks[3].IsUrgent = true
	tasks[4].IsUrgent = true
	tasks[2].Status = model.StatusInProgress
	tasks[8].IsArchived = true

	v := Dashboard(tasks, today)
	want := Stats{Open: 6, InProgress: 1, Overdue: 2, DueToday: 1, DueThisWeek: 1, Closed: 2}
	if v.Stats != want {
		t.Fatalf("stats = %+v, want %+v", v.Stats, want)
	}
	if ids(v.Urgent) != "u2,u1" {
		t.Fatalf("urgent = %q", ids(v.Urgent))
	}
	if ids(v.Upcoming) != "today,soon,u1,far,far2" {
		t.Fatalf("upcoming = %q", ids(v.Upcoming))
	}
}

func TestLogSummary(t *testing.T) {
	ts := func(h int) time.Time { return time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC) }
	root := task("root", "", "X", "2025-03-10")
	root.Log = []model.LogEntry{{Timestamp: ts(9), Message: "r1"}, {Timestamp: ts(7), Message: "r0"}}
	child := task("child", "", "X", "2025-03-10")
	child.Log = []model.LogEntry{{Timestamp: ts(8), Message: "c1"}}
	root.Subtasks = []*model.Task{child}

	got := LogSummary(root)
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got))
	}
	order := got[0].Message + got[1].Message + got[2].Message
	if order != "r1c1r0" || got[1].TaskName != "Task child" {
		t.Fatalf("unexpected summary: %+v", got)
	}
}
