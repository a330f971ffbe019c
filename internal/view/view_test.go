package view

import (
	"strings"
	"testing"
	"time"

	"taskboard/internal/model"
)

var (
	now   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	today = model.MustDate("2025-03-10")
)

func task(id, assignee, category, due string) *model.Task {
	t := &model.Task{
		ID: id, Name: "Task " + id, DueDate: model.MustDate(due), Category: category,
		Status: model.StatusOpen, Subtasks: []*model.Task{}, Log: []model.LogEntry{}, Links: []model.Link{},
	}
	if assignee != "" {
		t.Assignee = model.StrPtr(assignee)
	}
	return t
}

func closedAt(t *model.Task, ts time.Time) *model.Task {
	t.Status = model.StatusClosed
	t.ClosedDate = &ts
	return t
}

func ids(tasks []*model.Task) string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return strings.Join(out, ",")
}

func TestFilter_Composition(t *testing.T) {
	t1 := task("T1", "A", "X", "2025-03-12")
	t2 := task("T2", "B", "X", "2025-03-13")
	t2.Description = "needs A review"
	tasks := []*model.Task{t1, t2}

	if got := ids(Filter(tasks, Criteria{Assignee: "A", Category: "X"}, now)); got != "T1" {
		t.Fatalf("assignee+category = %q, want T1", got)
	}
	// Search overrides the other filters entirely.
	if got := ids(Filter(tasks, Criteria{Search: "REVIEW", Assignee: "A", Category: "Y"}, now)); got != "T2" {
		t.Fatalf("search = %q, want T2", got)
	}
	if got := ids(Filter(tasks, Criteria{Assignee: "all", Category: "all"}, now)); got != "T1,T2" {
		t.Fatalf("all = %q", got)
	}
}

func TestFilter_AssigneeMatchesSubtree(t *testing.T) {
	parent := task("P", "A", "X", "2025-03-20")
	parent.Subtasks = []*model.Task{{ID: "S", Assignee: model.StrPtr("C"), Subtasks: []*model.Task{{ID: "SS", Assignee: model.StrPtr("D")}}}}
	if got := ids(Filter([]*model.Task{parent}, Criteria{Assignee: "D"}, now)); got != "P" {
		t.Fatalf("expected parent matched via nested assignee, got %q", got)
	}
	if got := ids(Filter([]*model.Task{parent}, Criteria{Assignee: "E"}, now)); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestFilter_ClosedWindow(t *testing.T) {
	recent := closedAt(task("recent", "", "X", "2025-03-01"), now.AddDate(0, 0, -2))
	old := closedAt(task("old", "", "X", "2025-02-01"), now.AddDate(0, 0, -10))
	boundary := closedAt(task("edge", "", "X", "2025-02-01"), now.AddDate(0, 0, -7))
	missing := task("nodate", "", "X", "2025-02-01")
	missing.Status = model.StatusClosed
	open := task("open", "", "X", "2025-01-01")
	tasks := []*model.Task{recent, old, boundary, missing, open}

	if got := ids(Filter(tasks, Criteria{}, now)); got != "recent,open" {
		t.Fatalf("default window = %q", got)
	}
	if got := ids(Filter(tasks, Criteria{ClosedWindow: ClosedWindow{Days: 30}}, now)); got != "recent,old,edge,open" {
		t.Fatalf("30-day window = %q", got)
	}
	if got := ids(Filter(tasks, Criteria{ClosedWindow: ClosedWindow{All: true}}, now)); got != "recent,old,edge,nodate,open" {
		t.Fatalf("all = %q", got)
	}
}

func TestParseClosedWindow(t *testing.T) {
	if w, err := ParseClosedWindow(""); err != nil || w.Days != 7 {
		t.Fatalf("default: %+v %v", w, err)
	}
	if w, err := ParseClosedWindow("ALL"); err != nil || !w.All {
		t.Fatalf("all: %+v %v", w, err)
	}
	if w, err := ParseClosedWindow("14"); err != nil || w.Days != 14 {
		t.Fatalf("14: %+v %v", w, err)
	}
	for _, bad := range []string{"0", "-3", "7d", "soon"} {
		if _, err := ParseClosedWindow(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSort_UrgentFirstThenDate(t *testing.T) {
	a := task("a", "", "X", "2025-03-15")
	b := task("b", "", "X", "2025-03-11")
	c := task("c", "", "X", "2025-03-20")
	c.IsUrgent = true
	d := task("d", "", "X", "2025-03-11")
	e := task("e", "", "X", "2025-03-01")
	e.IsUrgent = true
	in := []*model.Task{a, b, c, d, e}

	if got := ids(Sort(in, Oldest)); got != "e,c,b,d,a" {
		t.Fatalf("oldest = %q", got)
	}
	if got := ids(Sort(in, Newest)); got != "c,e,a,b,d" {
		t.Fatalf("newest = %q", got)
	}
	if ids(in) != "a,b,c,d,e" {
		t.Fatalf("input reordered")
	}
}

func TestGroupByStatus(t *testing.T) {
	a := task("a", "", "X", "2025-03-15")
	b := task("b", "", "X", "2025-03-11")
	b.Status = model.StatusInProgress
	c := closedAt(task("c", "", "X", "2025-03-11"), now)
	d := task("d", "", "X", "2025-03-11")
	cols := GroupByStatus([]*model.Task{a, b, c, d})
	if len(cols) != 3 || cols[0].Status != model.StatusOpen || cols[1].Status != model.StatusInProgress || cols[2].Status != model.StatusClosed {
		t.Fatalf("unexpected column order: %+v", cols)
	}
	if ids(cols[0].Tasks) != "a,d" || ids(cols[1].Tasks) != "b" || ids(cols[2].Tasks) != "c" {
		t.Fatalf("unexpected grouping")
	}
	empty := GroupByStatus(nil)
	if empty[1].Tasks == nil {
		t.Fatalf("expected empty, non-nil columns")
	}
}

func TestDueWithinMarked(t *testing.T) {
	self := task("self", "", "X", "2025-03-10")
	parent := task("parent", "", "X", "2025-03-30")
	parent.Subtasks = []*model.Task{
		task("s1", "", "X", "2025-03-10"),
		{ID: "s2", DueDate: model.MustDate("2025-03-20"), Subtasks: []*model.Task{task("s3", "", "X", "2025-03-10")}},
		closedAt(task("s4", "", "X", "2025-03-10"), now),
	}
	both := task("both", "", "X", "2025-03-10")
	both.Subtasks = []*model.Task{task("b1", "", "X", "2025-03-10")}
	none := task("none", "", "X", "2025-03-25")
	done := closedAt(task("done", "", "X", "2025-03-10"), now)

	got := DueToday([]*model.Task{self, parent, both, none, done}, today)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Task != self || !got[0].SelfDue || got[0].HasDueSubtask {
		t.Fatalf("unexpected self entry: %+v", got[0])
	}
	if got[1].Task != parent || got[1].SelfDue || !got[1].HasDueSubtask || ids(got[1].DueSubtasks) != "s1,s3" {
		t.Fatalf("unexpected parent entry: %+v", got[1])
	}
	if got[2].Task != both || !got[2].SelfDue || !got[2].HasDueSubtask {
		t.Fatalf("unexpected both entry: %+v", got[2])
	}
}

func TestDueWindows(t *testing.T) {
	tasks := []*model.Task{
		task("yesterday", "", "X", "2025-03-09"),
		task("today", "", "X", "2025-03-10"),
		task("tomorrow", "", "X", "2025-03-11"),
		task("week", "", "X", "2025-03-17"),
		task("later", "", "X", "2025-03-18"),
	}
	if got := ids(DueWithin(tasks, today.AddDays(-1), today)); got != "today" {
		t.Fatalf("today = %q", got)
	}
	var week []*model.Task
	for _, e := range DueThisWeek(tasks, today) {
		week = append(week, e.Task)
	}
	if got := ids(week); got != "tomorrow,week" {
		t.Fatalf("week = %q", got)
	}
	if got := ids(Overdue(tasks, today)); got != "yesterday" {
		t.Fatalf("overdue = %q", got)
	}
}
