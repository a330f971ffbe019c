package mutate

import (
	"testing"
	"time"

	"taskboard/internal/clock"
	"taskboard/internal/model"
	"taskboard/internal/rollup"
	"taskboard/internal/store"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // a Monday

func testEnv() Env {
	return Env{Clock: clock.Fixed{At: testNow}, Policy: rollup.DefaultPolicy()}
}

func leaf(id, assignee, due string) *model.Task {
	t := &model.Task{
		ID:       id,
		Name:     "Task " + id,
		DueDate:  model.MustDate(due),
		Category: "Backend",
		Status:   model.StatusOpen,
		Subtasks: []*model.Task{},
		Log:      []model.LogEntry{},
		Links:    []model.Link{},
	}
	if assignee != "" {
		t.Assignee = model.StrPtr(assignee)
	}
	return t
}

func withSubs(t *model.Task, subs ...*model.Task) *model.Task {
	t.Subtasks = append(t.Subtasks, subs...)
	return t
}

// testBoard: root(A) -> mid(B) -> deep(C); root -> side(A); other(B).
func testBoard() *store.Board {
	b := store.NewBoard()
	b.People.Set("Alice", "#0d6efd")
	b.People.Set("Bob", "#dc3545")
	b.People.Set("Carol", "#ffc107")
	b.Categories.Set("Backend", "#fd7e14")
	b.Categories.Set("Design", "#20c997")
	b.Tasks = []*model.Task{
		withSubs(leaf("root", "Alice", "2025-03-28"),
			withSubs(leaf("mid", "Bob", "2025-03-20"),
				leaf("deep", "Carol", "2025-03-14"),
			),
			leaf("side", "Alice", "2025-03-12"),
		),
		leaf("other", "Bob", "2025-03-11"),
	}
	return b
}

func mustFind(t *testing.T, b *store.Board, id string) *model.Task {
	t.Helper()
	task, ok := b.FindTask(id)
	if !ok {
		t.Fatalf("task %s not found", id)
	}
	return task
}
