package mutate

import (
	"taskboard/internal/clock"
	"taskboard/internal/model"
	"taskboard/internal/rollup"
	"taskboard/internal/store"
)

// Env carries the collaborators every mutation needs.
type Env struct {
	Clock  clock.Clock
	Policy rollup.Policy
}

func DefaultEnv() Env {
	return Env{Clock: clock.System{}, Policy: rollup.DefaultPolicy()}
}

func (e Env) clock() clock.Clock {
	if e.Clock == nil {
		return clock.System{}
	}
	return e.Clock
}

// TaskResult is returned by the task mutations. Callers are responsible for
// saving the board and appending EventPayload to the event log.
type TaskResult struct {
	Task    *model.Task
	Changed bool
	// Rolled lists the ids whose due date the rollup engine moved.
	Rolled       []string
	EventPayload map[string]any
}

func findTask(b *store.Board, id string) (*model.Task, error) {
	t, ok := b.FindTask(id)
	if !ok {
		return nil, NotFoundError{Kind: "task", ID: id}
	}
	return t, nil
}

// rollupFrom re-runs the rollup engine on chain (top-level first), nearest
// task first.
func (e Env) rollupFrom(chain []*model.Task) []string {
	p := e.Policy
	if p == (rollup.Policy{}) {
		p = rollup.DefaultPolicy()
	}
	changed := rollup.ApplyChain(chain, e.clock().Today(), p)
	out := make([]string, 0, len(changed))
	for _, t := range changed {
		out = append(out, t.ID)
	}
	return out
}

// prependLog adds a newest-first log entry. An empty assignee falls back to
// the task's own assignee.
func prependLog(t *model.Task, entry model.LogEntry) {
	if entry.Assignee == nil && t.Assignee != nil {
		a := *t.Assignee
		entry.Assignee = &a
	}
	t.Log = append([]model.LogEntry{entry}, t.Log...)
}
