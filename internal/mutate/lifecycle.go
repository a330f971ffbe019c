package mutate

import (
	"strings"

	"taskboard/internal/store"
	"taskboard/internal/tree"
)

// Archive hides a task (and, implicitly, its subtree) from the board
// without touching its status. Archiving an archived task is a no-op.
func Archive(b *store.Board, env Env, taskID string) (TaskResult, error) {
	t, err := findTask(b, strings.TrimSpace(taskID))
	if err != nil {
		return TaskResult{}, err
	}
	if t.IsArchived {
		return TaskResult{Task: t}, nil
	}
	now := env.clock().Now()
	t.IsArchived = true
	t.ArchivedDate = &now
	return TaskResult{
		Task:         t,
		Changed:      true,
		EventPayload: map[string]any{"archived": true},
	}, nil
}

// Restore brings an archived task back onto the board.
func Restore(b *store.Board, env Env, taskID string) (TaskResult, error) {
	t, err := findTask(b, strings.TrimSpace(taskID))
	if err != nil {
		return TaskResult{}, err
	}
	if !t.IsArchived {
		return TaskResult{Task: t}, nil
	}
	t.IsArchived = false
	t.ArchivedDate = nil
	return TaskResult{
		Task:         t,
		Changed:      true,
		EventPayload: map[string]any{"archived": false},
	}, nil
}

type DeleteResult struct {
	ID string
	// Removed counts the deleted task plus its whole subtree.
	Removed      int
	Rolled       []string
	EventPayload map[string]any
}

// Delete removes a task and its subtree from the board, then re-runs the
// rollup on the former ancestors against their remaining subtasks.
func Delete(b *store.Board, env Env, taskID string) (DeleteResult, error) {
	return deleteTask(b, env, strings.TrimSpace(taskID), false)
}

// Purge permanently deletes an archived task. Active tasks are refused.
func Purge(b *store.Board, env Env, taskID string) (DeleteResult, error) {
	return deleteTask(b, env, strings.TrimSpace(taskID), true)
}

func deleteTask(b *store.Board, env Env, taskID string, archivedOnly bool) (DeleteResult, error) {
	chain := b.PathTo(taskID)
	if chain == nil {
		return DeleteResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	t := chain[len(chain)-1]
	if archivedOnly && !t.IsArchived {
		return DeleteResult{}, ConflictError{Kind: "task", Name: taskID, Reason: "only archived tasks can be purged"}
	}
	before := b.TaskCount()
	if !tree.Delete(&b.Tasks, taskID) {
		return DeleteResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	res := DeleteResult{
		ID:      taskID,
		Removed: before - b.TaskCount(),
	}
	res.Rolled = env.rollupFrom(chain[:len(chain)-1])
	res.EventPayload = map[string]any{"removed": res.Removed, "purge": archivedOnly}
	return res, nil
}
