package mutate

import (
	"fmt"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/statusutil"
	"taskboard/internal/store"
)

const closedLogMessage = "Task status changed to Closed."

// SetStatus moves a task through Open / In Progress / Closed.
//
// Entering Closed stamps closedDate, logs the transition on the task (and,
// for a subtask, on its parent) and clears progress. Leaving Closed clears
// closedDate. Both re-run the rollup on the ancestors. progress may only be
// given together with In Progress.
func SetStatus(b *store.Board, env Env, taskID string, to model.Status, progress *int) (TaskResult, error) {
	taskID = strings.TrimSpace(taskID)
	if !to.Valid() {
		return TaskResult{}, ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", to)}
	}
	if err := validateProgress(to, progress); err != nil {
		return TaskResult{}, err
	}
	chain := b.PathTo(taskID)
	if chain == nil {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	t := chain[len(chain)-1]
	from := t.Status

	if from == to {
		if progress == nil || (t.Progress != nil && *t.Progress == *progress) {
			return TaskResult{Task: t, Changed: false}, nil
		}
		p := *progress
		t.Progress = &p
		return TaskResult{
			Task:         t,
			Changed:      true,
			EventPayload: map[string]any{"from": string(from), "to": string(to), "progress": p},
		}, nil
	}

	now := env.clock().Now()
	t.Status = to
	t.Progress = nil
	if progress != nil {
		p := *progress
		t.Progress = &p
	}
	if statusutil.IsEndState(to) {
		ts := now
		t.ClosedDate = &ts
		prependLog(t, model.LogEntry{Timestamp: now, Message: closedLogMessage})
		if len(chain) > 1 {
			parent := chain[len(chain)-2]
			prependLog(parent, model.LogEntry{
				Timestamp: now,
				Message:   fmt.Sprintf("Sub-task \"%s\" marked as completed.", t.Name),
				Assignee:  copyStr(t.Assignee),
			})
		}
	} else {
		t.ClosedDate = nil
	}

	var rolled []string
	if statusutil.IsEndState(from) || statusutil.IsEndState(to) {
		rolled = env.rollupFrom(chain[:len(chain)-1])
	}
	payload := map[string]any{"from": string(from), "to": string(to)}
	if t.Progress != nil {
		payload["progress"] = *t.Progress
	}
	if len(rolled) > 0 {
		payload["rolled"] = rolled
	}
	return TaskResult{Task: t, Changed: true, Rolled: rolled, EventPayload: payload}, nil
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
