package mutate

import (
	"fmt"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// Chaser presets map a short key to the log message it records.
var Chasers = map[string]string{
	"email":   "Email chaser sent",
	"letter":  "Letter chaser sent",
	"meeting": "Chased at meeting",
}

// ChaserMessage resolves a chaser key ("email", "letter", "meeting").
func ChaserMessage(kind string) (string, error) {
	msg, ok := Chasers[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", ValidationError{Field: "chaser", Reason: fmt.Sprintf("unknown chaser %q (expected email|letter|meeting)", kind)}
	}
	return msg, nil
}

// AppendLog prepends a manual update to the task's log. assignee overrides
// the attribution, which otherwise defaults to the task's assignee.
func AppendLog(b *store.Board, env Env, taskID, message string, assignee *string) (TaskResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return TaskResult{}, ValidationError{Field: "message", Reason: "required"}
	}
	t, err := findTask(b, strings.TrimSpace(taskID))
	if err != nil {
		return TaskResult{}, err
	}
	var by *string
	if assignee != nil && strings.TrimSpace(*assignee) != "" {
		a := strings.TrimSpace(*assignee)
		if !b.People.Has(a) {
			return TaskResult{}, NotFoundError{Kind: "person", ID: a}
		}
		by = &a
	}
	prependLog(t, model.LogEntry{Timestamp: env.clock().Now(), Message: message, Assignee: by})
	entry := t.Log[0]
	payload := map[string]any{"message": entry.Message}
	if entry.Assignee != nil {
		payload["assignee"] = *entry.Assignee
	}
	return TaskResult{Task: t, Changed: true, EventPayload: payload}, nil
}
