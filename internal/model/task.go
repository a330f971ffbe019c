package model

import "time"

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusClosed     Status = "Closed"
)

// Statuses is the board column order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	default:
		return false
	}
}

const (
	DefaultName     = "Untitled"
	DefaultCategory = "Uncategorized"
)

type Task struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DueDate     Date    `json:"dueDate"`
	Assignee    *string `json:"assignee"`
	Category    string  `json:"category"`
	Status      Status  `json:"status"`
	IsUrgent    bool    `json:"isUrgent"`
	Progress    *int    `json:"progress"`

	ClosedDate   *time.Time `json:"closedDate"`
	IsArchived   bool       `json:"isArchived"`
	ArchivedDate *time.Time `json:"archivedDate"`

	Subtasks []*Task    `json:"subtasks"`
	Log      []LogEntry `json:"log"`
	Links    []Link     `json:"links"`
}

type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Assignee  *string   `json:"assignee"`
}

type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AssigneeName returns the assignee or "" when unassigned.
func (t *Task) AssigneeName() string {
	if t == nil || t.Assignee == nil {
		return ""
	}
	return *t.Assignee
}

func (t *Task) IsClosed() bool { return t != nil && t.Status == StatusClosed }

// DisplayProgress is the progress shown for a task: Closed is always 100,
// otherwise the explicit value, falling back to 0/50 for Open/In Progress.
func (t *Task) DisplayProgress() int {
	if t.Status == StatusClosed {
		return 100
	}
	if t.Progress != nil {
		return *t.Progress
	}
	if t.Status == StatusInProgress {
		return 50
	}
	return 0
}

func StrPtr(s string) *string { return &s }
