package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// TaskRecord is the permissive shape of a persisted task: every field is
// optional. Values of the wrong type are treated as absent, never as errors.
type TaskRecord struct {
	ID           *string
	Name         *string
	Description  *string
	DueDate      *Date
	Assignee     *string
	Category     *string
	Status       *Status
	IsUrgent     *bool
	Progress     *int
	ClosedDate   *time.Time
	IsArchived   *bool
	ArchivedDate *time.Time
	Subtasks     []TaskRecord
	Log          []LogEntry
	Links        []Link
}

// Defaults supplies the values Normalize cannot derive from a record.
type Defaults struct {
	Today Date
	// NewID returns a fresh id for the given prefix ("task" or "sub").
	NewID func(prefix string) string
}

var ErrNotAnObject = errors.New("record is not a JSON object")

// DecodeRecord decodes one raw JSON task. Only a non-object payload is an
// error; anything inside an object is coerced.
func DecodeRecord(raw []byte) (TaskRecord, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return TaskRecord{}, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return TaskRecord{}, ErrNotAnObject
	}
	return RecordFromMap(m), nil
}

// RecordFromMap coerces a decoded JSON object into a TaskRecord.
func RecordFromMap(m map[string]any) TaskRecord {
	var rec TaskRecord
	rec.ID = nonEmptyString(m["id"])
	rec.Name = stringField(m["name"])
	rec.Description = stringField(m["description"])
	if s := nonEmptyString(m["dueDate"]); s != nil {
		if d, err := ParseDate(*s); err == nil {
			rec.DueDate = &d
		}
	}
	rec.Assignee = nonEmptyString(m["assignee"])
	rec.Category = nonEmptyString(m["category"])
	if s := nonEmptyString(m["status"]); s != nil {
		if st, ok := ParseStatus(*s); ok {
			rec.Status = &st
		}
	}
	rec.IsUrgent = boolField(m["isUrgent"])
	if f, ok := m["progress"].(float64); ok && !math.IsNaN(f) {
		// Clamp before converting: int() of an out-of-range float is undefined.
		n := int(math.Round(math.Max(0, math.Min(100, f))))
		rec.Progress = &n
	}
	rec.ClosedDate = timeField(m["closedDate"])
	rec.IsArchived = boolField(m["isArchived"])
	rec.ArchivedDate = timeField(m["archivedDate"])

	if xs, ok := m["subtasks"].([]any); ok {
		for _, x := range xs {
			sub, ok := x.(map[string]any)
			if !ok {
				continue
			}
			rec.Subtasks = append(rec.Subtasks, RecordFromMap(sub))
		}
	}
	if xs, ok := m["log"].([]any); ok {
		for _, x := range xs {
			em, ok := x.(map[string]any)
			if !ok {
				continue
			}
			var e LogEntry
			if ts := timeField(em["timestamp"]); ts != nil {
				e.Timestamp = *ts
			}
			if s := stringField(em["message"]); s != nil {
				e.Message = *s
			}
			e.Assignee = nonEmptyString(em["assignee"])
			rec.Log = append(rec.Log, e)
		}
	}
	if xs, ok := m["links"].([]any); ok {
		for _, x := range xs {
			lm, ok := x.(map[string]any)
			if !ok {
				continue
			}
			var l Link
			if s := stringField(lm["name"]); s != nil {
				l.Name = *s
			}
			if s := stringField(lm["url"]); s != nil {
				l.URL = *s
			}
			if l.Name == "" && l.URL == "" {
				continue
			}
			rec.Links = append(rec.Links, l)
		}
	}
	return rec
}

// Normalize fills every missing field of rec with its default, recursively.
// It also restores the closedDate/archivedDate invariants.
func Normalize(rec TaskRecord, d Defaults) Task {
	seq := 0
	newID := d.NewID
	if newID == nil {
		newID = func(prefix string) string {
			seq++
			return fmt.Sprintf("%s-%d", prefix, seq)
		}
	}
	return normalize(rec, d.Today, newID, 0)
}

func normalize(rec TaskRecord, today Date, newID func(string) string, depth int) Task {
	t := Task{
		Name:     DefaultName,
		DueDate:  today,
		Category: DefaultCategory,
		Status:   StatusOpen,
		Subtasks: make([]*Task, 0, len(rec.Subtasks)),
		Log:      []LogEntry{},
		Links:    []Link{},
	}

	if rec.ID != nil && strings.TrimSpace(*rec.ID) != "" {
		t.ID = *rec.ID
	} else if depth == 0 {
		t.ID = newID("task")
	} else {
		t.ID = newID("sub")
	}
	if rec.Name != nil && strings.TrimSpace(*rec.Name) != "" {
		t.Name = *rec.Name
	}
	if rec.Description != nil {
		t.Description = *rec.Description
	}
	if rec.DueDate != nil && !rec.DueDate.IsZero() {
		t.DueDate = *rec.DueDate
	}
	if rec.Assignee != nil && *rec.Assignee != "" {
		a := *rec.Assignee
		t.Assignee = &a
	}
	if rec.Category != nil && *rec.Category != "" {
		t.Category = *rec.Category
	}
	if rec.Status != nil && rec.Status.Valid() {
		t.Status = *rec.Status
	}
	if rec.IsUrgent != nil {
		t.IsUrgent = *rec.IsUrgent
	}
	if rec.Progress != nil && t.Status == StatusInProgress {
		p := clampProgress(*rec.Progress)
		t.Progress = &p
	}

	if t.Status == StatusClosed {
		if rec.ClosedDate != nil {
			ts := *rec.ClosedDate
			t.ClosedDate = &ts
		} else {
			ts := today.Time()
			t.ClosedDate = &ts
		}
	}
	if rec.IsArchived != nil && *rec.IsArchived {
		t.IsArchived = true
		if rec.ArchivedDate != nil {
			ts := *rec.ArchivedDate
			t.ArchivedDate = &ts
		} else {
			ts := today.Time()
			t.ArchivedDate = &ts
		}
	}

	for _, sub := range rec.Subtasks {
		st := normalize(sub, today, newID, depth+1)
		t.Subtasks = append(t.Subtasks, &st)
	}
	t.Log = append(t.Log, rec.Log...)
	t.Links = append(t.Links, rec.Links...)
	return t
}

// Record converts a task back into its record form. Normalize(Record(t))
// reproduces any already-normalized t.
func Record(t Task) TaskRecord {
	id, name, desc, cat := t.ID, t.Name, t.Description, t.Category
	st, urgent, archived := t.Status, t.IsUrgent, t.IsArchived
	rec := TaskRecord{
		ID:          &id,
		Name:        &name,
		Description: &desc,
		Category:    &cat,
		Status:      &st,
		IsUrgent:    &urgent,
		IsArchived:  &archived,
	}
	if !t.DueDate.IsZero() {
		due := t.DueDate
		rec.DueDate = &due
	}
	if t.Assignee != nil {
		a := *t.Assignee
		rec.Assignee = &a
	}
	if t.Progress != nil {
		p := *t.Progress
		rec.Progress = &p
	}
	if t.ClosedDate != nil {
		ts := *t.ClosedDate
		rec.ClosedDate = &ts
	}
	if t.ArchivedDate != nil {
		ts := *t.ArchivedDate
		rec.ArchivedDate = &ts
	}
	for _, sub := range t.Subtasks {
		if sub == nil {
			continue
		}
		rec.Subtasks = append(rec.Subtasks, Record(*sub))
	}
	rec.Log = append(rec.Log, t.Log...)
	rec.Links = append(rec.Links, t.Links...)
	return rec
}

// ParseStatus maps persisted and user-typed spellings onto a Status.
func ParseStatus(s string) (Status, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("_", " ", "-", " ").Replace(k)
	switch k {
	case "open", "todo":
		return StatusOpen, true
	case "in progress", "inprogress", "progress", "doing":
		return StatusInProgress, true
	case "closed", "done":
		return StatusClosed, true
	default:
		return "", false
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func stringField(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func nonEmptyString(v any) *string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func boolField(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func timeField(v any) *time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
		ts = ts.UTC()
		return &ts
	}
	if d, err := ParseDate(s); err == nil {
		ts := d.Time()
		return &ts
	}
	return nil
}
