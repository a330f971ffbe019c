package mutate

import (
	"fmt"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

type CreateInput struct {
	Name        string
	Description string
	// DueDate defaults to today when zero.
	DueDate  model.Date
	Assignee string
	Category string
	// Status defaults to Open.
	Status   model.Status
	IsUrgent bool
	Progress *int
	Links    []model.Link
}

// CreateTask adds a new top-level task. Assignee and category are required
// and must already be registered.
func CreateTask(b *store.Board, env Env, in CreateInput) (TaskResult, error) {
	in.Assignee = strings.TrimSpace(in.Assignee)
	in.Category = strings.TrimSpace(in.Category)
	if in.Assignee == "" {
		return TaskResult{}, ValidationError{Field: "assignee", Reason: "required"}
	}
	if in.Category == "" {
		return TaskResult{}, ValidationError{Field: "category", Reason: "required"}
	}
	if !b.People.Has(in.Assignee) {
		return TaskResult{}, NotFoundError{Kind: "person", ID: in.Assignee}
	}
	if !b.Categories.Has(in.Category) {
		return TaskResult{}, NotFoundError{Kind: "category", ID: in.Category}
	}
	if in.Status == "" {
		in.Status = model.StatusOpen
	}
	if !in.Status.Valid() {
		return TaskResult{}, ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if err := validateProgress(in.Status, in.Progress); err != nil {
		return TaskResult{}, err
	}
	links, err := validateLinks(in.Links)
	if err != nil {
		return TaskResult{}, err
	}

	id, err := b.NewID("task")
	if err != nil {
		return TaskResult{}, err
	}
	t := newTask(env, id, in.Name, in.Description, in.DueDate, in.Assignee)
	t.Category = in.Category
	t.Status = in.Status
	t.IsUrgent = in.IsUrgent
	t.Links = links
	if in.Progress != nil {
		p := *in.Progress
		t.Progress = &p
	}
	if t.Status == model.StatusClosed {
		now := env.clock().Now()
		t.ClosedDate = &now
	}
	b.Tasks = append(b.Tasks, t)
	env.rollupFrom([]*model.Task{t})

	return TaskResult{
		Task:    t,
		Changed: true,
		EventPayload: map[string]any{
			"name":     t.Name,
			"assignee": t.AssigneeName(),
			"category": t.Category,
			"dueDate":  t.DueDate.String(),
			"status":   string(t.Status),
		},
	}, nil
}

type SubtaskInput struct {
	Name        string
	Description string
	Assignee    string
	DueDate     model.Date
}

// AddSubtask appends a new Open subtask under parentID, logs the addition on
// the parent and re-runs the rollup from the parent upwards. Name, assignee
// and due date are required.
func AddSubtask(b *store.Board, env Env, parentID string, in SubtaskInput) (TaskResult, error) {
	parentID = strings.TrimSpace(parentID)
	in.Name = strings.TrimSpace(in.Name)
	in.Assignee = strings.TrimSpace(in.Assignee)
	switch {
	case in.Name == "":
		return TaskResult{}, ValidationError{Field: "name", Reason: "required"}
	case in.Assignee == "":
		return TaskResult{}, ValidationError{Field: "assignee", Reason: "required"}
	case in.DueDate.IsZero():
		return TaskResult{}, ValidationError{Field: "dueDate", Reason: "required"}
	}
	chain := b.PathTo(parentID)
	if chain == nil {
		return TaskResult{}, NotFoundError{Kind: "task", ID: parentID}
	}
	if !b.People.Has(in.Assignee) {
		return TaskResult{}, NotFoundError{Kind: "person", ID: in.Assignee}
	}
	parent := chain[len(chain)-1]

	id, err := b.NewID("sub")
	if err != nil {
		return TaskResult{}, err
	}
	sub := newTask(env, id, in.Name, strings.TrimSpace(in.Description), in.DueDate, in.Assignee)
	parent.Subtasks = append(parent.Subtasks, sub)
	prependLog(parent, model.LogEntry{
		Timestamp: env.clock().Now(),
		Message:   fmt.Sprintf("Sub-task \"%s\" was added.", sub.Name),
		Assignee:  copyStr(sub.Assignee),
	})
	rolled := env.rollupFrom(chain)

	payload := map[string]any{
		"parentId": parent.ID,
		"name":     sub.Name,
		"assignee": sub.AssigneeName(),
		"dueDate":  sub.DueDate.String(),
	}
	if len(rolled) > 0 {
		payload["rolled"] = rolled
	}
	return TaskResult{Task: sub, Changed: true, Rolled: rolled, EventPayload: payload}, nil
}

func newTask(env Env, id, name, description string, due model.Date, assignee string) *model.Task {
	if strings.TrimSpace(name) == "" {
		name = model.DefaultName
	}
	if due.IsZero() {
		due = env.clock().Today()
	}
	t := &model.Task{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: description,
		DueDate:     due,
		Category:    model.DefaultCategory,
		Status:      model.StatusOpen,
		Subtasks:    []*model.Task{},
		Log:         []model.LogEntry{},
		Links:       []model.Link{},
	}
	if assignee != "" {
		t.Assignee = &assignee
	}
	return t
}

// Patch lists the optional field updates EditTask applies; nil fields are
// left alone. An empty Assignee string unassigns the task.
type Patch struct {
	Name        *string
	Description *string
	DueDate     *model.Date
	Assignee    *string
	Category    *string
	IsUrgent    *bool
}

// EditTask applies p and re-runs the rollup on the task and its ancestors.
func EditTask(b *store.Board, env Env, taskID string, p Patch) (TaskResult, error) {
	taskID = strings.TrimSpace(taskID)
	chain := b.PathTo(taskID)
	if chain == nil {
		return TaskResult{}, NotFoundError{Kind: "task", ID: taskID}
	}
	t := chain[len(chain)-1]

	// Validate everything before touching the task.
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return TaskResult{}, ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		return TaskResult{}, ValidationError{Field: "dueDate", Reason: "must be a date"}
	}
	if p.Assignee != nil {
		if a := strings.TrimSpace(*p.Assignee); a != "" && !b.People.Has(a) {
			return TaskResult{}, NotFoundError{Kind: "person", ID: a}
		}
	}
	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		if c == "" {
			return TaskResult{}, ValidationError{Field: "category", Reason: "must not be empty"}
		}
		if c != model.DefaultCategory && !b.Categories.Has(c) {
			return TaskResult{}, NotFoundError{Kind: "category", ID: c}
		}
	}

	changes := map[string]any{}
	if p.Name != nil && strings.TrimSpace(*p.Name) != t.Name {
		t.Name = strings.TrimSpace(*p.Name)
		changes["name"] = t.Name
	}
	if p.Description != nil && *p.Description != t.Description {
		t.Description = *p.Description
		changes["description"] = t.Description
	}
	if p.DueDate != nil && !p.DueDate.Equal(t.DueDate) {
		t.DueDate = *p.DueDate
		changes["dueDate"] = t.DueDate.String()
	}
	if p.Assignee != nil {
		a := strings.TrimSpace(*p.Assignee)
		if a != t.AssigneeName() {
			if a == "" {
				t.Assignee = nil
			} else {
				t.Assignee = &a
			}
			changes["assignee"] = a
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) != t.Category {
		t.Category = strings.TrimSpace(*p.Category)
		changes["category"] = t.Category
	}
	if p.IsUrgent != nil && *p.IsUrgent != t.IsUrgent {
		t.IsUrgent = *p.IsUrgent
		changes["isUrgent"] = t.IsUrgent
	}

	rolled := env.rollupFrom(chain)
	if len(changes) == 0 && len(rolled) == 0 {
		return TaskResult{Task: t}, nil
	}
	if len(rolled) > 0 {
		changes["rolled"] = rolled
	}
	return TaskResult{Task: t, Changed: true, Rolled: rolled, EventPayload: changes}, nil
}

func validateProgress(st model.Status, progress *int) error {
	if progress == nil {
		return nil
	}
	if st != model.StatusInProgress {
		return ValidationError{Field: "progress", Reason: "only allowed with In Progress"}
	}
	if *progress < 0 || *progress > 100 {
		return ValidationError{Field: "progress", Reason: "must be between 0 and 100"}
	}
	return nil
}
