// Package report builds the assignee and overdue reports as markdown.
package report

import (
	"bytes"
	"strconv"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/tree"
	"taskboard/internal/view"
)

const (
	AssigneeTitle = "Task Report by Assignee"
	OverdueTitle  = "Overdue Tasks Report"
)

// ByAssignee returns the active top-level tasks whose subtree involves any
// of people.
func ByAssignee(tasks []*model.Task, people []string) ([]*model.Task, error) {
	want := map[string]bool{}
	for _, p := range people {
		if p = strings.TrimSpace(p); p != "" {
			want[p] = true
		}
	}
	if len(want) == 0 {
		return nil, mutate.ValidationError{Field: "people", Reason: "select at least one person"}
	}
	out := []*model.Task{}
	for _, t := range view.Active(tasks) {
		for name := range tree.CollectAssignees(t) {
			if want[name] {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

// Overdue returns the active, unfinished top-level tasks due before today.
func Overdue(tasks []*model.Task, today model.Date) []*model.Task {
	return view.Overdue(view.Active(tasks), today)
}

// Markdown renders tasks as a table followed by each task's subtask
// outline.
func Markdown(title string, tasks []*model.Task, generatedOn model.Date) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(title))
	writeLn("")
	writeLn("Generated on: " + generatedOn.String())
	writeLn("")
	if len(tasks) == 0 {
		writeLn("_No tasks._")
		return buf.String()
	}

	writeLn("| Category | Status | Task | Description | Assignee | Due Date | Sub-tasks |")
	writeLn("| --- | --- | --- | --- | --- | --- | --- |")
	for _, t := range tasks {
		writeLn("| " + strings.Join([]string{
			cell(t.Category),
			cell(string(t.Status)),
			cell(t.Name),
			cell(t.Description),
			cell(orNone(t.AssigneeName())),
			t.DueDate.String(),
			strconv.Itoa(tree.Count(t.Subtasks)),
		}, " | ") + " |")
	}

	for _, t := range tasks {
		if len(t.Subtasks) == 0 {
			continue
		}
		writeLn("")
		writeLn("## " + strings.TrimSpace(t.Name) + " sub-tasks")
		writeLn("")
		tree.Walk(t.Subtasks, func(st *model.Task, depth int) bool {
			writeLn(strings.Repeat("  ", depth) + "- " + strings.TrimSpace(st.Name) + " (Assignee: " + orNone(st.AssigneeName()) + ")")
			return true
		})
	}
	return buf.String()
}

func cell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
