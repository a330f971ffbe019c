// Package tree holds the traversal primitives over the task forest.
// All traversals are pre-order and iterative.
package tree

import (
	"sort"

	"taskboard/internal/model"
)

type frame struct {
	task  *model.Task
	depth int
}

// Walk visits every task in pre-order. fn returning false stops the walk.
func Walk(tasks []*model.Task, fn func(t *model.Task, depth int) bool) {
	stack := make([]frame, 0, len(tasks))
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i] != nil {
			stack = append(stack, frame{task: tasks[i]})
		}
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.task, f.depth) {
			return
		}
		subs := f.task.Subtasks
		for i := len(subs) - 1; i >= 0; i-- {
			if subs[i] != nil {
				stack = append(stack, frame{task: subs[i], depth: f.depth + 1})
			}
		}
	}
}

// Find returns the first task with id in pre-order.
func Find(tasks []*model.Task, id string) (*model.Task, bool) {
	var found *model.Task
	Walk(tasks, func(t *model.Task, _ int) bool {
		if t.ID == id {
			found = t
			return false
		}
		return true
	})
	return found, found != nil
}

// Path returns the chain from the top-level task down to the first task
// with id (inclusive), or nil when absent.
func Path(tasks []*model.Task, id string) []*model.Task {
	var chain []*model.Task
	Walk(tasks, func(t *model.Task, depth int) bool {
		chain = append(chain[:depth], t)
		return t.ID != id
	})
	if len(chain) == 0 || chain[len(chain)-1].ID != id {
		return nil
	}
	return chain
}

// Parent returns the direct parent of id; ok is false when id is absent or
// top-level.
func Parent(tasks []*model.Task, id string) (*model.Task, bool) {
	chain := Path(tasks, id)
	if len(chain) < 2 {
		return nil, false
	}
	return chain[len(chain)-2], true
}

// Delete removes the first pre-order match (with its subtree) from its
// parent's list or from the top-level list.
func Delete(tasks *[]*model.Task, id string) bool {
	if tasks == nil {
		return false
	}
	chain := Path(*tasks, id)
	if chain == nil {
		return false
	}
	list := tasks
	if len(chain) > 1 {
		list = &chain[len(chain)-2].Subtasks
	}
	target := chain[len(chain)-1]
	for i, t := range *list {
		if t == target {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// CollectAssignees returns the task's own assignee plus every assignee in
// its subtree.
func CollectAssignees(task *model.Task) map[string]struct{} {
	out := map[string]struct{}{}
	if task == nil {
		return out
	}
	Walk([]*model.Task{task}, func(t *model.Task, _ int) bool {
		if name := t.AssigneeName(); name != "" {
			out[name] = struct{}{}
		}
		return true
	})
	return out
}

func SortedAssignees(task *model.Task) []string {
	set := CollectAssignees(task)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Descendants flattens the subtree below task in pre-order (task itself
// excluded). A nil pred keeps everything.
func Descendants(task *model.Task, pred func(*model.Task) bool) []*model.Task {
	if task == nil {
		return nil
	}
	var out []*model.Task
	Walk(task.Subtasks, func(t *model.Task, _ int) bool {
		if pred == nil || pred(t) {
			out = append(out, t)
		}
		return true
	})
	return out
}

// Count returns the total number of nodes in the forest.
func Count(tasks []*model.Task) int {
	n := 0
	Walk(tasks, func(*model.Task, int) bool {
		n++
		return true
	})
	return n
}

// IDs returns every id in pre-order.
func IDs(tasks []*model.Task) []string {
	var out []string
	Walk(tasks, func(t *model.Task, _ int) bool {
		out = append(out, t.ID)
		return true
	})
	return out
}
