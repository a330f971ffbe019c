package store

import (
	"taskboard/internal/model"
	"taskboard/internal/tree"
)

const boardVersion = 1

// Board is everything the application persists: the task forest plus the
// person and category registries.
type Board struct {
	Version    int            `json:"version"`
	Tasks      []*model.Task  `json:"tasks"`
	People     model.Registry `json:"people"`
	Categories model.Registry `json:"categories"`
}

func NewBoard() *Board {
	return &Board{
		Version:    boardVersion,
		Tasks:      []*model.Task{},
		People:     model.Registry{},
		Categories: model.Registry{},
	}
}

// ensure replaces nil collections so callers never see absent lists.
func (b *Board) ensure() {
	if b.Version == 0 {
		b.Version = boardVersion
	}
	if b.Tasks == nil {
		b.Tasks = []*model.Task{}
	}
	if b.People == nil {
		b.People = model.Registry{}
	}
	if b.Categories == nil {
		b.Categories = model.Registry{}
	}
}

func (b *Board) FindTask(id string) (*model.Task, bool) {
	if b == nil {
		return nil, false
	}
	return tree.Find(b.Tasks, id)
}

// PathTo returns the top-level-to-task chain for id, or nil.
func (b *Board) PathTo(id string) []*model.Task {
	if b == nil {
		return nil
	}
	return tree.Path(b.Tasks, id)
}

func (b *Board) TaskCount() int {
	if b == nil {
		return 0
	}
	return tree.Count(b.Tasks)
}
