package mutate

import (
	"strings"

	"taskboard/internal/colors"
	"taskboard/internal/model"
	"taskboard/internal/store"
	"taskboard/internal/tree"
)

// RegistryKind selects the people or the categories registry.
type RegistryKind string

const (
	People     RegistryKind = "person"
	Categories RegistryKind = "category"
)

type RegistryResult struct {
	Kind         RegistryKind
	Name         string
	Color        string
	Changed      bool
	EventPayload map[string]any
}

func registryOf(b *store.Board, kind RegistryKind) model.Registry {
	if kind == People {
		return b.People
	}
	return b.Categories
}

// AddEntry registers a new person or category. An empty color picks a
// random one.
func AddEntry(b *store.Board, kind RegistryKind, name, color string) (RegistryResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RegistryResult{}, ValidationError{Field: string(kind) + " name", Reason: "required"}
	}
	reg := registryOf(b, kind)
	if reg.Has(name) {
		return RegistryResult{}, ConflictError{Kind: string(kind), Name: name, Reason: "already exists"}
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = colors.Random()
	} else if !colors.Valid(color) {
		return RegistryResult{}, ValidationError{Field: "color", Reason: "expected #rrggbb or hsl(h, s%, l%)"}
	}
	reg.Set(name, color)
	return RegistryResult{
		Kind:         kind,
		Name:         name,
		Color:        color,
		Changed:      true,
		EventPayload: map[string]any{"name": name, "color": color},
	}, nil
}

// SetColor changes the display color of an existing entry.
func SetColor(b *store.Board, kind RegistryKind, name, color string) (RegistryResult, error) {
	name = strings.TrimSpace(name)
	reg := registryOf(b, kind)
	if !reg.Has(name) {
		return RegistryResult{}, NotFoundError{Kind: string(kind), ID: name}
	}
	color = strings.TrimSpace(color)
	if !colors.Valid(color) {
		return RegistryResult{}, ValidationError{Field: "color", Reason: "expected #rrggbb or hsl(h, s%, l%)"}
	}
	if reg.Color(name) == color {
		return RegistryResult{Kind: kind, Name: name, Color: color}, nil
	}
	reg.Set(name, color)
	return RegistryResult{
		Kind:         kind,
		Name:         name,
		Color:        color,
		Changed:      true,
		EventPayload: map[string]any{"name": name, "color": color},
	}, nil
}

// DeleteEntry removes a person or category unless InUse reports a
// reference from a live task.
func DeleteEntry(b *store.Board, kind RegistryKind, name string) (RegistryResult, error) {
	name = strings.TrimSpace(name)
	reg := registryOf(b, kind)
	if !reg.Has(name) {
		return RegistryResult{}, NotFoundError{Kind: string(kind), ID: name}
	}
	if ids := InUse(b, kind, name); len(ids) > 0 {
		return RegistryResult{}, ConflictError{
			Kind:   string(kind),
			Name:   name,
			Reason: "in use by " + strings.Join(ids, ", "),
		}
	}
	reg.Delete(name)
	return RegistryResult{
		Kind:         kind,
		Name:         name,
		Changed:      true,
		EventPayload: map[string]any{"name": name},
	}, nil
}

// InUse returns the ids of tasks referencing name, counting only tasks
// whose whole ancestor chain (themselves included) is not archived.
// Archived subtrees never block a delete.
func InUse(b *store.Board, kind RegistryKind, name string) []string {
	var (
		ids      []string
		archived []bool // archived-ness of the chain down to each depth
	)
	tree.Walk(b.Tasks, func(t *model.Task, depth int) bool {
		hidden := t.IsArchived
		if depth > 0 {
			hidden = hidden || archived[depth-1]
		}
		archived = append(archived[:depth], hidden)
		if hidden {
			return true
		}
		ref := t.Category
		if kind == People {
			ref = t.AssigneeName()
		}
		if ref == name {
			ids = append(ids, t.ID)
		}
		return true
	})
	return ids
}
