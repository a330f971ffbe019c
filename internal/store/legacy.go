package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"taskboard/internal/model"
	"taskboard/internal/tree"
)

const legacySchemaURL = "taskboard://legacy-board.json"

// legacySchema only pins the top-level shape; individual task records are
// coerced field by field, and broken ones are dropped.
const legacySchema = `{
  "oneOf": [
    {"type": "array"},
    {
      "type": "object",
      "properties": {
        "tasks": {"type": ["array", "null"]},
        "people": {"type": ["object", "null"]},
        "categories": {"type": ["object", "null"]}
      }
    }
  ]
}`

var compiledLegacySchema = mustCompileLegacySchema()

func mustCompileLegacySchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(legacySchemaURL, strings.NewReader(legacySchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(legacySchemaURL)
}

// DroppedRecord describes one input entry ImportJSON skipped.
type DroppedRecord struct {
	Kind   string `json:"kind"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type ImportReport struct {
	Tasks      int             `json:"tasks"`
	Nodes      int             `json:"nodes"`
	People     int             `json:"people"`
	Categories int             `json:"categories"`
	Dropped    []DroppedRecord `json:"dropped"`
	// ReassignedIDs lists ids that appeared more than once; later copies
	// received fresh ids.
	ReassignedIDs []string `json:"reassignedIds"`
}

// ImportJSON parses the legacy browser-storage export: either
// {"tasks": [...], "people": {...}, "categories": {...}} or a bare task
// array. An unparsable payload yields an empty board together with a
// MalformedDataError.
func (s Store) ImportJSON(raw []byte) (*Board, ImportReport, error) {
	rep := ImportReport{Dropped: []DroppedRecord{}, ReassignedIDs: []string{}}
	b := NewBoard()
	if len(bytes.TrimSpace(raw)) == 0 {
		return b, rep, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return NewBoard(), rep, MalformedDataError{Reason: "payload is not valid JSON", Err: err}
	}
	if err := compiledLegacySchema.Validate(doc); err != nil {
		return NewBoard(), rep, MalformedDataError{Reason: "unexpected payload shape", Err: schemaError(err)}
	}

	var rawTasks []any
	switch v := doc.(type) {
	case []any:
		rawTasks = v
	case map[string]any:
		rawTasks, _ = v["tasks"].([]any)
		b.People = s.importRegistry(v["people"], "person", &rep)
		b.Categories = s.importRegistry(v["categories"], "category", &rep)
	}

	seen := map[string]struct{}{}
	defaults := model.Defaults{Today: s.today(), NewID: b.idAllocator(map[string]struct{}{})}
	for i, x := range rawTasks {
		m, ok := x.(map[string]any)
		if !ok {
			s.logger().Warn("dropping task record", "index", i, "reason", "not an object")
			rep.Dropped = append(rep.Dropped, DroppedRecord{Kind: "task", Key: fmt.Sprintf("%d", i), Reason: "not an object"})
			continue
		}
		t := model.Normalize(model.RecordFromMap(m), defaults)
		rep.ReassignedIDs = append(rep.ReassignedIDs, dedupeIDs(&t, seen, defaults.NewID)...)
		b.Tasks = append(b.Tasks, &t)
	}
	rep.Tasks = len(b.Tasks)
	rep.Nodes = tree.Count(b.Tasks)
	rep.People = len(b.People)
	rep.Categories = len(b.Categories)
	return b, rep, nil
}

// dedupeIDs gives every node of t whose id is already in seen a fresh id,
// and records all ids of t in seen.
func dedupeIDs(t *model.Task, seen map[string]struct{}, newID func(string) string) []string {
	var reassigned []string
	tree.Walk([]*model.Task{t}, func(n *model.Task, _ int) bool {
		if _, dup := seen[n.ID]; dup {
			reassigned = append(reassigned, n.ID)
			prefix := "sub"
			if n == t {
				prefix = "task"
			}
			n.ID = newID(prefix)
		}
		seen[n.ID] = struct{}{}
		return true
	})
	return reassigned
}

func (s Store) importRegistry(v any, kind string, rep *ImportReport) model.Registry {
	out := model.Registry{}
	m, _ := v.(map[string]any)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		color, ok := m[name].(string)
		if strings.TrimSpace(name) == "" || !ok {
			s.logger().Warn("dropping registry entry", "kind", kind, "name", name)
			rep.Dropped = append(rep.Dropped, DroppedRecord{Kind: kind, Key: name, Reason: "color is not a string"})
			continue
		}
		out.Set(strings.TrimSpace(name), color)
	}
	return out
}

func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%s: %s", loc, leaf.Message)
}

type legacyPayload struct {
	Tasks      []*model.Task  `json:"tasks"`
	People     model.Registry `json:"people"`
	Categories model.Registry `json:"categories"`
}

// ExportJSON writes the board in the legacy payload shape ImportJSON reads.
func ExportJSON(b *Board) ([]byte, error) {
	if b == nil {
		b = NewBoard()
	}
	b.ensure()
	return json.MarshalIndent(legacyPayload{Tasks: b.Tasks, People: b.People, Categories: b.Categories}, "", "  ")
}
