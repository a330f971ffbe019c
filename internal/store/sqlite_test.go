package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"taskboard/internal/clock"
	"taskboard/internal/model"
	"taskboard/internal/rollup"
	"taskboard/internal/tree"
)

func testStore(t *testing.T) Store {
	t.Helper()
	return Store{Dir: t.TempDir(), Clock: clock.FixedDate(model.MustDate("2025-03-10"))}
}

func deepBoard() *Board {
	closed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	p := 40
	b := NewBoard()
	b.People.Set("Alice", "#0d6efd")
	b.Categories.Set("Backend", "hsl(120, 70%, 60%)")
	b.Tasks = []*model.Task{
		{
			ID: "task-a", Name: "Root", DueDate: model.MustDate("2025-04-01"), Category: "Backend",
			Assignee: model.StrPtr("Alice"), Status: model.StatusOpen, Log: []model.LogEntry{}, Links: []model.Link{{Name: "doc", URL: "https://example.com"}},
			Subtasks: []*model.Task{
				{
					ID: "sub-b", Name: "Mid", DueDate: model.MustDate("2025-03-20"), Category: "Uncategorized",
					Status: model.StatusInProgress, Progress: &p, Log: []model.LogEntry{}, Links: []model.Link{},
					Subtasks: []*model.Task{
						{
							ID: "sub-c", Name: "Leaf", DueDate: model.MustDate("2025-03-15"), Category: "Uncategorized",
							Status: model.StatusClosed, ClosedDate: &closed, Subtasks: []*model.Task{}, Links: []model.Link{},
							Log: []model.LogEntry{{Timestamp: closed, Message: "Task status changed to Closed."}},
						},
					},
				},
				{
					ID: "sub-d", Name: "Sibling", DueDate: model.MustDate("2025-03-12"), Category: "Uncategorized",
					Status: model.StatusOpen, Subtasks: []*model.Task{}, Log: []model.LogEntry{}, Links: []model.Link{},
				},
			},
		},
		{
			ID: "task-e", Name: "Second", DueDate: model.MustDate("2025-03-11"), Category: "Uncategorized",
			Status: model.StatusOpen, Subtasks: []*model.Task{}, Log: []model.LogEntry{}, Links: []model.Link{},
		},
	}
	return b
}

func TestStore_SaveLoad_RoundTripDeepTree(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	want := deepBoard()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got.Tasks, want.Tasks) {
		t.Fatalf("tasks differ after round trip\n got=%v\nwant=%v", tree.IDs(got.Tasks), tree.IDs(want.Tasks))
	}
	if !reflect.DeepEqual(got.People, want.People) || !reflect.DeepEqual(got.Categories, want.Categories) {
		t.Fatalf("registries differ: people=%v categories=%v", got.People, got.Categories)
	}
}

func TestStore_SaveReplacesPreviousState(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	if err := s.Save(ctx, deepBoard()); err != nil {
		t.Fatalf("save: %v", err)
	}
	b := deepBoard()
	if !tree.Delete(&b.Tasks, "sub-b") {
		t.Fatalf("expected delete")
	}
	b.People.Delete("Alice")
	if err := s.Save(ctx, b); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := got.TaskCount(); n != 3 {
		t.Fatalf("expected 3 nodes, got %d (%v)", n, tree.IDs(got.Tasks))
	}
	if got.People.Has("Alice") {
		t.Fatalf("expected Alice removed")
	}
}

func TestStore_LoadEmptyDir(t *testing.T) {
	s := testStore(t)
	b, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Tasks == nil || b.People == nil || b.Categories == nil {
		t.Fatalf("expected non-nil collections: %+v", b)
	}
	if len(b.Tasks) != 0 {
		t.Fatalf("expected empty board")
	}
}

func TestStore_LoadDropsUnreadableRows(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	if err := s.Save(ctx, deepBoard()); err != nil {
		t.Fatalf("save: %v", err)
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET json = '[1,2]' WHERE id = ?`, "sub-b"); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}
	_ = db.Close()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// sub-b and its child sub-c are gone; everything else survives.
	ids := strings.Join(tree.IDs(got.Tasks), ",")
	if ids != "task-a,sub-d,task-e" {
		t.Fatalf("unexpected ids after load: %s", ids)
	}
}

func TestStore_LoadQuarantinesNonDatabaseFile(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	garbage := []byte(strings.Repeat("x", 4096))
	if err := os.WriteFile(filepath.Join(s.Dir, sqliteFileName), garbage, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("expected corrupt store to load as empty board, got %v", err)
	}
	if b == nil || len(b.Tasks) != 0 || len(b.People) != 0 {
		t.Fatalf("expected empty board, got %+v", b)
	}

	moved, err := filepath.Glob(filepath.Join(s.Dir, sqliteFileName+".corrupt-*"))
	if err != nil || len(moved) != 1 {
		t.Fatalf("expected one quarantined file, got %v (%v)", moved, err)
	}
	kept, err := os.ReadFile(moved[0])
	if err != nil || string(kept) != string(garbage) {
		t.Fatalf("expected original bytes preserved in %s", moved[0])
	}

	if err := s.Save(ctx, deepBoard()); err != nil {
		t.Fatalf("save after quarantine: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if ids := strings.Join(tree.IDs(got.Tasks), ","); ids != "task-a,sub-b,sub-c,sub-d,task-e" {
		t.Fatalf("unexpected ids after recovery: %s", ids)
	}
}

func TestStore_SaveRecoversFromNonDatabaseFile(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir, sqliteFileName), []byte(strings.Repeat("y", 4096)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Save(ctx, deepBoard()); err != nil {
		t.Fatalf("save over corrupt store: %v", err)
	}
	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestStore_Events(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	if err := s.AppendEvent(ctx, "task.create", "task-a", map[string]any{"name": "Root"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent(ctx, "task.status", "task-a", map[string]any{"to": "Closed"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent(ctx, "task.create", "task-b", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent(ctx, "", "task-b", nil); err == nil {
		t.Fatalf("expected error for missing type")
	}

	all, err := s.Events(ctx, "", 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Type != "task.create" || all[2].EntityID != "task-b" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].ID == "" || all[0].ID == all[1].ID {
		t.Fatalf("expected unique event ids")
	}

	forA, err := s.Events(ctx, "task-a", 1)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(forA) != 1 || forA[0].Type != "task.status" {
		t.Fatalf("expected latest task-a event, got %+v", forA)
	}
}

func TestStore_SaveRecordsEventsInSameTransaction(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	b := deepBoard()
	ev := PendingEvent{Type: "task.create", EntityID: "task-a", Payload: map[string]any{"name": "Root"}}
	if err := s.Save(ctx, b, ev); err != nil {
		t.Fatalf("save: %v", err)
	}
	evs, err := s.Events(ctx, "task-a", 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 1 || evs[0].Type != "task.create" {
		t.Fatalf("expected the saved event, got %+v", evs)
	}

	// An invalid event fails the whole save: the board stays as it was.
	next := NewBoard()
	if err := s.Save(ctx, next, PendingEvent{EntityID: "task-a"}); err == nil {
		t.Fatalf("expected error for event without type")
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Tasks) != len(b.Tasks) {
		t.Fatalf("expected board unchanged after failed save, got %d roots", len(got.Tasks))
	}
	if evs, _ := s.Events(ctx, "", 0); len(evs) != 1 {
		t.Fatalf("expected no extra events, got %d", len(evs))
	}
}

func TestStore_EventsKeepsUndecodablePayloadAsText(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	db, err := s.openSQLite(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO events(event_id, entity_id, type, issued_at_unixms, payload_json) VALUES(?, ?, ?, ?, ?)`,
		"ev-1", "task-a", "task.edit", int64(1), "{not json"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = db.Close()

	evs, err := s.Events(ctx, "task-a", 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 1 || evs[0].Payload != "{not json" {
		t.Fatalf("expected raw payload text, got %+v", evs)
	}
}

func TestBoard_NewIDIsUnique(t *testing.T) {
	b := deepBoard()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := b.NewID("task")
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if !strings.HasPrefix(id, "task-") || len(id) != len("task-")+6 {
			t.Fatalf("unexpected id shape: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSampleBoard(t *testing.T) {
	today := model.MustDate("2025-03-10")
	b := SampleBoard(today)
	if n := b.TaskCount(); n != 4 {
		t.Fatalf("expected 4 nodes, got %d", n)
	}
	sub, ok := b.FindTask("SUB-1")
	if !ok || sub.AssigneeName() != "Diana Prince" {
		t.Fatalf("expected SUB-1 assigned to Diana, got %+v", sub)
	}
	t1, _ := b.FindTask("TASK-1")
	if t1.DisplayProgress() != 75 || !t1.IsUrgent {
		t.Fatalf("unexpected TASK-1: %+v", t1)
	}
	for _, name := range []string{"Alice Johnson", "Bob Smith", "Charlie Brown", "Diana Prince"} {
		if !b.People.Has(name) {
			t.Fatalf("missing person %q", name)
		}
	}
	t2, _ := b.FindTask("TASK-2")
	if got := t2.DueDate.String(); got != "2025-03-17" {
		t.Fatalf("expected TASK-2 rolled up past SUB-1, got %s", got)
	}
	for _, task := range b.Tasks {
		if rollup.Apply(task, today, rollup.DefaultPolicy()) {
			t.Fatalf("expected seeded %s to already satisfy rollup", task.ID)
		}
	}
}
