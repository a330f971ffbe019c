package mutate

import (
	"errors"
	"testing"

	"taskboard/internal/model"
)

func intPtr(n int) *int { return &n }

func TestSetStatus_CloseStampsDateAndLogs(t *testing.T) {
	b := testBoard()
	res, err := SetStatus(b, testEnv(), "deep", model.StatusClosed, nil)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed")
	}
	deep := mustFind(t, b, "deep")
	if deep.ClosedDate == nil || !deep.ClosedDate.Equal(testNow) {
		t.Fatalf("expected closedDate=now, got %v", deep.ClosedDate)
	}
	if len(deep.Log) != 1 || deep.Log[0].Message != "Task status changed to Closed." || *deep.Log[0].Assignee != "Carol" {
		t.Fatalf("unexpected log on closed task: %+v", deep.Log)
	}
	mid := mustFind(t, b, "mid")
	if len(mid.Log) != 1 || mid.Log[0].Message != `Sub-task "Task deep" marked as completed.` || *mid.Log[0].Assignee != "Carol" {
		t.Fatalf("unexpected log on parent: %+v", mid.Log)
	}
	if got := res.EventPayload["to"]; got != "Closed" {
		t.Fatalf("unexpected payload: %+v", res.EventPayload)
	}
}

func TestSetStatus_SameStatusIsNoop(t *testing.T) {
	b := testBoard()
	res, err := SetStatus(b, testEnv(), "other", model.StatusOpen, nil)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if res.Changed || len(mustFind(t, b, "other").Log) != 0 {
		t.Fatalf("expected no-op")
	}
}

func TestSetStatus_ProgressRules(t *testing.T) {
	b := testBoard()
	var ve ValidationError
	if _, err := SetStatus(b, testEnv(), "other", model.StatusClosed, intPtr(50)); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for progress with Closed, got %v", err)
	}
	if _, err := SetStatus(b, testEnv(), "other", model.StatusInProgress, intPtr(101)); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for progress 101, got %v", err)
	}
	if _, err := SetStatus(b, testEnv(), "other", model.StatusInProgress, intPtr(30)); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	other := mustFind(t, b, "other")
	if other.Progress == nil || *other.Progress != 30 {
		t.Fatalf("expected progress 30, got %v", other.Progress)
	}
	res, err := SetStatus(b, testEnv(), "other", model.StatusInProgress, intPtr(60))
	if err != nil || !res.Changed || *other.Progress != 60 {
		t.Fatalf("expected progress update, res=%+v err=%v", res, err)
	}
	if _, err := SetStatus(b, testEnv(), "other", model.StatusOpen, nil); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if other.Progress != nil {
		t.Fatalf("expected progress cleared when leaving In Progress")
	}
}

func TestSetStatus_UnknownTask(t *testing.T) {
	var nf NotFoundError
	if _, err := SetStatus(testBoard(), testEnv(), "nope", model.StatusClosed, nil); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	var ve ValidationError
	if _, err := SetStatus(testBoard(), testEnv(), "other", model.Status("Blocked"), nil); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// closedDate is set iff status is Closed, across any transition sequence.
func TestSetStatus_ClosedDateInvariant(t *testing.T) {
	seqs := [][]model.Status{
		{model.StatusClosed, model.StatusOpen, model.StatusClosed},
		{model.StatusInProgress, model.StatusClosed, model.StatusInProgress, model.StatusOpen},
		{model.StatusClosed, model.StatusClosed, model.StatusInProgress},
		{model.StatusOpen, model.StatusInProgress, model.StatusInProgress, model.StatusClosed},
	}
	for _, seq := range seqs {
		b := testBoard()
		for _, st := range seq {
			for _, id := range []string{"root", "mid", "deep", "other"} {
				if _, err := SetStatus(b, testEnv(), id, st, nil); err != nil {
					t.Fatalf("SetStatus(%s, %s): %v", id, st, err)
				}
				task := mustFind(t, b, id)
				if (task.Status == model.StatusClosed) != (task.ClosedDate != nil) {
					t.Fatalf("invariant broken for %s after %v: status=%s closedDate=%v", id, seq, task.Status, task.ClosedDate)
				}
			}
		}
	}
}

func TestSetStatus_ReopenRollsParentForward(t *testing.T) {
	b := testBoard()
	env := testEnv()
	// Close then reopen deep with a later date so the chain must move.
	if _, err := SetStatus(b, env, "deep", model.StatusClosed, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	deep := mustFind(t, b, "deep")
	deep.DueDate = model.MustDate("2025-04-30")
	res, err := SetStatus(b, env, "deep", model.StatusOpen, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if deep.ClosedDate != nil {
		t.Fatalf("expected closedDate cleared")
	}
	if got := mustFind(t, b, "mid").DueDate.String(); got != "2025-05-07" {
		t.Fatalf("mid due = %s, want 2025-05-07", got)
	}
	if got := mustFind(t, b, "root").DueDate.String(); got != "2025-05-14" {
		t.Fatalf("root due = %s, want 2025-05-14", got)
	}
	if len(res.Rolled) != 2 || res.Rolled[0] != "mid" || res.Rolled[1] != "root" {
		t.Fatalf("unexpected rolled ids: %v", res.Rolled)
	}
}
