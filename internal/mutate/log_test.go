package mutate

import (
	"errors"
	"testing"

	"taskboard/internal/model"
)

func TestAppendLog(t *testing.T) {
	b := testBoard()
	if _, err := AppendLog(b, testEnv(), "mid", "first", nil); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	res, err := AppendLog(b, testEnv(), "mid", "  second  ", model.StrPtr("Alice"))
	if err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	log := res.Task.Log
	if len(log) != 2 || log[0].Message != "second" || log[1].Message != "first" {
		t.Fatalf("expected newest first, got %+v", log)
	}
	if *log[0].Assignee != "Alice" || *log[1].Assignee != "Bob" {
		t.Fatalf("unexpected attribution: %v / %v", *log[0].Assignee, *log[1].Assignee)
	}

	var ve ValidationError
	if _, err := AppendLog(b, testEnv(), "mid", "   ", nil); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var nf NotFoundError
	if _, err := AppendLog(b, testEnv(), "mid", "x", model.StrPtr("Zed")); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestChaserMessage(t *testing.T) {
	cases := map[string]string{
		"email":   "Email chaser sent",
		"Letter":  "Letter chaser sent",
		"meeting": "Chased at meeting",
	}
	for in, want := range cases {
		got, err := ChaserMessage(in)
		if err != nil || got != want {
			t.Fatalf("ChaserMessage(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ChaserMessage("fax"); err == nil {
		t.Fatalf("expected error for unknown chaser")
	}
}

func TestLinks(t *testing.T) {
	b := testBoard()
	if _, err := AddLink(b, "other", model.Link{Name: "Runbook", URL: "https://example.com/runbook"}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if _, err := AddLink(b, "other", model.Link{Name: "Board", URL: "https://example.com/board"}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	var ve ValidationError
	if _, err := AddLink(b, "other", model.Link{Name: "", URL: "https://x"}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	res, err := RemoveLink(b, "other", 0)
	if err != nil {
		t.Fatalf("RemoveLink: %v", err)
	}
	if len(res.Task.Links) != 1 || res.Task.Links[0].Name != "Board" {
		t.Fatalf("unexpected links: %+v", res.Task.Links)
	}
	var nf NotFoundError
	if _, err := RemoveLink(b, "other", 5); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
