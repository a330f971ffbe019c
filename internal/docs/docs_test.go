package docs

import (
	"strings"
	"testing"
)

func TestTopicsHaveTitles(t *testing.T) {
	topics := Topics()
	if len(topics) < 4 {
		t.Fatalf("expected embedded topics, got %v", topics)
	}
	for i, tp := range topics {
		if tp.Title == "" || tp.Title == tp.Name {
			t.Fatalf("topic %q has no heading", tp.Name)
		}
		if i > 0 && topics[i-1].Name >= tp.Name {
			t.Fatalf("topics not sorted: %v", topics)
		}
	}
}

func TestGet(t *testing.T) {
	body, ok := Get("ROLLUP")
	if !ok || !strings.HasPrefix(body, "# Due-date rollup") {
		t.Fatalf("unexpected rollup page: %v %q", ok, body)
	}
	for _, bad := range []string{"", "nope", "../docs"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("expected %q to be unknown", bad)
		}
	}
}
