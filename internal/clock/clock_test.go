package clock

import (
	"testing"
	"time"

	"taskboard/internal/model"
)

func TestFixedDate(t *testing.T) {
	c := FixedDate(model.MustDate("2025-03-10"))
	if got := c.Today().String(); got != "2025-03-10" {
		t.Fatalf("Today = %s", got)
	}
	if got := c.Now(); got.Hour() != 12 || got.Location() != time.UTC {
		t.Fatalf("Now = %v, want noon UTC", got)
	}
}

func TestSystemNowIsUTC(t *testing.T) {
	if loc := (System{}).Now().Location(); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
