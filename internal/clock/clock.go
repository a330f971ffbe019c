// Package clock supplies the current instant and calendar date so that
// date-dependent behaviour can be pinned in tests.
package clock

import (
	"time"

	"taskboard/internal/model"
)

type Clock interface {
	Now() time.Time
	Today() model.Date
}

// System reads the wall clock. Today is evaluated in the local zone.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

func (System) Today() model.Date { return model.DateOf(time.Now()) }

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At.UTC() }

func (f Fixed) Today() model.Date { return model.DateOf(f.At) }

// FixedDate returns a Fixed clock at noon UTC on the given date.
func FixedDate(d model.Date) Fixed {
	return Fixed{At: d.Time().Add(12 * time.Hour)}
}
