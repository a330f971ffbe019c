package store

import "fmt"

// MalformedDataError reports persisted or imported data that could not be
// read at all. Individually broken records are dropped instead.
type MalformedDataError struct {
	Reason string
	Err    error
}

func (e MalformedDataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed data: %s", e.Reason)
	}
	return fmt.Sprintf("malformed data: %s: %v", e.Reason, e.Err)
}

func (e MalformedDataError) Unwrap() error { return e.Err }
