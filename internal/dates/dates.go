// Package dates validates and parses the calendar dates stored in task records.
package dates

import (
	"fmt"
	"time"
)

// Layout is the only accepted date format (YYYY-MM-DD).
const Layout = "2006-01-02"

// InvalidDateError reports a string that is not a real YYYY-MM-DD date.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Input)
}

// Unwrap returns the underlying parse error.
func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// IsValid reports whether s is a real calendar date in YYYY-MM-DD form.
// Out-of-range days such as 2023-02-30 are rejected.
func IsValid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Parse parses s as a calendar date. The result is midnight UTC so that
// dates compare without any timezone offset.
func Parse(s string) (time.Time, error) {
	d, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, &InvalidDateError{Input: s, Err: err}
	}
	return d, nil
}

// Today returns the current local calendar date.
func Today() time.Time {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar date in t's own location and
// returns it as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders a date in YYYY-MM-DD form.
func Format(t time.Time) string {
	return t.Format(Layout)
}
