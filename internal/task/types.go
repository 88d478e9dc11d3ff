package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/taskmgr-go/internal/dates"
)

// Delimiter separates fields in a task record.
const Delimiter = ","

// descriptionJoin rejoins description parts split on the delimiter.
const descriptionJoin = Delimiter + " "

// FieldCount is the number of logical fields in a task record.
const FieldCount = 6

// Completion tokens.
const (
	TokenYes = "Yes"
	TokenNo  = "No"
)

// ErrMalformedRecord reports a line with fewer than FieldCount fields.
var ErrMalformedRecord = errors.New("malformed task record")

// Task is a single assignment of work to a user.
type Task struct {
	Owner        string
	Title        string
	Description  string
	AssignedDate string
	DueDate      string
	Completed    bool
}

// Record is the decoded text form of a task line. Unlike Task it keeps the
// raw completion token so diagnostics can see exactly what was stored.
type Record struct {
	Owner        string `json:"owner"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssignedDate string `json:"assigned_date"`
	DueDate      string `json:"due_date"`
	Completed    string `json:"completed"`
}

// CompletedToken returns the canonical completion token.
func (t Task) CompletedToken() string {
	if t.Completed {
		return TokenYes
	}
	return TokenNo
}

// OwnedBy reports whether username owns the task (case-insensitive).
func (t Task) OwnedBy(username string) bool {
	return strings.EqualFold(strings.TrimSpace(t.Owner), strings.TrimSpace(username))
}

// Due parses the due date.
func (t Task) Due() (time.Time, error) {
	return dates.Parse(t.DueDate)
}

// IsOverdue reports whether the task is incomplete and due strictly before
// today. A task whose due date cannot be parsed is never overdue.
func (t Task) IsOverdue(today time.Time) bool {
	if t.Completed {
		return false
	}
	due, err := t.Due()
	if err != nil {
		return false
	}
	return due.Before(dates.DateOf(today))
}

// Record converts t to its text form.
func (t Task) Record() Record {
	return Record{
		Owner:        t.Owner,
		Title:        t.Title,
		Description:  t.Description,
		AssignedDate: t.AssignedDate,
		DueDate:      t.DueDate,
		Completed:    t.CompletedToken(),
	}
}

// Task converts r to a Task. Any token other than "yes" (in any case) is
// treated as not completed.
func (r Record) Task() Task {
	return Task{
		Owner:        r.Owner,
		Title:        r.Title,
		Description:  r.Description,
		AssignedDate: r.AssignedDate,
		DueDate:      r.DueDate,
		Completed:    strings.EqualFold(r.Completed, TokenYes),
	}
}

// ParseRecord splits a task line into its six fields.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, fmt.Errorf("%w: empty line", ErrMalformedRecord)
	}

	parts := strings.Split(line, Delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	n := len(parts)
	if n < FieldCount {
		return Record{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRecord, n, FieldCount)
	}

	description := parts[2]
	if n > FieldCount {
		description = strings.Join(parts[2:n-3], descriptionJoin)
	}

	return Record{
		Owner:        parts[0],
		Title:        parts[1],
		Description:  description,
		AssignedDate: parts[n-3],
		DueDate:      parts[n-2],
		Completed:    parts[n-1],
	}, nil
}

// Decode parses a task line.
func Decode(line string) (Task, error) {
	r, err := ParseRecord(line)
	if err != nil {
		return Task{}, err
	}
	return r.Task(), nil
}

// Encode renders t as a single task line without a trailing newline.
func Encode(t Task) string {
	return strings.Join([]string{
		t.Owner,
		t.Title,
		t.Description,
		t.AssignedDate,
		t.DueDate,
		t.CompletedToken(),
	}, Delimiter)
}
