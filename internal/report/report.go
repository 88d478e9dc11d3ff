// Package report computes task statistics and renders the overview reports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskmgr-go/internal/dates"
	"github.com/nibzard/taskmgr-go/internal/task"
)

// Format selects how a report is encoded.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected text, json, yaml)", s)
	}
}

// Summary holds global task statistics.
type Summary struct {
	TotalTasks    int     `json:"total_tasks" yaml:"total_tasks"`
	Completed     int     `json:"completed" yaml:"completed"`
	Incomplete    int     `json:"incomplete" yaml:"incomplete"`
	Overdue       int     `json:"overdue" yaml:"overdue"`
	PctIncomplete float64 `json:"pct_incomplete" yaml:"pct_incomplete"`
	PctOverdue    float64 `json:"pct_overdue" yaml:"pct_overdue"`
}

// UserSummary holds statistics for a single user.
type UserSummary struct {
	Username      string  `json:"username" yaml:"username"`
	Assigned      int     `json:"assigned" yaml:"assigned"`
	PctOfTotal    float64 `json:"pct_of_total" yaml:"pct_of_total"`
	Completed     int     `json:"completed" yaml:"completed"`
	PctCompleted  float64 `json:"pct_completed" yaml:"pct_completed"`
	Incomplete    int     `json:"incomplete" yaml:"incomplete"`
	PctIncomplete float64 `json:"pct_incomplete" yaml:"pct_incomplete"`
	Overdue       int     `json:"overdue" yaml:"overdue"`
	PctOverdue    float64 `json:"pct_overdue" yaml:"pct_overdue"`
}

// Report is a computed snapshot of task and user statistics.
type Report struct {
	Date       string        `json:"date" yaml:"date"`
	TotalUsers int           `json:"total_users" yaml:"total_users"`
	Tasks      Summary       `json:"tasks" yaml:"tasks"`
	Users      []UserSummary `json:"users" yaml:"users"`
}

// Compute builds a report from a task snapshot and the registered
// usernames. Users are listed in ascending order. A task is overdue when it
// is incomplete and its due date is strictly before today; tasks with an
// unparsable due date are never overdue.
func Compute(tasks []task.Task, usernames []string, today time.Time) *Report {
	today = dates.DateOf(today)
	n := len(tasks)

	r := &Report{
		Date:       dates.Format(today),
		TotalUsers: len(usernames),
		Users:      make([]UserSummary, 0, len(usernames)),
	}

	for _, t := range tasks {
		if t.Completed {
			r.Tasks.Completed++
		} else if t.IsOverdue(today) {
			r.Tasks.Overdue++
		}
	}
	r.Tasks.TotalTasks = n
	r.Tasks.Incomplete = n - r.Tasks.Completed
	r.Tasks.PctIncomplete = percent(r.Tasks.Incomplete, n)
	r.Tasks.PctOverdue = percent(r.Tasks.Overdue, n)

	for _, name := range sortedCopy(usernames) {
		u := UserSummary{Username: name}
		for _, t := range tasks {
			if !t.OwnedBy(name) {
				continue
			}
			u.Assigned++
			if t.Completed {
				u.Completed++
				continue
			}
			u.Incomplete++
			if t.IsOverdue(today) {
				u.Overdue++
			}
		}
		u.PctOfTotal = percent(u.Assigned, n)
		u.PctCompleted = percent(u.Completed, u.Assigned)
		u.PctIncomplete = percent(u.Incomplete, u.Assigned)
		u.PctOverdue = percent(u.Overdue, u.Assigned)
		r.Users = append(r.Users, u)
	}

	return r
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// pct renders a percentage with two decimals and a % suffix.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// TaskOverview renders the global statistics report.
func (r *Report) TaskOverview() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total tasks: %d\n", r.Tasks.TotalTasks)
	fmt.Fprintf(&b, "Total completed tasks: %d\n", r.Tasks.Completed)
	fmt.Fprintf(&b, "Total uncompleted tasks: %d\n", r.Tasks.Incomplete)
	fmt.Fprintf(&b, "Total overdue tasks (uncompleted & past due date): %d\n", r.Tasks.Overdue)
	fmt.Fprintf(&b, "Percentage of tasks incomplete: %s\n", pct(r.Tasks.PctIncomplete))
	fmt.Fprintf(&b, "Percentage of tasks overdue: %s\n", pct(r.Tasks.PctOverdue))
	return b.String()
}

// UserOverview renders the per-user statistics report.
func (r *Report) UserOverview() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total users: %d\n", r.TotalUsers)
	fmt.Fprintf(&b, "Total tasks: %d\n\n", r.Tasks.TotalTasks)
	for _, u := range r.Users {
		fmt.Fprintf(&b, "User: %s\n", u.Username)
		fmt.Fprintf(&b, "  Total tasks assigned: %d\n", u.Assigned)
		fmt.Fprintf(&b, "  Percentage of total tasks assigned to user: %s\n", pct(u.PctOfTotal))
		fmt.Fprintf(&b, "  Percentage of user's tasks completed: %s\n", pct(u.PctCompleted))
		fmt.Fprintf(&b, "  Percentage of user's tasks to be completed: %s\n", pct(u.PctIncomplete))
		fmt.Fprintf(&b, "  Percentage of user's tasks overdue and not complete: %s\n\n", pct(u.PctOverdue))
	}
	return b.String()
}

// WriteFiles writes both text reports, replacing any previous versions.
func (r *Report) WriteFiles(taskOverviewPath, userOverviewPath string) error {
	if err := writeFile(taskOverviewPath, r.TaskOverview()); err != nil {
		return fmt.Errorf("write task overview: %w", err)
	}
	if err := writeFile(userOverviewPath, r.UserOverview()); err != nil {
		return fmt.Errorf("write user overview: %w", err)
	}
	return nil
}

// Encode writes the report to w in the given format. Structured formats
// round percentages to two decimals.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, r.TaskOverview()+"\n"+r.UserOverview())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.rounded())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.rounded()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (r *Report) rounded() *Report {
	out := *r
	out.Tasks.PctIncomplete = round2(r.Tasks.PctIncomplete)
	out.Tasks.PctOverdue = round2(r.Tasks.PctOverdue)
	out.Users = make([]UserSummary, len(r.Users))
	for i, u := range r.Users {
		u.PctOfTotal = round2(u.PctOfTotal)
		u.PctCompleted = round2(u.PctCompleted)
		u.PctIncomplete = round2(u.PctIncomplete)
		u.PctOverdue = round2(u.PctOverdue)
		out.Users[i] = u
	}
	return &out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedCopy(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
