// Package tracker applies the task manager's session rules on top of the
// user and task stores: who may do what, and which inputs are accepted.
package tracker

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/taskmgr-go/internal/dates"
	"github.com/nibzard/taskmgr-go/internal/logging"
	"github.com/nibzard/taskmgr-go/internal/report"
	"github.com/nibzard/taskmgr-go/internal/task"
	"github.com/nibzard/taskmgr-go/internal/users"
)

// DefaultAdminUser is the username granted administrator operations.
const DefaultAdminUser = "admin"

var (
	// ErrUnknownUser is returned when a task owner is not registered.
	ErrUnknownUser = errors.New("user does not exist")
	// ErrForbidden is returned when the session may not perform an operation.
	ErrForbidden = errors.New("operation not permitted for this user")
	// ErrInvalidTitle is returned for task titles containing the field delimiter.
	ErrInvalidTitle = errors.New("title cannot contain a comma")
	// ErrPasswordMismatch is returned when a registration confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")

	errNotEditable = errors.New("task is completed")
)

// Outcome is the result of a change to an existing task.
type Outcome int

const (
	// Updated means the change was applied and saved.
	Updated Outcome = iota
	// NotEditable means the task is completed and was left unchanged.
	NotEditable
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case NotEditable:
		return "not editable"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Options configures a Tracker.
type Options struct {
	AdminUser        string
	TaskOverviewPath string
	UserOverviewPath string
	// Now returns the current time; defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
	// Audit receives one event per login and mutation. May be nil.
	Audit *logging.AuditLog
	// SessionID identifies sessions opened by Login; generated when empty.
	SessionID string
}

// Tracker ties the user and task stores together.
type Tracker struct {
	users *users.Store
	tasks *task.Store
	opts  Options
}

// New creates a tracker.
func New(userStore *users.Store, taskStore *task.Store, opts Options) *Tracker {
	if opts.AdminUser == "" {
		opts.AdminUser = DefaultAdminUser
	}
	opts.AdminUser = users.Normalize(opts.AdminUser)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	return &Tracker{users: userStore, tasks: taskStore, opts: opts}
}

// Users returns the user store.
func (t *Tracker) Users() *users.Store {
	return t.users
}

// Tasks returns the task store.
func (t *Tracker) Tasks() *task.Store {
	return t.tasks
}

// Today returns the current calendar date.
func (t *Tracker) Today() time.Time {
	return dates.DateOf(t.opts.Now())
}

// Login authenticates a user. A failed login is not an error.
func (t *Tracker) Login(username, password string) (*Session, bool) {
	name := users.Normalize(username)
	if !t.users.Authenticate(name, password) {
		t.opts.Logger.Debug("login failed", "user", name)
		t.opts.Audit.Record("login_failed", "user", name)
		return nil, false
	}

	s := &Session{ID: t.opts.SessionID, User: name, tracker: t}
	t.opts.Logger.Debug("login", "user", name, "session", s.ID)
	t.opts.Audit.Record("login", "user", name)
	return s, true
}

// Entry is a task together with its position in the full task list.
type Entry struct {
	Index int
	Task  task.Task
}

// Number returns the 1-based task number shown to users.
func (e Entry) Number() int {
	return e.Index + 1
}

// NewTask holds the user-supplied fields of a task being created.
type NewTask struct {
	Owner       string
	Title       string
	Description string
	DueDate     string
}

// EditRequest changes the owner and/or due date of a task. Blank fields
// keep their current value.
type EditRequest struct {
	Owner   string
	DueDate string
}

// Session is an authenticated user's view of the tracker.
type Session struct {
	ID      string
	User    string
	tracker *Tracker
}

// IsAdmin reports whether the session user is the administrator.
func (s *Session) IsAdmin() bool {
	return s.User == s.tracker.opts.AdminUser
}

func (s *Session) requireAdmin() error {
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *Session) record(event string, keyvals ...any) {
	s.tracker.opts.Audit.Record(event, append([]any{"user", s.User}, keyvals...)...)
}

// AllTasks returns every task in stored order.
func (s *Session) AllTasks() ([]Entry, error) {
	return s.entries(func(task.Task) bool { return true })
}

// MyTasks returns the session user's tasks with their global positions.
func (s *Session) MyTasks() ([]Entry, error) {
	return s.entries(func(t task.Task) bool { return t.OwnedBy(s.User) })
}

// CompletedTasks returns every completed task. Administrator only.
func (s *Session) CompletedTasks() ([]Entry, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.entries(func(t task.Task) bool { return t.Completed })
}

func (s *Session) entries(keep func(task.Task) bool) ([]Entry, error) {
	tasks, err := s.tracker.tasks.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for i, t := range tasks {
		if keep(t) {
			out = append(out, Entry{Index: i, Task: t})
		}
	}
	return out, nil
}

// AddTask validates and appends a new task. The owner must be registered
// and the due date must be a valid date; the assigned date is today.
// Titles may not contain a comma.
func (s *Session) AddTask(req NewTask) (task.Task, error) {
	owner := users.Normalize(req.Owner)
	if !s.tracker.users.Exists(owner) {
		return task.Task{}, fmt.Errorf("%w: %q", ErrUnknownUser, owner)
	}
	title := strings.TrimSpace(req.Title)
	if strings.Contains(title, ",") {
		return task.Task{}, fmt.Errorf("%w: %q", ErrInvalidTitle, title)
	}
	due := strings.TrimSpace(req.DueDate)
	if _, err := dates.Parse(due); err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		Owner:        owner,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		AssignedDate: dates.Format(s.tracker.Today()),
		DueDate:      due,
	}
	if err := s.tracker.tasks.Append(t); err != nil {
		return task.Task{}, err
	}
	s.record("add", "owner", owner, "title", t.Title)
	return t, nil
}

// MarkComplete marks the task at index as completed. Completion is one way;
// a task that is already completed reports NotEditable.
func (s *Session) MarkComplete(index int) (Outcome, error) {
	_, err := s.tracker.tasks.Update(index, func(t *task.Task) error {
		if err := s.canModify(*t); err != nil {
			return err
		}
		if t.Completed {
			return errNotEditable
		}
		t.Completed = true
		return nil
	})
	if errors.Is(err, errNotEditable) {
		return NotEditable, nil
	}
	if err != nil {
		return Updated, err
	}
	s.record("complete", "task", index+1)
	return Updated, nil
}

// Edit changes the owner and/or due date of the task at index. Every field
// is validated before any is applied; a failure leaves the task untouched.
// Completed tasks report NotEditable.
func (s *Session) Edit(index int, req EditRequest) (Outcome, task.Task, error) {
	owner := users.Normalize(req.Owner)
	due := strings.TrimSpace(req.DueDate)

	updated, err := s.tracker.tasks.Update(index, func(t *task.Task) error {
		if err := s.canModify(*t); err != nil {
			return err
		}
		if t.Completed {
			return errNotEditable
		}
		if owner != "" && !s.tracker.users.Exists(owner) {
			return fmt.Errorf("%w: %q", ErrUnknownUser, owner)
		}
		if due != "" {
			if _, err := dates.Parse(due); err != nil {
				return err
			}
		}

		if owner != "" {
			t.Owner = owner
		}
		if due != "" {
			t.DueDate = due
		}
		return nil
	})
	if errors.Is(err, errNotEditable) {
		return NotEditable, updated, nil
	}
	if err != nil {
		return Updated, updated, err
	}
	s.record("edit", "task", index+1, "owner", updated.Owner, "due", updated.DueDate)
	return Updated, updated, nil
}

// canModify allows the task owner and the administrator.
func (s *Session) canModify(t task.Task) error {
	if s.IsAdmin() || t.OwnedBy(s.User) {
		return nil
	}
	return ErrForbidden
}

// DeleteTask removes the task at index. Later tasks move down one position.
// Administrator only.
func (s *Session) DeleteTask(index int) (task.Task, error) {
	if err := s.requireAdmin(); err != nil {
		return task.Task{}, err
	}
	removed, err := s.tracker.tasks.Delete(index)
	if err != nil {
		return task.Task{}, err
	}
	s.record("delete", "task", index+1, "title", removed.Title, "owner", removed.Owner)
	return removed, nil
}

// RegisterUser adds a new user. Administrator only.
func (s *Session) RegisterUser(username, password, confirm string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if strings.TrimSpace(password) != strings.TrimSpace(confirm) {
		return ErrPasswordMismatch
	}
	if err := s.tracker.users.Register(username, password); err != nil {
		return err
	}
	s.record("register", "new_user", users.Normalize(username))
	return nil
}

// GenerateReports computes statistics and writes both overview files.
// Administrator only.
func (s *Session) GenerateReports() (*report.Report, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	r, err := s.tracker.Report()
	if err != nil {
		return nil, err
	}
	if err := r.WriteFiles(s.tracker.opts.TaskOverviewPath, s.tracker.opts.UserOverviewPath); err != nil {
		return nil, err
	}
	s.record("report", "tasks", r.Tasks.TotalTasks)
	return r, nil
}

// Statistics returns the contents of both overview files, generating them
// first if either is missing. Administrator only.
func (s *Session) Statistics() (taskOverview, userOverview string, generated bool, err error) {
	if err := s.requireAdmin(); err != nil {
		return "", "", false, err
	}
	if !exists(s.tracker.opts.TaskOverviewPath) || !exists(s.tracker.opts.UserOverviewPath) {
		if _, err := s.GenerateReports(); err != nil {
			return "", "", false, err
		}
		generated = true
	}

	tb, err := os.ReadFile(s.tracker.opts.TaskOverviewPath)
	if err != nil {
		return "", "", generated, fmt.Errorf("read task overview: %w", err)
	}
	ub, err := os.ReadFile(s.tracker.opts.UserOverviewPath)
	if err != nil {
		return "", "", generated, fmt.Errorf("read user overview: %w", err)
	}
	return string(tb), string(ub), generated, nil
}

// ReportPaths returns the task and user overview file paths.
func (t *Tracker) ReportPaths() (taskOverview, userOverview string) {
	return t.opts.TaskOverviewPath, t.opts.UserOverviewPath
}

// Report computes statistics from the current stores without writing files.
func (t *Tracker) Report() (*report.Report, error) {
	tasks, err := t.tasks.LoadAll()
	if err != nil {
		return nil, err
	}
	return report.Compute(tasks, t.users.Usernames(), t.Today()), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
