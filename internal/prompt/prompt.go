// Package prompt implements the interactive login and menu session.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskmgr-go/internal/dates"
	"github.com/nibzard/taskmgr-go/internal/logging"
	"github.com/nibzard/taskmgr-go/internal/tracker"
	"github.com/nibzard/taskmgr-go/internal/users"
)

const separator = "----------------------------------------"

// Console drives one interactive session over a line-oriented reader and writer.
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	tracker *tracker.Tracker
	logger  *log.Logger

	// set by Run; readLine stops waiting when ctx is done.
	ctx   context.Context
	stop  chan struct{}
	lines chan inputLine
}

type inputLine struct {
	text string
	err  error
}

// New creates a console. A nil logger discards output.
func New(in io.Reader, out io.Writer, t *tracker.Tracker, logger *log.Logger) *Console {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		tracker: t,
		logger:  logger,
	}
}

// Run logs a user in and serves the menu until they exit.
// End of input ends the session cleanly; storage failures are returned.
func (c *Console) Run(ctx context.Context) error {
	c.ctx = ctx
	c.stop = make(chan struct{})
	defer close(c.stop)

	err := c.run(ctx)
	if errors.Is(err, io.EOF) {
		c.println()
		return nil
	}
	return err
}

func (c *Console) run(ctx context.Context) error {
	c.println("Welcome to the Task Manager!")
	c.println()

	s, err := c.login(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("session started", "user", s.User, "session", s.ID)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.menu(s)
		choice, err := c.readLine("> ")
		if err != nil {
			return err
		}
		done, err := c.dispatch(s, strings.ToLower(choice))
		if err != nil {
			return err
		}
		if done {
			c.logger.Info("session ended", "user", s.User, "session", s.ID)
			return nil
		}
	}
}

func (c *Console) login(ctx context.Context) (*tracker.Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		username, err := c.readLine("Username: ")
		if err != nil {
			return nil, err
		}
		password, err := c.readLine("Password: ")
		if err != nil {
			return nil, err
		}
		if s, ok := c.tracker.Login(username, password); ok {
			c.printf("\nLogin successful. Welcome, %s!\n", s.User)
			return s, nil
		}
		c.println("Invalid username or password. Please try again.")
	}
}

func (c *Console) menu(s *tracker.Session) {
	c.println("\nPlease select one of the following options:")
	if s.IsAdmin() {
		c.println("r  - register user")
	}
	c.println("a  - add task")
	c.println("va - view all tasks")
	c.println("vm - view my tasks")
	if s.IsAdmin() {
		c.println("vc - view completed tasks")
		c.println("del - delete a task")
		c.println("ds - display statistics")
		c.println("gr - generate reports")
	}
	c.println("e  - exit")
}

// dispatch runs one menu choice and reports whether the session is over.
func (c *Console) dispatch(s *tracker.Session, choice string) (bool, error) {
	admin := s.IsAdmin()
	switch {
	case choice == "r" && admin:
		return false, c.registerUser(s)
	case choice == "a":
		return false, c.addTask(s)
	case choice == "va":
		return false, c.viewAll(s)
	case choice == "vm":
		return false, c.viewMine(s)
	case choice == "vc" && admin:
		return false, c.viewCompleted(s)
	case choice == "del" && admin:
		return false, c.deleteTask(s)
	case choice == "gr" && admin:
		return false, c.generateReports(s)
	case choice == "ds" && admin:
		return false, c.displayStatistics(s)
	case choice == "e":
		c.println("Goodbye!")
		return true, nil
	default:
		c.println("Invalid option. Please select a valid menu item.")
		return false, nil
	}
}

func (c *Console) registerUser(s *tracker.Session) error {
	c.println("\n=== Register User ===")
	for {
		username, err := c.readLine("New username: ")
		if err != nil {
			return err
		}
		username = users.Normalize(username)
		if username == "" {
			c.println("Username cannot be empty. Try again.")
			continue
		}
		if c.tracker.Users().Exists(username) {
			c.println("This username already exists. Please choose another.")
			continue
		}
		password, err := c.readLine("New password: ")
		if err != nil {
			return err
		}
		confirm, err := c.readLine("Confirm password: ")
		if err != nil {
			return err
		}

		err = s.RegisterUser(username, password, confirm)
		var dup *users.DuplicateUserError
		switch {
		case err == nil:
			c.printf("User '%s' registered successfully.\n", username)
			return nil
		case errors.Is(err, tracker.ErrPasswordMismatch):
			c.println("Passwords do not match. Try again.")
		case errors.As(err, &dup):
			c.println("This username already exists. Please choose another.")
		case errors.Is(err, users.ErrInvalidUsername), errors.Is(err, users.ErrEmptyUsername):
			c.printf("%v. Try again.\n", err)
		default:
			return err
		}
	}
}

func (c *Console) addTask(s *tracker.Session) error {
	c.println("\n=== Add Task ===")
	owner, err := c.readLine("Username of person assigned to: ")
	if err != nil {
		return err
	}
	owner = users.Normalize(owner)
	if !c.tracker.Users().Exists(owner) {
		c.println("Error: That user does not exist. Please register the user first or assign to an existing user.")
		return nil
	}
	var title string
	for {
		title, err = c.readLine("Title of task: ")
		if err != nil {
			return err
		}
		if !strings.Contains(title, ",") {
			break
		}
		c.println("Title cannot contain a comma. Try again.")
	}
	description, err := c.readLine("Description of task: ")
	if err != nil {
		return err
	}
	var due string
	for {
		due, err = c.readLine("Due date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		if dates.IsValid(due) {
			break
		}
		c.println("Invalid date format. Please use YYYY-MM-DD.")
	}

	t, err := s.AddTask(tracker.NewTask{Owner: owner, Title: title, Description: description, DueDate: due})
	if errors.Is(err, tracker.ErrUnknownUser) {
		c.println("Error: That user does not exist. Please register the user first or assign to an existing user.")
		return nil
	}
	if err != nil {
		return err
	}
	c.printf("Task '%s' assigned to %s.\n", t.Title, t.Owner)
	return nil
}

func (c *Console) viewAll(s *tracker.Session) error {
	c.println("\n=== View All Tasks ===")
	entries, err := s.AllTasks()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.println("No tasks to show.")
		return nil
	}
	for _, e := range entries {
		c.printEntry(e.Number(), e, true)
	}
	return nil
}

func (c *Console) viewCompleted(s *tracker.Session) error {
	c.println("\n=== View Completed Tasks ===")
	entries, err := s.CompletedTasks()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.println("There are no completed tasks.")
		return nil
	}
	for _, e := range entries {
		c.printEntry(e.Number(), e, true)
	}
	return nil
}

func (c *Console) viewMine(s *tracker.Session) error {
	c.printf("\n=== View My Tasks (%s) ===\n", s.User)
	entries, err := s.MyTasks()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.println("You have no tasks assigned.")
		return nil
	}
	for i, e := range entries {
		c.printEntry(i+1, e, false)
	}

	sel, err := c.selectNumber("Enter the task number to select a task, or -1 to return: ",
		"Invalid input. Enter a number or -1 to cancel.", "Number out of range.", len(entries))
	if err != nil || sel == -1 {
		return err
	}
	entry := entries[sel-1]
	if entry.Task.Completed {
		c.println("This task is already completed and cannot be edited.")
		return nil
	}

	c.println("\nWhat would you like to do?")
	c.println("1 - Mark as complete")
	c.println("2 - Edit task (username or due date)")
	choice, err := c.readLine("> ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		outcome, err := s.MarkComplete(entry.Index)
		if err != nil {
			return err
		}
		if outcome == tracker.NotEditable {
			c.println("This task is already completed and cannot be edited.")
			return nil
		}
		c.println("Task marked as complete.")
	case "2":
		return c.editTask(s, entry)
	default:
		c.println("Invalid option selected.")
	}
	return nil
}

func (c *Console) editTask(s *tracker.Session, entry tracker.Entry) error {
	owner, err := c.readLine("Enter new username to assign (leave blank to keep current): ")
	if err != nil {
		return err
	}
	owner = users.Normalize(owner)
	if owner != "" && !c.tracker.Users().Exists(owner) {
		c.println("That user does not exist. Edit cancelled.")
		return nil
	}
	due, err := c.readLine("Enter new due date (YYYY-MM-DD) (leave blank to keep current): ")
	if err != nil {
		return err
	}
	if due != "" && !dates.IsValid(due) {
		c.println("Invalid date format. Edit cancelled.")
		return nil
	}

	outcome, _, err := s.Edit(entry.Index, tracker.EditRequest{Owner: owner, DueDate: due})
	if errors.Is(err, tracker.ErrUnknownUser) {
		c.println("That user does not exist. Edit cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	if outcome == tracker.NotEditable {
		c.println("This task is already completed and cannot be edited.")
		return nil
	}
	c.println("Task updated successfully.")
	return nil
}

func (c *Console) deleteTask(s *tracker.Session) error {
	c.println("\n=== Delete Task ===")
	entries, err := s.AllTasks()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.println("No tasks to delete.")
		return nil
	}
	for _, e := range entries {
		c.printf("%d. %s (Assigned to %s) - Completed: %s\n", e.Number(), e.Task.Title, e.Task.Owner, e.Task.CompletedToken())
	}

	sel, err := c.selectNumber("Enter task number to delete (or -1 to cancel): ",
		"Please enter a valid integer.", "That task number does not exist.", len(entries))
	if err != nil {
		return err
	}
	if sel == -1 {
		c.println("Delete cancelled.")
		return nil
	}
	removed, err := s.DeleteTask(sel - 1)
	if err != nil {
		return err
	}
	c.printf("Deleted task '%s' assigned to %s.\n", removed.Title, removed.Owner)
	return nil
}

func (c *Console) generateReports(s *tracker.Session) error {
	c.println("\n=== Generating Reports ===")
	if _, err := s.GenerateReports(); err != nil {
		return err
	}
	taskPath, userPath := c.tracker.ReportPaths()
	c.printf("Reports generated: %s and %s\n", filepath.Base(taskPath), filepath.Base(userPath))
	return nil
}

func (c *Console) displayStatistics(s *tracker.Session) error {
	taskOverview, userOverview, generated, err := s.Statistics()
	if generated {
		c.println("Reports not found. Generating now...")
	}
	if err != nil {
		return err
	}
	c.println("\n=== Task Overview ===")
	c.println(taskOverview)
	c.println("\n=== User Overview ===")
	c.println(userOverview)
	return nil
}

func (c *Console) printEntry(n int, e tracker.Entry, withOwner bool) {
	c.printf("\nTask %d:\n", n)
	if withOwner {
		c.printf("Assigned to: %s\n", e.Task.Owner)
	}
	c.printf("Title      : %s\n", e.Task.Title)
	c.printf("Description: %s\n", e.Task.Description)
	c.printf("Assigned on: %s\n", e.Task.AssignedDate)
	c.printf("Due date   : %s\n", e.Task.DueDate)
	c.printf("Completed  : %s\n", e.Task.CompletedToken())
	c.println(separator)
}

// selectNumber prompts until the answer is -1 or a number in 1..limit.
func (c *Console) selectNumber(prompt, invalidMsg, rangeMsg string, limit int) (int, error) {
	for {
		answer, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}
		if answer == "-1" {
			return -1, nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil || strings.HasPrefix(answer, "+") || strings.HasPrefix(answer, "-") {
			c.println(invalidMsg)
			continue
		}
		if n < 1 || n > limit {
			c.println(rangeMsg)
			continue
		}
		return n, nil
	}
}

// readLine prints prompt and returns the next input line, trimmed.
// A final line without a newline is returned; after that io.EOF.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if c.lines == nil {
		c.lines = make(chan inputLine)
		go c.readLoop()
	}
	select {
	case <-c.ctx.Done():
		return "", c.ctx.Err()
	case l := <-c.lines:
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// readLoop feeds input lines to readLine until the reader fails or Run returns.
func (c *Console) readLoop() {
	for {
		text, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			select {
			case c.lines <- inputLine{err: err}:
			case <-c.stop:
			}
			return
		}
		select {
		case c.lines <- inputLine{text: text}:
		case <-c.stop:
			return
		}
	}
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}
