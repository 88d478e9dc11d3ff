package task

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskmgr-go/internal/logging"
)

// IndexOutOfRangeError reports a task index outside [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("task index %d out of range [0, %d)", e.Index, e.Len)
}

// Store persists the ordered task list to a single file.
type Store struct {
	path   string
	logger *log.Logger
}

// ScanResult is the outcome of reading the task file.
type ScanResult struct {
	Records []Record
	// Skipped holds 1-based line numbers of malformed lines.
	Skipped []int
}

// Tasks converts the scanned records to tasks.
func (r *ScanResult) Tasks() []Task {
	tasks := make([]Task, 0, len(r.Records))
	for _, rec := range r.Records {
		tasks = append(tasks, rec.Task())
	}
	return tasks
}

// NewStore returns a store backed by path. A nil logger discards output.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Scan reads every line of the task file. A missing file is created empty.
func (s *Store) Scan() (*ScanResult, error) {
	result := &ScanResult{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read task file: %w", err)
		}
		if err := s.create(); err != nil {
			return nil, err
		}
		return result, nil
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			s.logger.Debug("skipping task line", "line", i+1, "err", err)
			result.Skipped = append(result.Skipped, i+1)
			continue
		}
		result.Records = append(result.Records, rec)
	}

	s.logger.Debug("loaded tasks", "path", s.path, "count", len(result.Records), "skipped", len(result.Skipped))
	return result, nil
}

// LoadAll returns every well-formed task in file order.
func (s *Store) LoadAll() ([]Task, error) {
	result, err := s.Scan()
	if err != nil {
		return nil, err
	}
	return result.Tasks(), nil
}

// SaveAll replaces the task file with tasks, one line each, in order.
func (s *Store) SaveAll(tasks []Task) error {
	var buf bytes.Buffer
	for _, t := range tasks {
		buf.WriteString(Encode(t))
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create task dir: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}

	s.logger.Debug("rewrote task file", "path", s.path, "count", len(tasks))
	return nil
}

// Append adds t to the end of the list.
func (s *Store) Append(t Task) error {
	tasks, err := s.LoadAll()
	if err != nil {
		return err
	}
	tasks = append(tasks, t)
	return s.SaveAll(tasks)
}

// Update applies mutate to the task at index and saves the list. If mutate
// returns an error nothing is written and the error is returned unchanged.
func (s *Store) Update(index int, mutate func(*Task) error) (Task, error) {
	tasks, err := s.LoadAll()
	if err != nil {
		return Task{}, err
	}
	if index < 0 || index >= len(tasks) {
		return Task{}, &IndexOutOfRangeError{Index: index, Len: len(tasks)}
	}

	updated := tasks[index]
	if err := mutate(&updated); err != nil {
		return tasks[index], err
	}
	tasks[index] = updated

	if err := s.SaveAll(tasks); err != nil {
		return Task{}, err
	}
	return updated, nil
}

// Delete removes the task at index, shifting later tasks down by one,
// and returns the removed task.
func (s *Store) Delete(index int) (Task, error) {
	tasks, err := s.LoadAll()
	if err != nil {
		return Task{}, err
	}
	if index < 0 || index >= len(tasks) {
		return Task{}, &IndexOutOfRangeError{Index: index, Len: len(tasks)}
	}

	removed := tasks[index]
	tasks = append(tasks[:index], tasks[index+1:]...)

	if err := s.SaveAll(tasks); err != nil {
		return Task{}, err
	}
	return removed, nil
}

func (s *Store) create() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create task dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create task file: %w", err)
	}
	return f.Close()
}
