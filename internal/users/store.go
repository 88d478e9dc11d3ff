// Package users loads and persists the username/password credential store.
//
// The store file holds one user per line as "username, password". Usernames
// are case-insensitive and kept lowercase; lines without a comma are ignored.
// The in-memory mapping is only ever replaced wholesale by Load, including
// after every registration, so it cannot drift from the file.
package users

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskmgr-go/internal/logging"
)

var (
	// ErrEmptyUsername is returned when registering a blank username.
	ErrEmptyUsername = errors.New("username cannot be empty")
	// ErrInvalidUsername is returned for usernames containing the field delimiter.
	ErrInvalidUsername = errors.New("username cannot contain a comma")
)

// DuplicateUserError reports a registration for an existing username.
type DuplicateUserError struct {
	Username string
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("user %q already exists", e.Username)
}

// Store owns the credential mapping.
type Store struct {
	path   string
	logger *log.Logger
	users  map[string]string
}

// Open creates a store for path and loads it.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Store{path: path, logger: logger, users: map[string]string{}}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Normalize returns the canonical form of a username.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Load replaces the in-memory mapping with the file contents. A missing
// file is created empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read user file: %w", err)
		}
		if err := s.create(); err != nil {
			return err
		}
		s.users = map[string]string{}
		return nil
	}

	s.users = parse(string(data))
	s.logger.Debug("loaded users", "path", s.path, "count", len(s.users))
	return nil
}

func parse(content string) map[string]string {
	users := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, password, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		users[Normalize(name)] = strings.TrimSpace(password)
	}
	return users
}

// Register appends a new user and reloads the store.
func (s *Store) Register(username, password string) error {
	name := Normalize(username)
	if name == "" {
		return ErrEmptyUsername
	}
	if strings.Contains(name, ",") {
		return ErrInvalidUsername
	}
	if s.Exists(name) {
		return &DuplicateUserError{Username: name}
	}

	if err := s.appendLine(fmt.Sprintf("%s, %s", name, strings.TrimSpace(password))); err != nil {
		return err
	}
	s.logger.Debug("registered user", "user", name)
	return s.Load()
}

// Authenticate reports whether username exists and password matches exactly.
func (s *Store) Authenticate(username, password string) bool {
	stored, ok := s.users[Normalize(username)]
	return ok && stored == password
}

// Exists reports whether username is registered.
func (s *Store) Exists(username string) bool {
	_, ok := s.users[Normalize(username)]
	return ok
}

// Usernames returns every username sorted ascending.
func (s *Store) Usernames() []string {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered users.
func (s *Store) Len() int {
	return len(s.users)
}

func (s *Store) appendLine(line string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	prefix := ""
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		last, err := lastByte(s.path, info.Size())
		if err != nil {
			return err
		}
		if last != '\n' {
			prefix = "\n"
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open user file: %w", err)
	}
	if _, err := f.WriteString(prefix + line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write user file: %w", err)
	}
	return f.Close()
}

func lastByte(path string, size int64) (byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open user file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, size-1); err != nil {
		return 0, fmt.Errorf("read user file: %w", err)
	}
	return buf[0], nil
}

func (s *Store) create() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create user file: %w", err)
	}
	return f.Close()
}
