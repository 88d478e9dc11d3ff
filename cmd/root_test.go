// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

var taskmgrEnv = []string{
	"TASKMGR_DATA_DIR", "TASKMGR_USERS_FILE", "TASKMGR_TASKS_FILE",
	"TASKMGR_TASK_OVERVIEW_FILE", "TASKMGR_USER_OVERVIEW_FILE", "TASKMGR_ADMIN_USER",
	"TASKMGR_LOG_DIR", "TASKMGR_AUDIT_LOG", "TASKMGR_LOG_LEVEL", "TASKMGR_LOG_FORMAT",
	"TASKMGR_LOG_TIMESTAMPS", "TASKMGR_LOG_CALLER", "TASKMGR_REPORT_FORMAT",
	"TASKMGR_BOARD_REFRESH_SECONDS",
}

// workspace isolates HOME, the working directory and TASKMGR_* variables,
// and seeds a data directory with two users.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range taskmgrEnv {
		t.Setenv(k, "")
	}
	t.Setenv("TASKMGR_LOG_DIR", filepath.Join(dir, "logs"))
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatal(err)
		}
	})
	writeFile(t, filepath.Join(dir, "user.txt"), "admin, admin123\nbob, pw1\n")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// execute runs the CLI with stdin and returns stdout, stderr and the error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, streams{in: strings.NewReader(stdin), out: &out, errOut: &errOut})
	return out.String(), errOut.String(), err
}

const sampleTasks = "bob,Write report,Quarterly, with charts,2024-06-01,2024-06-10,No\n" +
	"admin,Review,Check PRs,2024-06-01,2099-07-01,Yes\n"

func TestRun(t *testing.T) {
	t.Run("version command", func(t *testing.T) {
		workspace(t)
		out, _, err := execute(t, "", "version")
		if err != nil {
			t.Fatalf("version: %v", err)
		}
		if out != "taskmgr version dev\n" {
			t.Errorf("output: got %q", out)
		}
	})

	t.Run("version flag", func(t *testing.T) {
		workspace(t)
		out, _, err := execute(t, "", "--version")
		if err != nil {
			t.Fatalf("--version: %v", err)
		}
		if !strings.Contains(out, "taskmgr version dev") {
			t.Errorf("output: got %q", out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		workspace(t)
		_, _, err := execute(t, "", "unknown-command")
		if err == nil {
			t.Fatal("expected error for unknown command, got nil")
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("bad config is reported", func(t *testing.T) {
		workspace(t)
		_, _, err := execute(t, "", "report", "--log-level", "loud")
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestSessionCommand(t *testing.T) {
	dir := workspace(t)
	input := strings.Join([]string{
		"admin", "admin123",
		"a", "Bob", "Write docs", "API, CLI", "2099-01-01",
		"e",
	}, "\n") + "\n"

	// no subcommand runs the session
	out, logs, err := execute(t, input)
	if err != nil {
		t.Fatalf("session: %v\n%s", err, out)
	}
	for _, want := range []string{"Welcome to the Task Manager!", "Task 'Write docs' assigned to bob.", "Goodbye!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	tasks := readFile(t, filepath.Join(dir, "tasks.txt"))
	if !strings.HasPrefix(tasks, "bob,Write docs,API, CLI,") || !strings.HasSuffix(tasks, ",2099-01-01,No\n") {
		t.Errorf("tasks.txt: %q", tasks)
	}

	history, _, err := execute(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(history), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("history line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 || events[0]["msg"] != "login" || events[1]["msg"] != "add" {
		t.Errorf("events: %v", events)
	}
	if events[1]["owner"] != "bob" || events[1]["user"] != "admin" {
		t.Errorf("add event: %v", events[1])
	}
	sessionID, _ := events[0]["session"].(string)
	if sessionID == "" || events[1]["session"] != sessionID {
		t.Errorf("session ids: %v", events)
	}
	if !strings.Contains(logs, "session="+sessionID) {
		t.Errorf("console log missing session %s: %q", sessionID, logs)
	}

	last, _, err := execute(t, "", "history", "-n", "1")
	if err != nil {
		t.Fatalf("history -n 1: %v", err)
	}
	if strings.Count(last, "\n") != 1 || !strings.Contains(last, `"add"`) {
		t.Errorf("history -n 1: %q", last)
	}
}

func TestSessionWithoutAuditLog(t *testing.T) {
	dir := workspace(t)
	_, _, err := execute(t, "admin\nadmin123\ne\n", "session", "--audit-log=false")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Errorf("log dir should not exist, stat err = %v", err)
	}

	out, _, err := execute(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if out != "No session logs found.\n" {
		t.Errorf("history: %q", out)
	}
}

func TestReportCommand(t *testing.T) {
	t.Run("text writes files", func(t *testing.T) {
		dir := workspace(t)
		writeFile(t, filepath.Join(dir, "tasks.txt"), sampleTasks)

		out, _, err := execute(t, "", "report")
		if err != nil {
			t.Fatalf("report: %v", err)
		}
		for _, want := range []string{"=== Task Overview ===", "Total tasks: 2", "=== User Overview ===", "User: bob"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
		overview := readFile(t, filepath.Join(dir, "task_overview.txt"))
		if !strings.Contains(overview, "Percentage of tasks incomplete: 50.00%") {
			t.Errorf("task_overview.txt: %q", overview)
		}
	})

	t.Run("json", func(t *testing.T) {
		dir := workspace(t)
		writeFile(t, filepath.Join(dir, "tasks.txt"), sampleTasks)

		out, _, err := execute(t, "", "report", "--format", "json", "--no-write")
		if err != nil {
			t.Fatalf("report: %v", err)
		}
		var doc struct {
			TotalUsers int `json:"total_users"`
			Tasks      struct {
				TotalTasks int `json:"total_tasks"`
			} `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if doc.TotalUsers != 2 || doc.Tasks.TotalTasks != 2 {
			t.Errorf("doc: %+v", doc)
		}
		if _, err := os.Stat(filepath.Join(dir, "task_overview.txt")); !os.IsNotExist(err) {
			t.Error("--no-write still wrote task_overview.txt")
		}
	})

	t.Run("yaml from config", func(t *testing.T) {
		dir := workspace(t)
		writeFile(t, filepath.Join(dir, "tasks.txt"), sampleTasks)
		t.Setenv("TASKMGR_REPORT_FORMAT", "yaml")

		out, _, err := execute(t, "", "report")
		if err != nil {
			t.Fatalf("report: %v", err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if doc["total_users"] != 2 {
			t.Errorf("total_users: got %v", doc["total_users"])
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		workspace(t)
		if _, _, err := execute(t, "", "report", "--format", "csv"); err == nil {
			t.Error("expected error for csv")
		}
	})
}

func TestDoctorCommand(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		dir := workspace(t)
		writeFile(t, filepath.Join(dir, "tasks.txt"), sampleTasks)

		out, _, err := execute(t, "", "doctor", "-v")
		if err != nil {
			t.Fatalf("doctor: %v\n%s", err, out)
		}
		for _, want := range []string{"✅ 2 users", "✅ 2 tasks", "✅ Valid", "1. [No] bob: Write report", "✅ All checks passed!"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
	})

	t.Run("problems", func(t *testing.T) {
		dir := workspace(t)
		writeFile(t, filepath.Join(dir, "tasks.txt"), sampleTasks+
			"short,line\n"+
			"carol,Ghost,Nobody,2024-06-01,2024-02-30,Maybe\n")

		out, _, err := execute(t, "", "doctor")
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Fatalf("expected doctor failure, got %v", err)
		}
		for _, want := range []string{"Line 3: malformed record", "❌ Validation failed:", `"carol"`} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
	})

	t.Run("missing files are not created", func(t *testing.T) {
		dir := workspace(t)
		if err := os.Remove(filepath.Join(dir, "user.txt")); err != nil {
			t.Fatal(err)
		}
		out, _, err := execute(t, "", "doctor")
		if err != nil {
			t.Fatalf("doctor: %v\n%s", err, out)
		}
		if strings.Count(out, "Not found") != 2 {
			t.Errorf("expected two missing stores\n%s", out)
		}
		for _, name := range []string{"user.txt", "tasks.txt"} {
			if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
				t.Errorf("%s was created", name)
			}
		}
	})
}

func TestConfigCommand(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		workspace(t)
		out, _, err := execute(t, "", "config", "--admin", "root")
		if err != nil {
			t.Fatalf("config: %v", err)
		}
		for _, want := range []string{"# no config files loaded", "admin_user", "= root", "(flag)", "(environment)", "(default)"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
	})

	t.Run("example", func(t *testing.T) {
		workspace(t)
		out, _, err := execute(t, "", "config", "--example")
		if err != nil {
			t.Fatalf("config --example: %v", err)
		}
		if !strings.Contains(out, `tasks_file = "tasks.txt"`) {
			t.Errorf("example: %q", out)
		}
	})
}

func TestBoardRequiresTTY(t *testing.T) {
	workspace(t)
	_, _, err := execute(t, "", "board")
	if err == nil {
		t.Skip("stdout is a terminal")
	}
	if !strings.Contains(err.Error(), "TTY") {
		t.Errorf("board: got %v", err)
	}

	if _, _, err := execute(t, "", "board", "--filter", "later"); err == nil || !strings.Contains(err.Error(), "unknown filter") {
		t.Errorf("bad filter: got %v", err)
	}
}
