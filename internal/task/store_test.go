package task

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func sampleTasks() []Task {
	return []Task{
		{Owner: "admin", Title: "One", Description: "first", AssignedDate: "2024-01-01", DueDate: "2024-02-01"},
		{Owner: "bob", Title: "Two", Description: "second, with comma", AssignedDate: "2024-01-02", DueDate: "2024-02-02"},
		{Owner: "bob", Title: "Three", Description: "third", AssignedDate: "2024-01-03", DueDate: "2024-02-03", Completed: true},
	}
}

func TestLoadAllMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tasks.txt")
	store := NewStore(path, nil)

	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected task file to be created: %v", err)
	}
}

func TestSaveAllAndLoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	store := NewStore(path, nil)

	if err := store.SaveAll(sampleTasks()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "admin,One,first,2024-01-01,2024-02-01,No\n" +
		"bob,Two,second, with comma,2024-01-02,2024-02-02,No\n" +
		"bob,Three,third,2024-01-03,2024-02-03,Yes\n"
	if string(content) != want {
		t.Errorf("file content:\ngot  %q\nwant %q", content, want)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("Tasks count: got %d, want 3", len(loaded))
	}
	for i, want := range sampleTasks() {
		if loaded[i] != want {
			t.Errorf("task %d: got %+v, want %+v", i, loaded[i], want)
		}
	}
}

func TestLoadAllSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	writeFile(t, path, "admin,One,first,2024-01-01,2024-02-01,No\n"+
		"broken,line\n"+
		"\n"+
		"bob,Two,second,2024-01-02,2024-02-02,Yes\n")

	store := NewStore(path, nil)
	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Tasks count: got %d, want 2", len(tasks))
	}
	if tasks[1].Owner != "bob" || !tasks[1].Completed {
		t.Errorf("second task: got %+v", tasks[1])
	}

	result, err := store.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != 2 {
		t.Errorf("Skipped: got %v, want [2]", result.Skipped)
	}
}

func TestLoadAllLongDescription(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "tasks.txt"), nil)
	long := strings.Repeat("d", 2<<20)
	if err := store.Append(Task{Owner: "admin", Title: "Big", Description: long, AssignedDate: "2024-01-01", DueDate: "2024-02-01"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(sampleTasks()[0]); err != nil {
		t.Fatalf("Append after long line failed: %v", err)
	}

	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Tasks count: got %d, want 2", len(tasks))
	}
	if len(tasks[0].Description) != len(long) {
		t.Errorf("Description length: got %d, want %d", len(tasks[0].Description), len(long))
	}
}

func TestAppend(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "tasks.txt"), nil)
	for _, task := range sampleTasks() {
		if err := store.Append(task); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	tasks, err := store.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 || tasks[2].Title != "Three" {
		t.Errorf("unexpected tasks after append: %+v", tasks)
	}
}

func TestUpdate(t *testing.T) {
	t.Run("applies mutation", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "tasks.txt"), nil)
		if err := store.SaveAll(sampleTasks()); err != nil {
			t.Fatal(err)
		}

		updated, err := store.Update(1, func(task *Task) error {
			task.Completed = true
			return nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !updated.Completed {
			t.Error("expected returned task to be completed")
		}

		tasks, _ := store.LoadAll()
		if !tasks[1].Completed {
			t.Error("expected persisted task to be completed")
		}
	})

	t.Run("mutator error writes nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.txt")
		store := NewStore(path, nil)
		if err := store.SaveAll(sampleTasks()); err != nil {
			t.Fatal(err)
		}
		before, _ := os.ReadFile(path)

		sentinel := errors.New("rejected")
		_, err := store.Update(0, func(task *Task) error {
			task.Owner = "changed"
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}

		after, _ := os.ReadFile(path)
		if string(before) != string(after) {
			t.Error("task file changed after rejected mutation")
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "tasks.txt"), nil)
		if err := store.SaveAll(sampleTasks()); err != nil {
			t.Fatal(err)
		}
		for _, idx := range []int{-1, 3, 10} {
			_, err := store.Update(idx, func(*Task) error { return nil })
			var rangeErr *IndexOutOfRangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("Update(%d): expected IndexOutOfRangeError, got %v", idx, err)
				continue
			}
			if rangeErr.Len != 3 {
				t.Errorf("Len: got %d, want 3", rangeErr.Len)
			}
		}
	})
}

func TestDelete(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "tasks.txt"), nil)
	if err := store.SaveAll(sampleTasks()); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Delete(0)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed.Title != "One" {
		t.Errorf("removed: got %q, want One", removed.Title)
	}

	tasks, _ := store.LoadAll()
	if len(tasks) != 2 {
		t.Fatalf("Tasks count: got %d, want 2", len(tasks))
	}
	if tasks[0].Title != "Two" || tasks[1].Title != "Three" {
		t.Errorf("tasks did not shift down: %+v", tasks)
	}

	_, err = store.Delete(2)
	var rangeErr *IndexOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("expected IndexOutOfRangeError, got %v", err)
	}
}
