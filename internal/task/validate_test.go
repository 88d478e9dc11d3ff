package task

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := Record{Owner: "bob", Title: "T", Description: "d, e", AssignedDate: "2024-01-01", DueDate: "2024-02-01", Completed: "no"}

	tests := []struct {
		name      string
		records   []Record
		wantValid bool
		wantPath  string
	}{
		{name: "valid records", records: []Record{valid}, wantValid: true},
		{name: "no records", records: nil, wantValid: true},
		{
			name: "invalid due date",
			records: []Record{valid, func() Record {
				r := valid
				r.DueDate = "2023-02-30"
				return r
			}()},
			wantValid: false,
			wantPath:  "tasks[1].due_date",
		},
		{
			name: "bad completion token",
			records: []Record{func() Record {
				r := valid
				r.Completed = "done"
				return r
			}()},
			wantValid: false,
			wantPath:  "tasks[0].completed",
		},
		{
			name: "uppercase owner",
			records: []Record{func() Record {
				r := valid
				r.Owner = "Bob"
				return r
			}()},
			wantValid: false,
			wantPath:  "tasks[0].owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.records, ValidationOptions{})
			if result.Valid != tt.wantValid {
				t.Fatalf("Valid: got %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantPath == "" {
				return
			}
			found := false
			for _, err := range result.Errors {
				if strings.HasPrefix(err.Error(), tt.wantPath) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error at %s, got %v", tt.wantPath, result.Errors)
			}
		})
	}
}

func TestValidateUnknownOwner(t *testing.T) {
	records := []Record{
		{Owner: "bob", Title: "T", AssignedDate: "2024-01-01", DueDate: "2024-02-01", Completed: "No"},
		{Owner: "ghost", Title: "T", AssignedDate: "2024-01-01", DueDate: "2024-02-01", Completed: "No"},
	}
	result := Validate(records, ValidationOptions{
		KnownUser: func(name string) bool { return name == "bob" },
	})
	if !result.Valid {
		t.Fatalf("expected valid, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "ghost") {
		t.Errorf("Warnings: got %v", result.Warnings)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"/":                  "",
		"/tasks":             "tasks",
		"/tasks/0/due_date":  "tasks[0].due_date",
		"#/tasks/12/owner":   "tasks[12].owner",
		"/a~1b/c~0d":         "a/b.c~d",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", in, got, want)
		}
	}
}
