package datadir

import (
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "srv", "tasks.txt")
	tests := []struct {
		name    string
		dataDir string
		file    string
		want    string
	}{
		{"relative under dir", "data", "tasks.txt", filepath.Join("data", "tasks.txt")},
		{"current dir", ".", "tasks.txt", "tasks.txt"},
		{"empty dir", "", "user.txt", "user.txt"},
		{"absolute file", "data", abs, abs},
		{"empty file", "data", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.dataDir, tt.file); got != tt.want {
				t.Errorf("Resolve(%q, %q): got %q, want %q", tt.dataDir, tt.file, got, tt.want)
			}
		})
	}
}
