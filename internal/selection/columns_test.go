package selection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeColumnFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "columns")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write column file: %v", err)
	}
	return path
}

func TestReadColumnSet(t *testing.T) {
	t.Parallel()

	// Ordinal plus rank, best-ranked first; only the first N lines count.
	path := writeColumnFile(t, "7,0.93", "3,0.80", "5,0.41", "6,0.12")

	got, err := ReadColumnSet(path, 3, 10, 1, 2)
	if err != nil {
		t.Fatalf("ReadColumnSet: %v", err)
	}
	want := []int{7, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}
}

func TestReadColumnSet_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		lines      []string
		count      int
		wantSubstr string
	}{
		{"not an integer", []string{"x,0.9"}, 1, "not an integer"},
		{"out of range", []string{"11,0.9"}, 1, "out of range"},
		{"zero ordinal", []string{"0,0.9"}, 1, "out of range"},
		{"case column", []string{"1,0.9"}, 1, "case column"},
		{"outcome column", []string{"2,0.9"}, 1, "outcome column"},
		{"duplicate", []string{"4,0.9", "4,0.8"}, 2, "already appeared"},
		{"too few lines", []string{"4,0.9"}, 2, "usable lines"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeColumnFile(t, tc.lines...)
			_, err := ReadColumnSet(path, tc.count, 10, 1, 2)
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("error %q does not mention %q", err, tc.wantSubstr)
			}
		})
	}
}
