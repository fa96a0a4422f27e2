package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunDirName(t *testing.T) {
	tests := []struct {
		seq   int
		input string
		want  string
	}{
		{1, "/corpus/a.txt", "0001_a"},
		{42, "/corpus/net_042.bnet", "0042_net_042"},
		{1234, "noext", "1234_noext"},
	}

	for _, tt := range tests {
		got := RunDirName(tt.seq, tt.input)
		if got != tt.want {
			t.Errorf("RunDirName(%d, %q) = %q, want %q", tt.seq, tt.input, got, tt.want)
		}
	}
}

func TestWriteAndReadStatus(t *testing.T) {
	batchDir := t.TempDir()
	runDir, err := CreateRunDir(batchDir, 3, "/corpus/b.txt")
	if err != nil {
		t.Fatal(err)
	}

	started := time.Now().Add(-2 * time.Second).Round(time.Second)
	finished := time.Now().Round(time.Second)
	st := Status{
		Input:       "/corpus/b.txt",
		Outcome:     "timed_out",
		ElapsedSecs: 5.0,
		StartedAt:   started,
		FinishedAt:  finished,
	}

	if err := Write(runDir, []byte("partial output\n"), []byte("solver killed\n"), st); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(filepath.Join(runDir, StdoutFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "partial output\n" {
		t.Errorf("stdout = %q", out)
	}

	got, err := ReadStatus(runDir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != "timed_out" {
		t.Errorf("Outcome = %q, want timed_out", got.Outcome)
	}
	if got.Input != "/corpus/b.txt" {
		t.Errorf("Input = %q, want /corpus/b.txt", got.Input)
	}
	if got.ElapsedSecs != 5.0 {
		t.Errorf("ElapsedSecs = %v, want 5.0", got.ElapsedSecs)
	}
}

func TestCreateRunDir_Nested(t *testing.T) {
	batchDir := filepath.Join(t.TempDir(), "does", "not", "exist")
	dir, err := CreateRunDir(batchDir, 1, "/corpus/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("run dir %q not created: %v", dir, err)
	}
}
