package observer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestCorpusWatcher_NewMatchingFiles(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 1)

	cw, err := NewCorpusWatcher(dir, "*.bnet", func(files []string) {
		mu.Lock()
		got = append(got, files...)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer cw.Stop()

	cw.SetDebounce(50 * time.Millisecond)
	cw.Start(context.Background())

	if err := os.WriteFile(filepath.Join(dir, "net_1.bnet"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "net_2.bnet"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}

	// A second flush may still be pending for the later write.
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	bases := make([]string, 0, len(got))
	for _, f := range got {
		bases = append(bases, filepath.Base(f))
	}
	sort.Strings(bases)

	if len(bases) == 0 {
		t.Fatal("no files reported")
	}
	for _, b := range bases {
		if b == "ignore.txt" {
			t.Error("non-matching file was reported")
		}
	}
}

func TestCorpusWatcher_MissingFolder(t *testing.T) {
	_, err := NewCorpusWatcher(filepath.Join(t.TempDir(), "nope"), "*", nil)
	if err == nil {
		t.Error("watching a missing folder should fail")
	}
}
