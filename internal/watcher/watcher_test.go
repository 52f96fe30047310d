package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) onChange(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, files []string, rec *recorder) *Watcher {
	t.Helper()
	w, err := NewWatcher(files, rec.onChange, WithDebounce(100*time.Millisecond), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	writeFile(t, path, "[]")

	rec := &recorder{}
	startWatcher(t, []string{path}, rec)

	for i := 0; i < 5; i++ {
		writeFile(t, path, "- name: x\n")
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(400 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected one debounced callback, got %v", got)
	}
	if got[0] != path {
		t.Errorf("callback path = %q, want %q", got[0], path)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	writeFile(t, path, "[]")

	rec := &recorder{}
	startWatcher(t, []string{path}, rec)

	writeFile(t, filepath.Join(dir, "other.yaml"), "[]")
	time.Sleep(300 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("expected no callbacks, got %v", got)
	}
}

func TestWatcher_ReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	writeFile(t, path, "[]")

	rec := &recorder{}
	startWatcher(t, []string{path}, rec)

	tmp := filepath.Join(dir, ".catalog.json.tmp")
	writeFile(t, tmp, `[{"name": "x"}]`)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("expected one callback after rename, got %v", got)
	}
}

func TestWatcher_StopDropsPending(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	writeFile(t, path, "[]")

	rec := &recorder{}
	w := startWatcher(t, []string{path}, rec)

	writeFile(t, path, "- name: y\n")
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	w.Stop()
	time.Sleep(250 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("expected no callbacks after Stop, got %v", got)
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing", "catalog.yaml")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error watching a missing directory")
	}
}

func TestNewWatcher_ResolvesPaths(t *testing.T) {
	w, err := NewWatcher([]string{"catalog.yaml", "./catalog.yaml"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	files := w.Files()
	if len(files) != 1 || !filepath.IsAbs(files[0]) {
		t.Errorf("Files() = %v, want one absolute path", files)
	}
}
