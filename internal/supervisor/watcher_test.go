package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 150 * time.Millisecond

func startWatcher(t *testing.T, root string, exts ...string) *Watcher {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{Root: root, Extensions: exts, DebounceDelay: testDebounce})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func expectChange(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case path := <-w.Changes():
		return path
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
		return ""
	}
}

func expectQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case path := <-w.Changes():
		t.Fatalf("unexpected change reported: %s", path)
	case <-time.After(3 * testDebounce):
	}
}

func TestWatcher_BurstIsReportedOnce(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, ".go")

	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, "main.go"), "package main // "+time.Now().String())
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, filepath.Join(dir, "main.go"), expectChange(t, w))
	expectQuiet(t, w)
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, ".go")

	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	expectQuiet(t, w)
}

func TestWatcher_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".git")
	require.NoError(t, os.Mkdir(hidden, 0o755))
	w := startWatcher(t, dir, ".go")

	writeFile(t, filepath.Join(hidden, "hook.go"), "package hook")
	expectQuiet(t, w)
}

func TestWatcher_WatchesNestedAndNewDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "internal", "domain")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	w := startWatcher(t, dir, ".go")

	writeFile(t, filepath.Join(nested, "habit.go"), "package domain")
	assert.Equal(t, filepath.Join(nested, "habit.go"), expectChange(t, w))

	created := filepath.Join(dir, "cmd")
	require.NoError(t, os.Mkdir(created, 0o755))
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(created, "main.go"), "package main")
	assert.Equal(t, filepath.Join(created, "main.go"), expectChange(t, w))
}

func TestWatcher_NoExtensionFilterMatchesAll(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	writeFile(t, filepath.Join(dir, ".env"), "GROUP_ID=1")
	assert.Equal(t, filepath.Join(dir, ".env"), expectChange(t, w))
}
