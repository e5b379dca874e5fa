package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the watch loop while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestRebuilder(t *testing.T) (*rebuilder, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.c"), "#include \"parts/a.h\"\nint main;\n")
	writeFile(t, filepath.Join(dir, "parts", "a.h"), "int a;\n")
	return &rebuilder{
		cfg:    config.Config{Engine: config.EngineSplice},
		root:   filepath.Join(dir, "main.c"),
		output: filepath.Join(dir, "out", "main.pp"),
		stdout: &lockedBuffer{},
		stderr: &lockedBuffer{},
	}, dir
}

func TestRebuild_WritesOutputAndTracksFiles(t *testing.T) {
	r, dir := newTestRebuilder(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(r.output), 0o755))

	require.NoError(t, r.rebuild(context.Background()))

	data, err := os.ReadFile(r.output)
	require.NoError(t, err)
	assert.Equal(t, "int a;\nint main;\n", string(data))
	assert.True(t, r.files[filepath.Join(dir, "parts", "a.h")])
	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "parts")}, r.dirs())
}

func TestRebuild_StdoutWhenNoOutputFile(t *testing.T) {
	r, _ := newTestRebuilder(t)
	r.output = ""

	require.NoError(t, r.rebuild(context.Background()))

	assert.Equal(t, "int a;\nint main;\n", r.stdout.(*lockedBuffer).String())
}

func TestRebuild_EngineFailureGoesToStderr(t *testing.T) {
	r, dir := newTestRebuilder(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "parts", "a.h")))

	err := r.rebuild(context.Background())

	assert.True(t, isEngineError(err))
	assert.Contains(t, r.stderr.(*lockedBuffer).String(), "failed to open source file: 'parts/a.h'")
}

func TestReport_OutputWriteFailureGoesToStderr(t *testing.T) {
	r, _ := newTestRebuilder(t)
	// the output directory is never created
	err := r.rebuild(context.Background())
	require.Error(t, err)

	r.report(err)

	assert.Contains(t, r.stderr.(*lockedBuffer).String(), "rebuild failed: ")
}

func TestReport_SkipsEngineFailures(t *testing.T) {
	r, dir := newTestRebuilder(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "parts", "a.h")))
	err := r.rebuild(context.Background())
	before := r.stderr.(*lockedBuffer).String()

	r.report(err)
	r.report(nil)

	assert.Equal(t, before, r.stderr.(*lockedBuffer).String())
}

func TestIsRelevantChange(t *testing.T) {
	r := &rebuilder{
		output: "/out/main.pp",
		files:  map[string]bool{"/src/main.c": true, "/src/a.h": true},
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to tracked file", fsnotify.Event{Name: "/src/a.h", Op: fsnotify.Write}, true},
		{"rename of tracked file", fsnotify.Event{Name: "/src/main.c", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "/src/a.h", Op: fsnotify.Chmod}, false},
		{"write to unrelated file", fsnotify.Event{Name: "/src/notes.txt", Op: fsnotify.Write}, false},
		{"create of new file", fsnotify.Event{Name: "/src/b.h", Op: fsnotify.Create}, true},
		{"output file", fsnotify.Event{Name: "/out/main.pp", Op: fsnotify.Create}, false},
		{"output temp file", fsnotify.Event{Name: "/out/.main.pp.tmp", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.isRelevantChange(tt.event))
		})
	}
}

func TestWatchAndRebuild_RerunsOnIncludeChange(t *testing.T) {
	r, dir := newTestRebuilder(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(r.output), 0o755))
	require.NoError(t, r.rebuild(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchAndRebuild(ctx, r) }()
	defer func() {
		cancel()
		<-done
	}()

	// give the watcher time to register before editing
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "parts", "a.h"), "int changed;\n")

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(r.output)
		return err == nil && string(data) == "int changed;\nint main;\n"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.pp")

	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.NoFileExists(t, tempPath(path))
}
