package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/depgraph"
	"github.com/LegacyCodeHQ/ppfront/driver"
	"github.com/LegacyCodeHQ/ppfront/engine/external"
	"github.com/LegacyCodeHQ/ppfront/engine/splice"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(config.Config{Engine: config.EngineSplice})
	require.NoError(t, err)
	assert.IsType(t, &splice.Engine{}, eng)

	eng, err = NewEngine(config.Config{Engine: config.EngineExec, EngineCommand: []string{"mcpp"}, IncludePaths: []string{"/inc"}})
	require.NoError(t, err)
	require.IsType(t, &external.Engine{}, eng)
	assert.Equal(t, []string{"mcpp"}, eng.(*external.Engine).Command)
	assert.Equal(t, []string{"/inc"}, eng.(*external.Engine).IncludePaths)

	_, err = NewEngine(config.Config{Engine: "nope"})
	assert.Error(t, err)
}

func TestNewEngine_WarnsWhenMaskIncludesIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	debuglog.SetOutput(&buf)
	t.Cleanup(func() { debuglog.SetOutput(os.Stderr) })

	_, err := NewEngine(config.Config{Engine: config.EngineExec})
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = NewEngine(config.Config{Engine: config.EngineExec, MaskIncludes: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "--mask-includes has no effect with the exec engine")
}

func TestRun_RecordsIncludes(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(root, []byte("#include \"a.h\"\nint x;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.h"), []byte("int a;\n"), 0o644))
	graph := depgraph.NewIncludeGraph(root)

	res, err := Run(context.Background(), config.Config{Engine: config.EngineSplice}, root, graph)

	require.NoError(t, err)
	assert.Equal(t, "int a;\nint x;\n", string(res.Output))
	assert.Equal(t, []string{root, filepath.Join(dir, "a.h")}, graph.Files())
}

func TestWrite_Success(t *testing.T) {
	var out, diag bytes.Buffer

	err := Write(&out, &diag, &driver.Result{Output: []byte("text\n"), Diagnostics: []byte("warning\n")}, nil)

	require.NoError(t, err)
	assert.Equal(t, "text\n", out.String())
	assert.Equal(t, "warning\n", diag.String())
}

func TestWrite_EngineFailureGoesToOutput(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(root, []byte("#include \"gone.h\"\n"), 0o644))
	_, runErr := Run(context.Background(), config.Config{}, root, nil)
	require.Error(t, runErr)

	var out, diag bytes.Buffer
	err := Write(&out, &diag, nil, runErr)

	assert.ErrorIs(t, err, driver.ErrEngineFailure)
	assert.Contains(t, out.String(), "main.c:1:1: error: failed to open source file: 'gone.h'")
	assert.Empty(t, diag.String())
}

func TestWrite_OtherErrorsWriteNothing(t *testing.T) {
	var out, diag bytes.Buffer
	cause := errors.New("boom")

	err := Write(&out, &diag, nil, cause)

	assert.Same(t, cause, err)
	assert.Empty(t, out.String())
}
