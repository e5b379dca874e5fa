package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	// keep the user's config out of the test
	t.Setenv("HOME", t.TempDir())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(parse(t))

	require.NoError(t, err)
	assert.Equal(t, EngineSplice, cfg.Engine)
	assert.Empty(t, cfg.IncludePaths)
	assert.Empty(t, cfg.Defines)
	assert.False(t, cfg.MaskIncludes)
	assert.False(t, cfg.Verbose)
}

func TestLoad_Flags(t *testing.T) {
	fs := parse(t,
		"-I", "inc", "--include", ` "third party" `,
		"-D", "A=1", "-D", "B", "-D", "A=2", "-D", "EQ=x=y",
		"--ignore", "pragma", "--ignore", "#error",
		"--engine", "exec", "--engine-cmd", "cpp", "--engine-cmd", "-E",
		"--mask-includes", "-v",
	)

	cfg, err := Load(fs)

	require.NoError(t, err)
	assert.Equal(t, []string{"inc", "third party"}, cfg.IncludePaths)
	assert.Equal(t, map[string]string{"A": "2", "B": "", "EQ": "x=y"}, cfg.Defines)
	assert.Equal(t, []string{"pragma", "#error"}, cfg.Ignore)
	assert.Equal(t, EngineExec, cfg.Engine)
	assert.Equal(t, []string{"cpp", "-E"}, cfg.EngineCommand)
	assert.True(t, cfg.MaskIncludes)
	assert.True(t, cfg.Verbose)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("include:\n  - /opt/inc\ndefine:\n  - MODE=fast\nignore:\n  - pragma\nmask-includes: true\n"), 0o644))

	cfg, err := Load(parse(t, "--config", path, "-D", "EXTRA"))

	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, []string{"/opt/inc"}, cfg.IncludePaths)
	assert.Equal(t, map[string]string{"EXTRA": ""}, cfg.Defines, "flags replace file lists")
	assert.Equal(t, []string{"pragma"}, cfg.Ignore)
	assert.True(t, cfg.MaskIncludes)
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	_, err := Load(parse(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))

	assert.ErrorContains(t, err, "read config")
}

func TestLoad_Environment(t *testing.T) {
	fs := parse(t)
	t.Setenv("PPFRONT_ENGINE", "exec")
	t.Setenv("PPFRONT_MASK_INCLUDES", "true")

	cfg, err := Load(fs)

	require.NoError(t, err)
	assert.Equal(t, EngineExec, cfg.Engine)
	assert.True(t, cfg.MaskIncludes)
}

func TestLoad_UnknownEngine(t *testing.T) {
	_, err := Load(parse(t, "--engine", "gcc"))

	assert.ErrorContains(t, err, `unknown engine "gcc"`)
}

func TestLoad_InvalidDefine(t *testing.T) {
	_, err := Load(parse(t, "-D", "=1"))

	assert.ErrorIs(t, err, ErrInvalidDefine)
}

func TestParseDefine(t *testing.T) {
	tests := []struct {
		raw, name, value string
	}{
		{"X", "X", ""},
		{"X=1", "X", "1"},
		{"X=", "X", ""},
		{"X=a=b", "X", "a=b"},
		{" X =1", "X", "1"},
	}
	for _, tt := range tests {
		name, value, err := ParseDefine(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.name, name, tt.raw)
		assert.Equal(t, tt.value, value, tt.raw)
	}

	for _, bad := range []string{"", "=1", "A B=1"} {
		_, _, err := ParseDefine(bad)
		assert.ErrorIs(t, err, ErrInvalidDefine, bad)
	}
}

func TestCleanIncludePath(t *testing.T) {
	assert.Equal(t, "inc", CleanIncludePath("  inc "))
	assert.Equal(t, "my dir", CleanIncludePath(`"my dir"`))
	assert.Equal(t, "x", CleanIncludePath("'x'"))
	assert.Equal(t, `"x'`, CleanIncludePath(`"x'`))
	assert.Equal(t, "", CleanIncludePath("  "))
}
