// Package config collects run settings from flags, an optional
// ppfront.yaml file and PPFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EngineSplice = "splice"
	EngineExec   = "exec"
)

// Flag and key names.
const (
	KeyInclude      = "include"
	KeyDefine       = "define"
	KeyIgnore       = "ignore"
	KeyEngine       = "engine"
	KeyEngineCmd    = "engine-cmd"
	KeyMaskIncludes = "mask-includes"
	KeyVerbose      = "verbose"
	KeyConfig       = "config"
)

var ErrInvalidDefine = errors.New("invalid define")

// Config holds the settings shared by every command.
type Config struct {
	IncludePaths  []string
	Defines       map[string]string
	Ignore        []string
	Engine        string
	EngineCommand []string
	MaskIncludes  bool
	Verbose       bool
	// File is the config file that was read, if any.
	File string
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringArrayP(KeyInclude, "I", nil, "Add a directory to the system include search path (repeatable)")
	fs.StringArrayP(KeyDefine, "D", nil, "Define a macro as NAME or NAME=VALUE (repeatable)")
	fs.StringArray(KeyIgnore, nil, "Directive keyword to pass through untouched, e.g. pragma (repeatable)")
	fs.String(KeyEngine, EngineSplice, "Directive engine: splice or exec")
	fs.StringArray(KeyEngineCmd, nil, "Command line for the exec engine, one argument per flag")
	fs.Bool(KeyMaskIncludes, false, "Strip comments and mask ignored directives in included files too")
	fs.String(KeyConfig, "", "Config file (default ./ppfront.yaml or ~/.config/ppfront/ppfront.yaml)")
	fs.BoolP(KeyVerbose, "v", false, "Log include resolution to stderr")
}

// Load reads the configuration, with flags set on fs taking precedence over
// the environment, which takes precedence over the config file.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault(KeyEngine, EngineSplice)
	v.SetDefault(KeyMaskIncludes, false)
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix("PPFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{KeyInclude, KeyDefine, KeyIgnore, KeyEngine, KeyEngineCmd, KeyMaskIncludes, KeyVerbose} {
		if flag := fs.Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, err
			}
		}
	}

	configFile := ""
	if flag := fs.Lookup(KeyConfig); flag != nil {
		configFile = flag.Value.String()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ppfront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ppfront"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Engine:        strings.TrimSpace(v.GetString(KeyEngine)),
		EngineCommand: v.GetStringSlice(KeyEngineCmd),
		Ignore:        v.GetStringSlice(KeyIgnore),
		MaskIncludes:  v.GetBool(KeyMaskIncludes),
		Verbose:       v.GetBool(KeyVerbose),
		File:          v.ConfigFileUsed(),
	}
	if cfg.Engine != EngineSplice && cfg.Engine != EngineExec {
		return Config{}, fmt.Errorf("unknown engine %q (valid options: %s, %s)", cfg.Engine, EngineSplice, EngineExec)
	}

	for _, dir := range v.GetStringSlice(KeyInclude) {
		if dir = CleanIncludePath(dir); dir != "" {
			cfg.IncludePaths = append(cfg.IncludePaths, dir)
		}
	}

	cfg.Defines = make(map[string]string)
	for _, raw := range v.GetStringSlice(KeyDefine) {
		name, value, err := ParseDefine(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Defines[name] = value
	}

	return cfg, nil
}

// ParseDefine splits NAME[=VALUE] at the first '='.
func ParseDefine(raw string) (string, string, error) {
	name, value, _ := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDefine, raw)
	}
	return name, value, nil
}

// CleanIncludePath trims whitespace and one pair of surrounding quotes.
func CleanIncludePath(dir string) string {
	dir = strings.TrimSpace(dir)
	if len(dir) >= 2 {
		first, last := dir[0], dir[len(dir)-1]
		if first == last && (first == '"' || first == '\'') {
			dir = strings.TrimSpace(dir[1 : len(dir)-1])
		}
	}
	return dir
}
