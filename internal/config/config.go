// Package config loads codeact.toml / codeact.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"codeact/internal/codeaction"
	"codeact/internal/trace"
)

// FileNames are searched in order in every directory.
var FileNames = []string{"codeact.toml", "codeact.yaml", "codeact.yml"}

type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path      string          `toml:"-" yaml:"-"`
	Providers ProvidersConfig `toml:"providers" yaml:"providers"`
	Pipeline  PipelineConfig  `toml:"pipeline" yaml:"pipeline"`
	Trace     TraceConfig     `toml:"trace" yaml:"trace"`
	Lint      LintConfig      `toml:"lint" yaml:"lint"`
}

type ProvidersConfig struct {
	// Disallow lists fully-qualified provider identities to skip.
	Disallow []string `toml:"disallow" yaml:"disallow"`
}

type PipelineConfig struct {
	Parallel bool `toml:"parallel" yaml:"parallel"`
	Jobs     int  `toml:"jobs" yaml:"jobs"`
}

type TraceConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Mode   string `toml:"mode" yaml:"mode"`
	Output string `toml:"output" yaml:"output"`
}

type LintConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics" yaml:"max_diagnostics"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Trace: TraceConfig{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Find walks from startDir up to the filesystem root looking for a config file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and reads the config for startDir. Without a file it returns
// Default() and false.
func Load(startDir string) (Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Default(), true, err
	}
	return cfg, true, nil
}

// LoadFile reads path, choosing the decoder by extension. Keys left unset
// keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path) // #nosec G304 -- path is discovered or user-supplied
		if err != nil {
			return Config{}, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Pipeline.Jobs < 0 {
		return fmt.Errorf("[pipeline].jobs must be >= 0, got %d", c.Pipeline.Jobs)
	}
	if c.Lint.MaxDiagnostics < 0 {
		return fmt.Errorf("[lint].max_diagnostics must be >= 0, got %d", c.Lint.MaxDiagnostics)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	return nil
}

// DisallowList builds the provider policy.
func (c Config) DisallowList() codeaction.DisallowList {
	return codeaction.NewDisallowList(c.Providers.Disallow...)
}

// TracerConfig converts the [trace] section.
func (c Config) TracerConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, OutputPath: c.Trace.Output}, nil
}
