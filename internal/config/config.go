package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the cpptrans.yaml configuration.
type Config struct {
	// OutputDir receives every generated artifact. Relative paths are
	// resolved against the directory holding the configuration file.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Namespace wraps the translated classes in the target surfaces.
	Namespace string `yaml:"namespace,omitempty"`

	// BuildScript is the name of the generated compile script.
	BuildScript string `yaml:"build_script,omitempty"`

	// Compiler is the command line prefix written into the build script.
	Compiler string `yaml:"compiler,omitempty"`

	// AllowUnresolvedCalls keeps emitting a class when a call site has no
	// applicable overload. The call keeps its unwidened candidate name and
	// a warning is reported instead of an error.
	AllowUnresolvedCalls bool `yaml:"allow_unresolved_calls,omitempty"`

	// EmitWorkers bounds parallel per-class emission. 1 is sequential.
	EmitWorkers int `yaml:"emit_workers,omitempty"`

	// History is the SQLite database recording runs. Empty disables it.
	History string `yaml:"history,omitempty"`

	// Runtime describes the runtime-support library linked with the output.
	Runtime Runtime `yaml:"runtime,omitempty"`

	dir string
}

// Runtime names the runtime-support artifacts.
type Runtime struct {
	Header  string `yaml:"header,omitempty"`
	Source  string `yaml:"source,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// Default returns the configuration used when no cpptrans.yaml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a cpptrans.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses cpptrans.yaml content from bytes.
// The path argument is used for error messages and relative paths.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for cpptrans.yaml starting from dir and walking up
// to parent directories. Returns "" and nil error when none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadFor finds and loads the configuration governing the given source
// tree file, falling back to Default.
func LoadFor(sourcePath string) (*Config, error) {
	path, err := FindConfig(filepath.Dir(sourcePath))
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.EmitWorkers < 0 {
		return fmt.Errorf("%s: emit_workers must not be negative", path)
	}
	if c.Namespace != "" && strings.ContainsAny(c.Namespace, " \t:;{}") {
		return fmt.Errorf("%s: namespace %q is not a plain identifier", path, c.Namespace)
	}
	if strings.ContainsAny(c.BuildScript, `/\`) {
		return fmt.Errorf("%s: build_script must be a file name, got %q", path, c.BuildScript)
	}
	if c.Runtime.Version != "" {
		if err := CheckRuntime(c.Runtime.Version); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// CheckRuntime reports whether a runtime-support version satisfies the
// ABI the emitter targets.
func CheckRuntime(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("runtime version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(RuntimeABIConstraint)
	if err != nil {
		return fmt.Errorf("runtime constraint %q: %w", RuntimeABIConstraint, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("runtime version %s does not satisfy %s", v, RuntimeABIConstraint)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.BuildScript == "" {
		c.BuildScript = DefaultScriptName
	}
	if c.Compiler == "" {
		c.Compiler = DefaultCompiler
	}
	if c.EmitWorkers == 0 {
		c.EmitWorkers = 4
	}
	if c.Runtime.Header == "" {
		c.Runtime.Header = DefaultRuntimeH
	}
	if c.Runtime.Source == "" {
		c.Runtime.Source = DefaultRuntimeCC
	}
	if c.Runtime.Version == "" {
		c.Runtime.Version = DefaultRuntimeVersion
	}
}

// OutputPath resolves the output directory against the config location.
func (c *Config) OutputPath() string {
	return c.resolve(c.OutputDir)
}

// HistoryPath resolves the history database path, "" when disabled.
func (c *Config) HistoryPath() string {
	if c.History == "" {
		return ""
	}
	return c.resolve(c.History)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
