package quill

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig models a quill.yaml engine configuration.
type FileConfig struct {
	MaxEvalDepth      int           `yaml:"max_eval_depth"`
	RecursionLimit    int           `yaml:"recursion_limit"`
	StepQuota         int           `yaml:"step_quota"`
	ModulePaths       []string      `yaml:"module_paths"`
	MaxCachedPrograms int           `yaml:"max_cached_programs"`
	Git               []GitModule   `yaml:"git"`
	Modules           MapSource     `yaml:"modules"`
	Log               FileLogConfig `yaml:"log"`
}

// GitModule pins a git repository as a module source.
type GitModule struct {
	Repository string `yaml:"repository"`
	Revision   string `yaml:"revision"`
	Dir        string `yaml:"dir"`
}

type FileLogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads a YAML config file. Relative module and repository paths
// resolve against the file's directory.
func LoadConfig(path string) (*FileConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := ParseConfig(file, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML from r. Unknown keys are an error.
func ParseConfig(r io.Reader, baseDir string) (*FileConfig, error) {
	var cfg FileConfig
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i, dir := range cfg.ModulePaths {
		cfg.ModulePaths[i] = resolveAgainst(baseDir, dir)
	}
	for i := range cfg.Git {
		if cfg.Git[i].Repository == "" {
			return nil, fmt.Errorf("git source %d: repository is required", i)
		}
		cfg.Git[i].Repository = resolveAgainst(baseDir, cfg.Git[i].Repository)
	}
	return &cfg, nil
}

func resolveAgainst(baseDir, p string) string {
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// EngineConfig converts the file settings into a Config. Inline modules
// are searched first, then git sources in file order, then module paths.
func (fc *FileConfig) EngineConfig() (Config, error) {
	cfg := Config{
		MaxEvalDepth:      fc.MaxEvalDepth,
		RecursionLimit:    fc.RecursionLimit,
		StepQuota:         fc.StepQuota,
		ModulePaths:       fc.ModulePaths,
		MaxCachedPrograms: fc.MaxCachedPrograms,
	}
	if len(fc.Modules) > 0 {
		cfg.Sources = append(cfg.Sources, fc.Modules)
	}
	for _, g := range fc.Git {
		src, err := OpenGitSource(g.Repository, g.Revision, g.Dir)
		if err != nil {
			return Config{}, err
		}
		cfg.Sources = append(cfg.Sources, src)
	}
	return cfg, nil
}
