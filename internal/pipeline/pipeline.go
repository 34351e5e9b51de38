// Package pipeline adapts the meshing, solver and post-processing commands
// into workflow-manager steps: each step declares the files it consumes and
// produces relative to a shared working directory, and a step only runs when
// its declared inputs exist and are non-empty.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wr1/b3-2d/internal/errors"
)

// Config is the step configuration file. Relative paths resolve against the
// directory holding the config file.
type Config struct {
	Workdir      string `yaml:"workdir"`
	NumProcesses int    `yaml:"num_processes"`
	MatDBPath    string `yaml:"matdb"`
	AnbaEnv      string `yaml:"anba_env"`

	baseDir string
}

// LoadConfig reads a step configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileParsing).FileContext(path).Build()
	}
	if cfg.Workdir == "" {
		return nil, errors.Newf("step config %s does not set workdir", path).
			Category(errors.CategoryConfiguration).Build()
	}
	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

// WorkdirPath returns the absolute working directory.
func (c *Config) WorkdirPath() string {
	if filepath.IsAbs(c.Workdir) {
		return c.Workdir
	}
	return filepath.Join(c.baseDir, c.Workdir)
}

// resolve joins a workdir-relative path.
func (c *Config) resolve(rel string) string {
	return filepath.Join(c.WorkdirPath(), rel)
}

// Step is one unit of the blade processing workflow. Input and output paths
// are relative to the working directory; a trailing slash marks a directory.
type Step interface {
	Name() string
	InputFiles() []string
	OutputFiles() []string
	Run(ctx context.Context, cfg *Config) error
}

// Steps returns all registered steps in execution order.
func Steps() []Step {
	return []Step{&MeshStep{}, &AnbaStep{}, &PostStep{}}
}

// Lookup finds a step by name.
func Lookup(name string) (Step, bool) {
	for _, step := range Steps() {
		if step.Name() == name {
			return step, true
		}
	}
	return nil, false
}

// Run loads the config, validates the step's inputs, and executes it.
func Run(ctx context.Context, name, configPath string) error {
	step, ok := Lookup(name)
	if !ok {
		return errors.Newf("unknown pipeline step %s", name).
			Category(errors.CategoryPipeline).Build()
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := validateInputs(step, cfg); err != nil {
		return err
	}
	return step.Run(ctx, cfg)
}

// validateInputs checks that every declared input exists and is non-empty.
func validateInputs(step Step, cfg *Config) error {
	for _, rel := range step.InputFiles() {
		path := cfg.resolve(rel)
		info, err := os.Stat(path)
		if err != nil {
			return errors.Newf("step %s input %s is missing", step.Name(), rel).
				Category(errors.CategoryPipeline).FileContext(path).Build()
		}
		if strings.HasSuffix(rel, "/") || info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return errors.New(err).Category(errors.CategoryPipeline).FileContext(path).Build()
			}
			if len(entries) == 0 {
				return errors.Newf("step %s input directory %s is empty", step.Name(), rel).
					Category(errors.CategoryPipeline).FileContext(path).Build()
			}
			continue
		}
		if info.Size() == 0 {
			return errors.Newf("step %s input %s is empty", step.Name(), rel).
				Category(errors.CategoryPipeline).FileContext(path).Build()
		}
	}
	return nil
}
