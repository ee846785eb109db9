package core

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"jobsubmit.io/slurm"
)

//go:embed resources/default.yml
var defaultParamsYAML []byte

var (
	ErrConflictingSources = errors.New("custom_args and dataframe are mutually exclusive")
	ErrInvalidConfig      = errors.New("invalid config")
)

// SlurmArgs are the scheduler resources requested by every generated job.
type SlurmArgs struct {
	JobName       string `yaml:"job_name" json:"job_name"`
	Time          string `yaml:"time" json:"time"`
	Nodes         int    `yaml:"nodes" json:"nodes"`
	NTasksPerNode int    `yaml:"ntasks_per_node" json:"ntasks_per_node"`
	Mem           string `yaml:"mem" json:"mem"`
}

// Vars returns the slurm arguments keyed by their config names, for
// template substitution.
func (s SlurmArgs) Vars() map[string]string {
	return map[string]string{
		"job_name":        s.JobName,
		"time":            s.Time,
		"nodes":           strconv.Itoa(s.Nodes),
		"ntasks_per_node": strconv.Itoa(s.NTasksPerNode),
		"mem":             s.Mem,
	}
}

// Config models the YAML parameter file of a run.
type Config struct {
	JobName        string    `yaml:"job_name" json:"job_name"`
	RunDir         string    `yaml:"run_dir" json:"run_dir"`
	TasksPerJob    int       `yaml:"tasks_per_job" json:"tasks_per_job"`
	Repeat         int       `yaml:"repeat" json:"repeat"`
	Slurm          SlurmArgs `yaml:"slurm_args" json:"slurm_args"`
	ExtraHeader    string    `yaml:"extra_header,omitempty" json:"extra_header,omitempty"`
	Dataframe      string    `yaml:"dataframe,omitempty" json:"dataframe,omitempty"`
	HeaderTemplate string    `yaml:"header_template,omitempty" json:"header_template,omitempty"`

	// CustomArgs keeps the document order of the custom_args mapping.
	CustomArgs CustomArgs `yaml:"-" json:"custom_args,omitempty"`
}

// Vars returns the substitution values shared by every task of the run.
func (c *Config) Vars() map[string]string {
	vars := c.Slurm.Vars()
	vars["run_dir"] = c.RunDir
	vars["tasks_per_job"] = strconv.Itoa(c.TasksPerJob)
	vars["repeat"] = strconv.Itoa(c.Repeat)
	return vars
}

// Validate checks the loaded config, including any command-line overrides.
func (c *Config) Validate() error {
	if len(c.CustomArgs) > 0 && len(c.Dataframe) > 0 {
		return fmt.Errorf("core: %w", ErrConflictingSources)
	}
	var problems []string
	if strings.TrimSpace(c.JobName) == "" {
		problems = append(problems, "job_name is empty")
	}
	if strings.ContainsRune(c.JobName, filepath.Separator) {
		problems = append(problems, "job_name must not contain a path separator")
	}
	if strings.TrimSpace(c.RunDir) == "" {
		problems = append(problems, "run_dir is empty")
	}
	if c.TasksPerJob < 1 {
		problems = append(problems, fmt.Sprintf("tasks_per_job must be positive, got %d", c.TasksPerJob))
	}
	if c.Repeat < 1 {
		problems = append(problems, fmt.Sprintf("repeat must be positive, got %d", c.Repeat))
	}
	if c.Slurm.Nodes < 1 {
		problems = append(problems, fmt.Sprintf("slurm_args.nodes must be positive, got %d", c.Slurm.Nodes))
	}
	if c.Slurm.NTasksPerNode < 1 {
		problems = append(problems, fmt.Sprintf("slurm_args.ntasks_per_node must be positive, got %d", c.Slurm.NTasksPerNode))
	}
	if _, err := slurm.DecodeMem(c.Slurm.Mem); err != nil {
		problems = append(problems, fmt.Sprintf("slurm_args.mem: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("core: %w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultParams returns a fresh copy of the embedded default parameters.
func DefaultParams() (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if err := yaml.Unmarshal(defaultParamsYAML, &params); err != nil {
		return nil, fmt.Errorf("core: decode default params: %w", err)
	}
	return params, nil
}

// ParseConfig decodes a YAML parameter document and fills in defaults.
// The result is not validated; call Validate once overrides are applied.
func ParseConfig(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("core: decode config: %w", err)
	}
	raw := map[string]interface{}{}
	if doc.Kind != 0 {
		if err := doc.Decode(&raw); err != nil {
			return nil, fmt.Errorf("core: decode config: %w", err)
		}
	}
	defaults, err := DefaultParams()
	if err != nil {
		return nil, err
	}
	FillMissingDefaults(defaults, raw)
	delete(raw, "custom_args")

	merged, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("core: encode config: %w", err)
	}
	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(merged))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("core: decode config: %w", err)
	}

	if doc.Kind != 0 {
		var ordered struct {
			CustomArgs CustomArgs `yaml:"custom_args"`
		}
		if err := doc.Decode(&ordered); err != nil {
			return nil, fmt.Errorf("core: decode custom_args: %w", err)
		}
		config.CustomArgs = ordered.CustomArgs
	}
	return &config, nil
}

// LoadConfig reads and parses the YAML file at path. Relative paths in
// the file are resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	if !fileExist(path) {
		return nil, fmt.Errorf("core: config %s: %w", path, os.ErrNotExist)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: read %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	base := filepath.Dir(path)
	config.ExtraHeader = resolvePath(base, config.ExtraHeader)
	config.Dataframe = resolvePath(base, config.Dataframe)
	config.HeaderTemplate = resolvePath(base, config.HeaderTemplate)
	return config, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
