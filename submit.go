package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"jobsubmit.io/core"
	"jobsubmit.io/jobs"
	"jobsubmit.io/logger"
	"jobsubmit.io/params"
	"jobsubmit.io/slurm"
)

type SubmitCommand struct {
	Help        bool   `short:"h" long:"help" description:"Show this help message"`
	ExtraHeader string `short:"x" long:"extra-header" description:"file of shell commands placed after the #SBATCH header"`
	Dataframe   string `short:"d" long:"dataframe" description:"CSV file supplying one row of custom args per task"`
	DryRun      bool   `short:"n" long:"dry-run" description:"print the submit commands without writing any script"`
	Args        struct {
		Template string `positional-arg-name:"template" description:"task template with $name placeholders"`
		Config   string `positional-arg-name:"config" description:"YAML parameter file"`
	} `positional-args:"true" required:"true"`

	// stdout receives the submit commands and written paths
	stdout io.Writer
}

var submitCommand SubmitCommand

func (x *SubmitCommand) out() io.Writer {
	if x.stdout == nil {
		return os.Stdout
	}
	return x.stdout
}

func readOptional(kind, path string) (string, error) {
	if len(path) == 0 {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("jobsubmit: read %s: %w", kind, err)
	}
	return string(data), nil
}

// loadTasks expands the custom arguments, or reads the dataframe when one
// is configured, and applies the repeat factor.
func loadTasks(config *core.Config) ([]params.Task, error) {
	var tasks []params.Task
	var err error
	if len(config.Dataframe) > 0 {
		logger.InfoPrintf("Dataframe: %s", config.Dataframe)
		tasks, err = params.ReadDataframeFile(config.Dataframe)
	} else {
		tasks, err = params.Expand(config.CustomArgs)
	}
	if err != nil {
		return nil, fmt.Errorf("jobsubmit: %w", err)
	}
	return params.Repeat(tasks, config.Repeat), nil
}

func (x *SubmitCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	if len(args) > 0 {
		return errors.New("jobsubmit: unexpected arguments: " + strings.Join(args, " "))
	}
	runID := xid.New().String()
	logger.InfoPrintf("Generating SLURM job scripts (run %s)", runID)
	logger.InfoPrintf("Template: %s", x.Args.Template)
	logger.InfoPrintf("YAML config: %s", x.Args.Config)

	config, err := core.LoadConfig(x.Args.Config)
	if err != nil {
		return err
	}
	if len(x.ExtraHeader) > 0 {
		config.ExtraHeader = x.ExtraHeader
	}
	if len(x.Dataframe) > 0 {
		config.Dataframe = x.Dataframe
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.RunDir, err = filepath.Abs(config.RunDir); err != nil {
		return fmt.Errorf("jobsubmit: run dir: %w", err)
	}
	logger.InfoObj("Slurm job parameters", config.Slurm)
	logger.DebugObj("Config", config)

	template, err := readOptional("template", x.Args.Template)
	if err != nil {
		return err
	}
	header := slurm.DefaultHeader()
	if len(config.HeaderTemplate) > 0 {
		if header, err = readOptional("header template", config.HeaderTemplate); err != nil {
			return err
		}
	}
	extra, err := readOptional("extra header", config.ExtraHeader)
	if err != nil {
		return err
	}

	tasks, err := loadTasks(config)
	if err != nil {
		return err
	}
	batches, err := jobs.Assemble(config, tasks)
	if err != nil {
		return err
	}
	logger.InfoPrintf("%d tasks in %d jobs", len(tasks), len(batches))
	if len(batches) == 0 {
		logger.WarningPrintf("no tasks generated, nothing to write")
		return nil
	}

	renderer := &jobs.Renderer{
		Config:   config,
		Template: template,
		Header:   header,
		Extra:    extra,
		RunID:    runID,
	}
	if missing := renderer.Missing(batches[0]); len(missing) > 0 {
		logger.WarningPrintf("template placeholders with no value: $%s", strings.Join(missing, " $"))
	}

	if x.DryRun {
		for _, job := range batches {
			fmt.Fprintln(x.out(), slurm.SubmitCommand(job.Script()))
		}
		return nil
	}

	writer, err := jobs.NewWriter(config.RunDir)
	if err != nil {
		return err
	}
	for _, job := range batches {
		path, err := writer.Write(job, renderer.Render(job))
		if err != nil {
			return err
		}
		fmt.Fprintf(x.out(), "SLURM script written to %s\n", path)
	}
	logger.InfoPrintf("Submit commands listed in %s", writer.Manifest)
	return nil
}

func init() {
	if _, err := parser.AddGroup("Application Options",
		"Expand a task template into SLURM job scripts",
		&submitCommand); err != nil {
		panic(err)
	}
}
