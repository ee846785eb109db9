package jobs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jobsubmit.io/core"
	"jobsubmit.io/logger"
	"jobsubmit.io/slurm"
)

// Writer writes job scripts below a run directory and records one submit
// command per script in the run's manifest.
type Writer struct {
	RunDir   string
	Manifest string
}

// NewWriter prepares runDir and starts an empty manifest. Existing job
// directories are reused.
func NewWriter(runDir string) (*Writer, error) {
	if err := os.MkdirAll(runDir, core.JobSubmitDirPerms); err != nil {
		return nil, fmt.Errorf("jobs: create run dir: %w", err)
	}
	manifest := filepath.Join(runDir, core.JobSubmitManifest)
	if err := os.WriteFile(manifest, nil, core.JobSubmitScriptPerms); err != nil {
		return nil, fmt.Errorf("jobs: reset manifest: %w", err)
	}
	return &Writer{RunDir: runDir, Manifest: manifest}, nil
}

// Write stores script for job, checks it reads back unchanged and appends
// its submit command to the manifest. It returns the script path.
func (w *Writer) Write(job Job, script string) (string, error) {
	if err := os.MkdirAll(job.Dir, core.JobSubmitDirPerms); err != nil {
		return "", fmt.Errorf("jobs: create job dir: %w", err)
	}
	path := job.Script()
	if err := os.WriteFile(path, []byte(script), core.JobSubmitScriptPerms); err != nil {
		return "", fmt.Errorf("jobs: write %s: %w", path, err)
	}
	if err := Verify(path, job.Name, script); err != nil {
		return "", err
	}

	f, err := os.OpenFile(w.Manifest, os.O_WRONLY|os.O_CREATE|os.O_APPEND, core.JobSubmitScriptPerms)
	if err != nil {
		return "", fmt.Errorf("jobs: open manifest: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, slurm.SubmitCommand(path)); err != nil {
		return "", fmt.Errorf("jobs: append manifest: %w", err)
	}
	logger.DebugPrintf("wrote %s (%d tasks)", path, len(job.Tasks))
	return path, nil
}

// Verify reads the script at path back and checks that it matches want
// byte for byte and that its directives name the job jobName. Directives
// that cannot be parsed are reported, not treated as failures.
func Verify(path, jobName, want string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("jobs: read back %s: %w", path, err)
	}
	if !bytes.Equal(data, []byte(want)) {
		return fmt.Errorf("jobs: %s: content differs from rendered script", path)
	}
	script, err := core.ParseJobScript(core.SlurmDirective, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("jobs: parse %s: %w", path, err)
	}
	spec, err := slurm.ParseDirectives(script.Args)
	if err != nil {
		logger.WarningPrintf("%s: %v", path, err)
		return nil
	}
	if len(spec.Unsupported) > 0 {
		logger.WarningPrintf("%s: %d unsupported options: %s", path,
			len(spec.Unsupported), strings.Join(spec.Unsupported, " "))
	}
	if spec.Set["job-name"] && spec.JobName != jobName {
		return fmt.Errorf("jobs: %s: job name %q, expected %q", path, spec.JobName, jobName)
	}
	logger.DebugObj(filepath.Base(path), spec)
	return nil
}
