package slurm

import (
	_ "embed"
	"path/filepath"

	"jobsubmit.io/render"
)

// Slurm CLI commands
const (
	SBatchName = "sbatch"
)

//go:embed templates/job_header.txt
var defaultHeader string

// DefaultHeader returns the built-in `#SBATCH` header template.
func DefaultHeader() string {
	return defaultHeader
}

// Header renders a job header template. vars holds the slurm arguments;
// job_name, output and error are derived from jobName and logDir and take
// precedence over vars.
func Header(tmpl string, vars map[string]string, jobName, logDir string) string {
	args := make(map[string]string, len(vars)+3)
	for k, v := range vars {
		args[k] = v
	}
	args["job_name"] = jobName
	args["output"] = filepath.Join(logDir, jobName+".out")
	args["error"] = filepath.Join(logDir, jobName+".err")
	return render.Substitute(tmpl, args)
}

// SubmitCommand is the manifest line that submits script.
func SubmitCommand(script string) string {
	return SBatchName + " " + script
}
