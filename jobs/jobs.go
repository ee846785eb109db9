// Package jobs groups tasks into batches and renders one submission
// script per batch.
package jobs

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"jobsubmit.io/core"
	"jobsubmit.io/params"
	"jobsubmit.io/render"
	"jobsubmit.io/slurm"
)

// Job is one batch of tasks written to a single script.
type Job struct {
	Index int           `json:"index"`
	Name  string        `json:"name"`
	Dir   string        `json:"dir"`
	Tasks []params.Task `json:"tasks"`
	// First is the run-wide index of the job's first task
	First int `json:"first"`
}

// Script is the path of the job's submission script.
func (j Job) Script() string {
	return filepath.Join(j.Dir, j.Name+core.JobSubmitScriptExt)
}

// Assemble splits tasks into batches of config.TasksPerJob. Job i is named
// `<job_name>-<i>` and lives in `<run_dir>/<job_name>-<i>`.
func Assemble(config *core.Config, tasks []params.Task) ([]Job, error) {
	chunks, err := params.Chunk(tasks, config.TasksPerJob)
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	jobs := make([]Job, len(chunks))
	first := 0
	for i, chunk := range chunks {
		name := config.JobName + "-" + strconv.Itoa(i)
		jobs[i] = Job{
			Index: i,
			Name:  name,
			Dir:   filepath.Join(config.RunDir, name),
			Tasks: chunk,
			First: first,
		}
		first += len(chunk)
	}
	return jobs, nil
}

// Renderer turns jobs into script text.
type Renderer struct {
	Config *core.Config
	// Template is rendered once per task
	Template string
	// Header is the `#SBATCH` header template
	Header string
	// Extra holds shell commands placed after the header
	Extra string
	RunID string
}

// Vars returns the substitution values for task i of job: config values,
// then per-job values, then the task's own values.
func (r *Renderer) Vars(job Job, i int) map[string]string {
	vars := r.Config.Vars()
	vars["job_name"] = job.Name
	vars["job_index"] = strconv.Itoa(job.Index)
	vars["job_dir"] = job.Dir
	vars["task_index"] = strconv.Itoa(job.First + i)
	vars["run_id"] = r.RunID
	for k, v := range job.Tasks[i] {
		vars[k] = v
	}
	return vars
}

// Render assembles the full script of job.
func (r *Renderer) Render(job Job) string {
	header := slurm.Header(r.Header, r.Config.Slurm.Vars(), job.Name, job.Dir)
	parts := []string{strings.TrimRight(header, "\n")}
	if extra := strings.TrimRight(r.Extra, "\n"); len(extra) > 0 {
		parts = append(parts, extra)
	}
	parts = append(parts, "cd "+job.Dir)
	for i := range job.Tasks {
		task := render.Substitute(r.Template, r.Vars(job, i))
		parts = append(parts, strings.TrimRight(task, "\n"))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Missing lists the template placeholders that no task of job defines.
func (r *Renderer) Missing(job Job) []string {
	if len(job.Tasks) == 0 {
		return nil
	}
	return render.Missing(r.Template, r.Vars(job, 0))
}
